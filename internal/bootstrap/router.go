package bootstrap

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httpapi "github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/api/http"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/api/http/middleware"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/auth"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/importer"
	projecthttp "github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/http"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Backend     string
	FrontendURL string
	SecretKey   string
	APIKey      string
	ReadRate    int
	WriteRate   int
	Service     *service.ProjectService
	Store       httpapi.Pinger
	Projects    importer.Creator
	Purger      httpapi.Purger
	Gatherer    prometheus.Gatherer
	Logger      *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	log := dep.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(log.Named("http")))
	r.Use(cors.New(corsConfig(dep.FrontendURL)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Backend, dep.Store)
	healthHandler.RegisterRoutes(r)
	if dep.Gatherer != nil {
		httpapi.RegisterMetrics(r, dep.Gatherer)
	}

	api := r.Group("/api/v1")
	var verifier *auth.Verifier
	if dep.SecretKey != "" {
		verifier = auth.NewVerifier(dep.SecretKey)
	}
	api.Use(auth.Required(verifier, dep.APIKey))

	writeLimit := middleware.NewRateLimiter(dep.WriteRate).Middleware()

	projectsGroup := api.Group("/projects")
	read := projectsGroup.Group("", middleware.NewRateLimiter(dep.ReadRate).Middleware())
	write := projectsGroup.Group("", writeLimit)

	projecthttp.New(dep.Service, log.Named("projects")).Register(read, write)

	// Operator routes take the API key only, never a user token.
	if dep.APIKey != "" && dep.Projects != nil && dep.Purger != nil {
		admin := r.Group("/api/v1/admin", auth.APIKeyMiddleware(dep.APIKey), writeLimit)
		httpapi.NewAdminHandler(dep.Projects, dep.Purger, log.Named("admin")).RegisterRoutes(admin)
	}

	return r
}

func corsConfig(frontendURL string) cors.Config {
	origins := []string{}
	for _, o := range strings.Split(frontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-Match", "X-API-Key", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"ETag", "Retry-After", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
