package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sub": auth.Subject(c), "method": c.GetString(auth.CtxMethod)})
	})
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifier_SignVerify(t *testing.T) {
	v := auth.NewVerifier("s3cret")
	tok, err := v.Sign("planner@cramerton", time.Hour)
	require.NoError(t, err)

	sub, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "planner@cramerton", sub)
}

func TestVerifier_Rejects(t *testing.T) {
	v := auth.NewVerifier("s3cret")

	other, err := auth.NewVerifier("other").Sign("x", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired, err := v.Sign("x", -time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = v.Verify(noSub)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = v.Verify(hs512)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequired(t *testing.T) {
	v := auth.NewVerifier("s3cret")
	r := newEngine(auth.Required(v, "key-1"))
	tok, err := v.Sign("alice", time.Hour)
	require.NoError(t, err)

	w := do(r, "Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sub":"alice","method":"jwt"}`, w.Body.String())

	w = do(r, "X-API-Key", "key-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sub":"","method":"api_key"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "Authorization", "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "X-API-Key", "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)
}

func TestRequired_NoAPIKeyConfigured(t *testing.T) {
	r := newEngine(auth.Required(auth.NewVerifier("s3cret"), ""))
	assert.Equal(t, http.StatusUnauthorized, do(r, "X-API-Key", "").Code)
}

func TestAPIKeyMiddleware(t *testing.T) {
	r := newEngine(auth.APIKeyMiddleware("key-1"))
	assert.Equal(t, http.StatusOK, do(r, "X-API-Key", "key-1").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "X-API-Key", "key-2").Code)

	closed := newEngine(auth.APIKeyMiddleware(""))
	assert.Equal(t, http.StatusUnauthorized, do(closed, "X-API-Key", "").Code)
}
