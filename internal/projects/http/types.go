package http

import (
	"strings"

	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
	log *zap.Logger
}

func New(svc *service.ProjectService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

type createReq struct {
	ID                    string       `json:"id"`
	Category              string       `json:"category"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	Status                string       `json:"status"`
	DueDate               *domain.Date `json:"due_date"`
	SubmissionNumber      int          `json:"submission_number"`
	Requirements          []string     `json:"requirements"`
	SubmittedRequirements []string     `json:"submitted_requirements"`
	Reviewers             []string     `json:"trc_reviewers"`
	ReviewedBy            []string     `json:"reviewed_by"`
}

func (r createReq) fields() domain.ProjectFields {
	status := domain.Status(r.Status)
	if status == "" {
		status = domain.StatusProposed
	}
	return domain.ProjectFields{
		ID:                    r.ID,
		Category:              domain.Category(r.Category),
		Title:                 strings.TrimSpace(r.Title),
		Description:           r.Description,
		Status:                status,
		DueDate:               r.DueDate,
		SubmissionNumber:      r.SubmissionNumber,
		Requirements:          r.Requirements,
		SubmittedRequirements: r.SubmittedRequirements,
		Reviewers:             r.Reviewers,
		ReviewedBy:            r.ReviewedBy,
	}
}

type patchReq struct {
	Revision              *int64           `json:"revision"`
	Category              *domain.Category `json:"category"`
	Title                 *string          `json:"title"`
	Description           *string          `json:"description"`
	Status                *domain.Status   `json:"status"`
	DueDate               *domain.Date     `json:"due_date"`
	ClearDueDate          bool             `json:"clear_due_date"`
	SubmissionNumber      *int             `json:"submission_number"`
	Requirements          *[]string        `json:"requirements"`
	SubmittedRequirements *[]string        `json:"submitted_requirements"`
	Reviewers             *[]string        `json:"trc_reviewers"`
	ReviewedBy            *[]string        `json:"reviewed_by"`
}

func (r patchReq) patch() service.ProjectPatch {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
	return service.ProjectPatch{
		Category:              r.Category,
		Title:                 r.Title,
		Description:           r.Description,
		Status:                r.Status,
		DueDate:               r.DueDate,
		ClearDueDate:          r.ClearDueDate,
		SubmissionNumber:      r.SubmissionNumber,
		Requirements:          r.Requirements,
		SubmittedRequirements: r.SubmittedRequirements,
		Reviewers:             r.Reviewers,
		ReviewedBy:            r.ReviewedBy,
	}
}

type commentReq struct {
	Revision *int64 `json:"revision"`
	Author   string `json:"author"`
	Body     string `json:"body"`
}
