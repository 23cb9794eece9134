package domain

import (
	"slices"
	"time"
)

// Category groups projects by the review stage they were submitted under.
type Category string

const (
	CategoryRezoning             Category = "Rezoning"
	CategoryPreliminaryPlat      Category = "Preliminary Plat"
	CategoryConstructionDrawings Category = "Construction Drawings"
	CategoryFinalPlat            Category = "Final Plat"
	CategoryRoad                 Category = "Road"
	CategoryOther                Category = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryRezoning,
	CategoryPreliminaryPlat,
	CategoryConstructionDrawings,
	CategoryFinalPlat,
	CategoryRoad,
	CategoryOther,
}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Status is the lifecycle state of a project.
type Status string

const (
	StatusProposed   Status = "Proposed"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "OnHold"
)

var Statuses = []Status{StatusProposed, StatusInProgress, StatusCompleted, StatusOnHold}

func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Project is a single development project under plan review.
// It is storage-agnostic; the validate tags are the schema enforced before every write.
type Project struct {
	ID                    string    `json:"id" validate:"required,max=64,projectid"`
	Category              Category  `json:"category" validate:"required,category"`
	Title                 string    `json:"title" validate:"required,max=200"`
	Description           string    `json:"description" validate:"max=10000"`
	Status                Status    `json:"status" validate:"required,status"`
	DueDate               *Date     `json:"due_date,omitempty"`
	SubmissionNumber      int       `json:"submission_number" validate:"gte=0"`
	Requirements          []string  `json:"requirements,omitempty" validate:"dive,required,max=200"`
	SubmittedRequirements []string  `json:"submitted_requirements,omitempty" validate:"dive,required,max=200"`
	Reviewers             []string  `json:"trc_reviewers,omitempty" validate:"dive,required,max=200"`
	ReviewedBy            []string  `json:"reviewed_by,omitempty" validate:"dive,required,max=200"`
	Comments              []Comment `json:"comments" validate:"dive"`
	Revision              int64     `json:"revision" validate:"gte=0"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Comment is a note left on a project. Comments are only ever added or removed one at a time.
type Comment struct {
	ID        string    `json:"id" validate:"required,max=64"`
	Author    string    `json:"author" validate:"required,max=200"`
	Body      string    `json:"body" validate:"required,max=4000"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectFields are the caller-supplied fields of a new project.
// ID is optional; the store generates one when it is empty.
type ProjectFields struct {
	ID                    string
	Category              Category
	Title                 string
	Description           string
	Status                Status
	DueDate               *Date
	SubmissionNumber      int
	Requirements          []string
	SubmittedRequirements []string
	Reviewers             []string
	ReviewedBy            []string
}

// NewProject builds a revision-0 project from fields. Timestamps are left to the store.
func NewProject(id string, f ProjectFields) Project {
	return Project{
		ID:                    id,
		Category:              f.Category,
		Title:                 f.Title,
		Description:           f.Description,
		Status:                f.Status,
		DueDate:               f.DueDate,
		SubmissionNumber:      f.SubmissionNumber,
		Requirements:          slices.Clone(f.Requirements),
		SubmittedRequirements: slices.Clone(f.SubmittedRequirements),
		Reviewers:             slices.Clone(f.Reviewers),
		ReviewedBy:            slices.Clone(f.ReviewedBy),
		Comments:              []Comment{},
	}
}

// Clone returns a deep copy so mutators never alias stored or cached slices.
func (p Project) Clone() Project {
	out := p
	if p.DueDate != nil {
		d := *p.DueDate
		out.DueDate = &d
	}
	out.Requirements = slices.Clone(p.Requirements)
	out.SubmittedRequirements = slices.Clone(p.SubmittedRequirements)
	out.Reviewers = slices.Clone(p.Reviewers)
	out.ReviewedBy = slices.Clone(p.ReviewedBy)
	out.Comments = slices.Clone(p.Comments)
	if out.Comments == nil {
		out.Comments = []Comment{}
	}
	return out
}

// CommentIndex returns the position of the comment with the given id, or -1.
func (p Project) CommentIndex(commentID string) int {
	return slices.IndexFunc(p.Comments, func(c Comment) bool { return c.ID == commentID })
}

// PendingRequirements lists requirements that have not been submitted yet.
func (p Project) PendingRequirements() []string {
	return missing(p.Requirements, p.SubmittedRequirements)
}

// PendingReviewers lists TRC departments that have not reviewed the submission yet.
func (p Project) PendingReviewers() []string {
	return missing(p.Reviewers, p.ReviewedBy)
}

func missing(all, done []string) []string {
	out := make([]string, 0, len(all))
	for _, item := range all {
		if !slices.Contains(done, item) {
			out = append(out, item)
		}
	}
	return out
}
