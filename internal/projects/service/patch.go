package service

import (
	"slices"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

// ProjectPatch lists the fields an update may change. Nil fields are left as stored.
// ClearDueDate removes the due date ("awaiting resubmittal") and wins over DueDate.
type ProjectPatch struct {
	Category              *domain.Category
	Title                 *string
	Description           *string
	Status                *domain.Status
	DueDate               *domain.Date
	ClearDueDate          bool
	SubmissionNumber      *int
	Requirements          *[]string
	SubmittedRequirements *[]string
	Reviewers             *[]string
	ReviewedBy            *[]string
}

func (pp ProjectPatch) Empty() bool {
	return pp.Category == nil && pp.Title == nil && pp.Description == nil && pp.Status == nil &&
		pp.DueDate == nil && !pp.ClearDueDate && pp.SubmissionNumber == nil &&
		pp.Requirements == nil && pp.SubmittedRequirements == nil &&
		pp.Reviewers == nil && pp.ReviewedBy == nil
}

// Apply is a store.Mutator.
func (pp ProjectPatch) Apply(p *domain.Project) error {
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.DueDate != nil {
		d := *pp.DueDate
		p.DueDate = &d
	}
	if pp.ClearDueDate {
		p.DueDate = nil
	}
	if pp.SubmissionNumber != nil {
		p.SubmissionNumber = *pp.SubmissionNumber
	}
	if pp.Requirements != nil {
		p.Requirements = slices.Clone(*pp.Requirements)
	}
	if pp.SubmittedRequirements != nil {
		p.SubmittedRequirements = slices.Clone(*pp.SubmittedRequirements)
	}
	if pp.Reviewers != nil {
		p.Reviewers = slices.Clone(*pp.Reviewers)
	}
	if pp.ReviewedBy != nil {
		p.ReviewedBy = slices.Clone(*pp.ReviewedBy)
	}
	return nil
}
