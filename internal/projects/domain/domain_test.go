package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

func validProject() domain.Project {
	return domain.NewProject("P1", domain.ProjectFields{
		Category: domain.CategoryRezoning,
		Title:    "Lakewood Rezoning",
		Status:   domain.StatusProposed,
	})
}

func TestProjectValidate(t *testing.T) {
	t.Run("valid project", func(t *testing.T) {
		assert.NoError(t, validProject().Validate())
	})

	t.Run("unknown enums", func(t *testing.T) {
		p := validProject()
		p.Category = "Bridge"
		p.Status = "Done"

		var ve *domain.ValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Contains(t, ve.Fields["category"], "Bridge")
		assert.Contains(t, ve.Fields["status"], "Done")
	})

	t.Run("blank title", func(t *testing.T) {
		p := validProject()
		p.Title = "   "

		var ve *domain.ValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Equal(t, "is required", ve.Fields["title"])
	})

	t.Run("submitted requirements must be listed", func(t *testing.T) {
		p := validProject()
		p.Requirements = []string{"Site Plan"}
		p.SubmittedRequirements = []string{"Site Plan", "Survey"}
		p.Reviewers = []string{"Fire"}
		p.ReviewedBy = []string{"Police"}

		var ve *domain.ValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Contains(t, ve.Fields["submitted_requirements"], "Survey")
		assert.Contains(t, ve.Fields["reviewed_by"], "Police")
	})

	t.Run("comment fields and duplicate ids", func(t *testing.T) {
		p := validProject()
		p.Comments = []domain.Comment{
			{ID: "c1", Author: "a", Body: "x"},
			{ID: "c1", Author: "a", Body: ""},
		}

		var ve *domain.ValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Contains(t, ve.Fields, "comments[1].id")
		assert.Contains(t, ve.Fields, "comments[1].body")
	})

	t.Run("negative submission number", func(t *testing.T) {
		p := validProject()
		p.SubmissionNumber = -1
		err := p.Validate()
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "submission_number")
	})
}

func TestProjectFieldsValidate_EmptyIDAllowed(t *testing.T) {
	f := domain.ProjectFields{Category: domain.CategoryRoad, Title: "Road", Status: domain.StatusOnHold}
	assert.NoError(t, f.Validate())

	f.ID = "has space"
	assert.ErrorIs(t, f.Validate(), domain.ErrValidation)
}

func TestDateJSON(t *testing.T) {
	var v struct {
		Due *domain.Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2025-03-14"}`), &v))
	require.NotNil(t, v.Due)
	assert.Equal(t, "2025-03-14", v.Due.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2025-03-14"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"due":"tomorrow"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"due":20250314}`), &v))
}

func TestParseDate_LegacyFormat(t *testing.T) {
	d, err := domain.ParseDate("3/7/2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-07", d.String())
}

func TestSorted(t *testing.T) {
	d := func(s string) *domain.Date {
		v, err := domain.ParseDate(s)
		require.NoError(t, err)
		return &v
	}
	in := []domain.Project{
		{ID: "undated-b", Title: "Beta"},
		{ID: "late", Title: "Zulu", DueDate: d("2025-05-01")},
		{ID: "undated-a", Title: "alpha"},
		{ID: "early-b", Title: "Bravo", DueDate: d("2025-04-01")},
		{ID: "early-a", Title: "Alpha", DueDate: d("2025-04-01")},
	}

	var ids []string
	for _, p := range domain.Sorted(in) {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"early-a", "early-b", "late", "undated-a", "undated-b"}, ids)
	assert.Equal(t, "undated-b", in[0].ID, "input must not be reordered")
}

func TestFilterMatch(t *testing.T) {
	due, _ := domain.ParseDate("2025-04-01")
	cutoff, _ := domain.ParseDate("2025-04-02")
	p := validProject()
	p.DueDate = &due

	assert.True(t, domain.Filter{}.Match(p))
	assert.True(t, domain.Filter{Category: domain.CategoryRezoning, Query: "lake"}.Match(p))
	assert.False(t, domain.Filter{Status: domain.StatusCompleted}.Match(p))
	assert.True(t, domain.Filter{DueBefore: &cutoff}.Match(p))
	assert.False(t, domain.Filter{DueBefore: &due}.Match(p))

	p.DueDate = nil
	assert.False(t, domain.Filter{DueBefore: &cutoff}.Match(p))
}

func TestPendingChecklists(t *testing.T) {
	p := validProject()
	p.Requirements = []string{"Site Plan", "Survey"}
	p.SubmittedRequirements = []string{"Survey"}
	p.Reviewers = []string{"Fire", "Planning"}

	assert.Equal(t, []string{"Site Plan"}, p.PendingRequirements())
	assert.Equal(t, []string{"Fire", "Planning"}, p.PendingReviewers())
}

func TestSlugAndIDs(t *testing.T) {
	assert.Equal(t, "riverwalk-phase-2", domain.Slug("  Riverwalk Phase 2! "))
	assert.True(t, domain.ValidProjectID(domain.Slug("Cramerton Mills (Lot 7)")))
	assert.False(t, domain.ValidProjectID("../etc"))
	assert.False(t, domain.ValidProjectID(""))

	id, err := domain.NewPublicID(domain.ProjectIDPrefix)
	require.NoError(t, err)
	assert.Regexp(t, `^proj-\d{5}-\d{4}$`, id)
	assert.True(t, domain.ValidProjectID(id))
}

func TestErrors(t *testing.T) {
	ce := &domain.ConflictError{ID: "P1", Expected: 0, Actual: 1}
	assert.ErrorIs(t, ce, domain.ErrConflict)
	assert.Contains(t, ce.Error(), "stored revision is 1")

	race := &domain.ConflictError{ID: "P1", Expected: 3, Actual: -1}
	assert.Contains(t, race.Error(), "concurrent write")

	ve := &domain.ValidationError{Fields: map[string]string{"b": "x", "a": "y"}}
	assert.Equal(t, "validation failed: a: y; b: x", ve.Error())
	assert.ErrorIs(t, domain.ErrCommentNotFound, domain.ErrNotFound)
}
