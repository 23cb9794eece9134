// Package importer seeds the project store from the legacy Development_Status.csv export.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

const (
	colCategory     = "category"
	colName         = "project name"
	colDueDate      = "comments due date"
	colSubmission   = "submission number"
	colRequirements = "requirements"
	colSubmitted    = "submitted requirements"
	colReviewers    = "trc reviewers"
	colReviewed     = "reviewed trc departments"
	colStatus       = "status"
	colDescription  = "description"

	listSep = ","
)

var requiredColumns = []string{colCategory, colName}

// Creator is the subset of the store the importer writes through.
type Creator interface {
	Create(ctx context.Context, fields domain.ProjectFields) (domain.Project, error)
}

// RowError reports a row that could not be imported. Line is 1-based and counts the header.
type RowError struct {
	Line int
	Name string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Name, e.Err)
}

type Result struct {
	Created []string
	Skipped []string // already present
	Failed  []RowError
}

type Importer struct {
	store  Creator
	log    *zap.Logger
	dryRun bool
}

func New(store Creator, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: store, log: log}
}

// DryRun parses and validates rows without writing them.
func (im *Importer) DryRun(v bool) *Importer {
	im.dryRun = v
	return im
}

// Import reads every row from r. Row level problems end up in Result.Failed;
// the returned error is reserved for unreadable input and storage outages.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return res, fmt.Errorf("failed to read header: %w", err)
	}
	idx, err := mapHeaderIndices(header, requiredColumns)
	if err != nil {
		return res, err
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("csv read error: %w", err)
		}
		if blank(rec) {
			continue
		}

		fields, err := parseRow(idx, rec)
		if err != nil {
			res.Failed = append(res.Failed, RowError{Line: line, Name: get(idx, rec, colName), Err: err})
			continue
		}
		if err := fields.Validate(); err != nil {
			res.Failed = append(res.Failed, RowError{Line: line, Name: fields.Title, Err: err})
			continue
		}
		if im.dryRun {
			res.Created = append(res.Created, fields.ID)
			continue
		}

		_, err = im.store.Create(ctx, fields)
		switch {
		case err == nil:
			res.Created = append(res.Created, fields.ID)
		case errors.Is(err, domain.ErrConflict):
			im.log.Debug("project exists, skipping", zap.String("id", fields.ID))
			res.Skipped = append(res.Skipped, fields.ID)
		case errors.Is(err, domain.ErrStorageUnavailable):
			return res, fmt.Errorf("line %d: %w", line, err)
		default:
			res.Failed = append(res.Failed, RowError{Line: line, Name: fields.Title, Err: err})
		}
	}

	im.log.Info("import complete",
		zap.Int("created", len(res.Created)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("failed", len(res.Failed)),
		zap.Bool("dry_run", im.dryRun),
	)
	return res, nil
}

func parseRow(idx map[string]int, rec []string) (domain.ProjectFields, error) {
	name := get(idx, rec, colName)
	f := domain.ProjectFields{
		ID:                    domain.Slug(name),
		Category:              domain.Category(get(idx, rec, colCategory)),
		Title:                 name,
		Description:           get(idx, rec, colDescription),
		Requirements:          splitList(get(idx, rec, colRequirements)),
		SubmittedRequirements: splitList(get(idx, rec, colSubmitted)),
		Reviewers:             splitList(get(idx, rec, colReviewers)),
		ReviewedBy:            splitList(get(idx, rec, colReviewed)),
	}
	if f.ID == "" {
		return f, errors.New("project name is empty")
	}

	if raw := get(idx, rec, colDueDate); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return f, fmt.Errorf("comments due date %q: %w", raw, err)
		}
		f.DueDate = &d
	}

	if raw := get(idx, rec, colSubmission); raw != "" {
		n, err := parseSubmission(raw)
		if err != nil {
			return f, fmt.Errorf("submission number %q: %w", raw, err)
		}
		f.SubmissionNumber = n
	}

	// The export has no status column; a project with a due date is under review,
	// one without is waiting on a resubmittal.
	switch s := get(idx, rec, colStatus); {
	case s != "":
		f.Status = domain.Status(s)
	case f.DueDate != nil:
		f.Status = domain.StatusInProgress
	default:
		f.Status = domain.StatusOnHold
	}
	return f, nil
}

// parseSubmission accepts "3" and the "3.0" spreadsheets write back.
func parseSubmission(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) {
		return 0, errors.New("not a whole number")
	}
	return int(v), nil
}

func mapHeaderIndices(header []string, want []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, w := range want {
		if _, ok := idx[w]; !ok {
			return nil, fmt.Errorf("expected header %q not found, have %v", w, header)
		}
	}
	return idx, nil
}

func get(idx map[string]int, rec []string, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, listSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
