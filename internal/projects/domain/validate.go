package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("projectid", func(fl validator.FieldLevel) bool {
		return ValidProjectID(fl.Field().String())
	})
	return v
}

// Validate checks p against the schema. It returns a *ValidationError or nil.
func (p Project) Validate() error {
	ve := &ValidationError{Fields: map[string]string{}}

	var fieldErrs validator.ValidationErrors
	if err := validate.Struct(p); err != nil {
		if !errors.As(err, &fieldErrs) {
			return NewValidationError("project", err.Error())
		}
		for _, fe := range fieldErrs {
			ve.Fields[fieldPath(fe)] = describe(fe)
		}
	}

	if _, ok := ve.Fields["title"]; !ok && strings.TrimSpace(p.Title) == "" {
		ve.Fields["title"] = "is required"
	}
	if extra := missing(p.SubmittedRequirements, p.Requirements); len(extra) > 0 {
		ve.Fields["submitted_requirements"] = "not listed in requirements: " + strings.Join(extra, ", ")
	}
	if extra := missing(p.ReviewedBy, p.Reviewers); len(extra) > 0 {
		ve.Fields["reviewed_by"] = "not listed in trc_reviewers: " + strings.Join(extra, ", ")
	}
	seen := make(map[string]struct{}, len(p.Comments))
	for i, c := range p.Comments {
		if _, dup := seen[c.ID]; dup {
			ve.Fields[fmt.Sprintf("comments[%d].id", i)] = "duplicate comment id " + c.ID
		}
		seen[c.ID] = struct{}{}
	}

	if len(ve.Fields) == 0 {
		return nil
	}
	return ve
}

// Validate checks the fields of a create request. An empty ID is allowed.
func (f ProjectFields) Validate() error {
	id := f.ID
	if id == "" {
		// placeholder satisfying the id rule; the store assigns the real one
		id = ProjectIDPrefix
	}
	return NewProject(id, f).Validate()
}

// Validate checks a comment on its own, before the store assigns id and timestamp.
func (c Comment) Validate() error {
	if strings.TrimSpace(c.Body) == "" {
		return NewValidationError("body", "is required")
	}
	if len(c.Body) > 4000 {
		return NewValidationError("body", "must be at most 4000 characters")
	}
	if strings.TrimSpace(c.Author) == "" {
		return NewValidationError("author", "is required")
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be >= " + fe.Param()
	case "category":
		return fmt.Sprintf("unknown category %q", fe.Value())
	case "status":
		return fmt.Sprintf("unknown status %q", fe.Value())
	case "projectid":
		return "must start with a letter or digit and contain only letters, digits, '.', '_' or '-'"
	}
	return "failed " + fe.Tag()
}
