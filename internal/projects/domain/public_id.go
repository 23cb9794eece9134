package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// ProjectIDPrefix is used for generated project ids, e.g. "proj-12345-6789".
const ProjectIDPrefix = "proj"

var (
	projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	slugStrip        = regexp.MustCompile(`[^a-z0-9]+`)
)

// NewPublicID generates a human-readable public ID, e.g. "proj-12345-6789".
func NewPublicID(prefix string) (string, error) {
	a, err := randInt(10000, 99999)
	if err != nil {
		return "", err
	}
	b, err := randInt(1000, 9999)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%05d-%04d", prefix, a, b), nil
}

// ValidProjectID reports whether id is safe to use as an object key component.
func ValidProjectID(id string) bool {
	return len(id) <= 64 && projectIDPattern.MatchString(id)
}

// Slug derives a project id from a free-text name, e.g. "Riverwalk Phase 2" -> "riverwalk-phase-2".
func Slug(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > 64 {
		s = strings.TrimRight(s[:64], "-")
	}
	return s
}

func randInt(min, max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		return 0, err
	}
	return min + n.Int64(), nil
}
