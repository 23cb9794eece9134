package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestImportCommand(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	path := filepath.Join(t.TempDir(), "Development_Status.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Category,Project Name,Comments Due Date\n"+
			"Road,Lakewood Rd,2025-05-01\n"+
			"Rezoning,Hillcrest,\n"), 0o600))

	out, err := execute(t, "import", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "created 2, skipped 0, failed 0")
}

func TestImportCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "import", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("SECRET_KEY", "s3cret")

	out, err := execute(t, "token", "planner")
	require.NoError(t, err)

	sub, err := auth.NewVerifier("s3cret").Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "planner", sub)
}

func TestListFilter(t *testing.T) {
	listCategory, listStatus, listQuery, listDueBefore = "Road", "", "lake", "2025-06-01"
	defer func() { listCategory, listQuery, listDueBefore = "", "", "" }()

	f, err := listFilter()
	require.NoError(t, err)
	assert.Equal(t, "Road", string(f.Category))
	require.NotNil(t, f.DueBefore)
	assert.Equal(t, "2025-06-01", f.DueBefore.String())

	listDueBefore = "June"
	_, err = listFilter()
	assert.Error(t, err)
}
