package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/api/http"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/store"
)

const adminCSV = "Category,Project Name,Comments Due Date\n" +
	"Road,Lakewood Rd,2025-05-01\n" +
	"Bridge,Mystery,\n"

type purgeFunc func(context.Context) (int, error)

func (f purgeFunc) RunOnce(ctx context.Context) (int, error) { return f(ctx) }

type adminResp struct {
	OK      bool     `json:"ok"`
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
	Failed  []struct {
		Line int    `json:"line"`
		Name string `json:"name"`
	} `json:"failed"`
	Purged int `json:"purged"`
}

func newAdmin(t *testing.T, p httpapi.Purger) (*gin.Engine, *store.Store) {
	t.Helper()
	st := store.New(objectstore.NewMemory(), store.Options{})
	r := gin.New()
	httpapi.NewAdminHandler(st, p, nil).RegisterRoutes(r.Group("/admin"))
	return r, st
}

func postAdmin(t *testing.T, r http.Handler, req *http.Request) (int, adminResp) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out adminResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func TestAdmin_ImportRawBody(t *testing.T) {
	r, st := newAdmin(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/import", strings.NewReader(adminCSV))
	req.Header.Set("Content-Type", "text/csv")
	code, out := postAdmin(t, r, req)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, out.OK)
	assert.Equal(t, []string{"lakewood-rd"}, out.Created)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, 3, out.Failed[0].Line)

	_, err := st.Get(context.Background(), "lakewood-rd")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/admin/import", strings.NewReader(adminCSV))
	_, out = postAdmin(t, r, req)
	assert.Equal(t, []string{"lakewood-rd"}, out.Skipped)
}

func TestAdmin_ImportMultipartDryRun(t *testing.T) {
	r, st := newAdmin(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "Development_Status.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(adminCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/import?dry_run=true", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, out := postAdmin(t, r, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"lakewood-rd"}, out.Created)

	_, err = st.Get(context.Background(), "lakewood-rd")
	assert.Error(t, err)
}

func TestAdmin_ImportBadHeader(t *testing.T) {
	r, _ := newAdmin(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/admin/import", strings.NewReader("Name\nA\n"))
	code, _ := postAdmin(t, r, req)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAdmin_Purge(t *testing.T) {
	r, _ := newAdmin(t, purgeFunc(func(context.Context) (int, error) { return 2, nil }))
	code, out := postAdmin(t, r, httptest.NewRequest(http.MethodPost, "/admin/purge", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, out.Purged)

	r, _ = newAdmin(t, purgeFunc(func(context.Context) (int, error) { return 0, errors.New("down") }))
	code, _ = postAdmin(t, r, httptest.NewRequest(http.MethodPost, "/admin/purge", nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
