//go:build unit

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*gin.Engine, *fakeRepository) {
	gin.SetMode(gin.TestMode)
	svc, repo, _ := newTestService()
	h := NewHandler(svc)
	r := gin.New()
	h.RegisterRoutes(r)
	return r, repo
}

func TestCreateConflictThenDeleteHTTPRoundTrip(t *testing.T) {
	r, repo := newTestRouter()
	a, _ := repo.CreateGroup(context.Background(), Group{Name: "Dev"})
	b, _ := repo.CreateGroup(context.Background(), Group{Name: "QA"})

	body := `{"group_id1":` + strconv.FormatInt(a.ID, 10) + `,"group_id2":` + strconv.FormatInt(b.ID, 10) + `}`

	req := httptest.NewRequest(http.MethodPost, "/admin/conflicts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/conflicts", nil)
	getW := httptest.NewRecorder()
	r.ServeHTTP(getW, getReq)
	assert.Equal(t, http.StatusOK, getW.Code)
	assert.Contains(t, getW.Body.String(), `"group_id_a"`)

	delReq := httptest.NewRequest(http.MethodDelete, "/admin/conflicts", strings.NewReader(body))
	delReq.Header.Set("Content-Type", "application/json")
	delW := httptest.NewRecorder()
	r.ServeHTTP(delW, delReq)
	assert.Equal(t, http.StatusNoContent, delW.Code)
}

func TestDeleteConflictNotFoundReturns404(t *testing.T) {
	r, repo := newTestRouter()
	a, _ := repo.CreateGroup(context.Background(), Group{Name: "Dev"})
	b, _ := repo.CreateGroup(context.Background(), Group{Name: "QA"})

	body := `{"group_id1":` + strconv.FormatInt(a.ID, 10) + `,"group_id2":` + strconv.FormatInt(b.ID, 10) + `}`
	req := httptest.NewRequest(http.MethodDelete, "/admin/conflicts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUnknownGroupReturns404(t *testing.T) {
	r, _ := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/groups/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

