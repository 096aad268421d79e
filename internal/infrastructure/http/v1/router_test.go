package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markonly/internal/domain/catalog"
	"markonly/internal/infrastructure/storage/memory"
	"markonly/internal/markonly"
	"markonly/pkg/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	p := markonly.NewPolicy()
	reg := markonly.NewRegistry()

	c, err := catalog.New(catalog.Config{
		Groups:   memory.NewStore(catalog.GroupsTable, func() *catalog.Group { return &catalog.Group{} }),
		Items:    memory.NewStore(catalog.ItemsTable, func() *catalog.Item { return &catalog.Item{} }),
		Policy:   &p,
		Registry: reg,
	})
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Catalog:  c,
		Policy:   &p,
		Registry: reg,
		Logger:   logger.NewNop(),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "tester")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func createItem(t *testing.T, r *gin.Engine, body map[string]any) string {
	t.Helper()
	code, resp := do(t, r, http.MethodPost, "/api/v1/catalog/items", body)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "active", resp["status"])
	return resp["id"].(string)
}

func TestRouter_DeleteAndRestore(t *testing.T) {
	r := newTestRouter(t)
	itemID := createItem(t, r, map[string]any{"code": "I1", "name": "Bolt"})
	createItem(t, r, map[string]any{"code": "I2", "name": "Nut"})

	code, _ := do(t, r, http.MethodDelete, "/api/v1/catalog/items/"+itemID, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, resp := do(t, r, http.MethodGet, "/api/v1/catalog/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "deleted", resp["status"])

	code, resp = do(t, r, http.MethodGet, "/api/v1/catalog/items", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["items"], 1)
	assert.Equal(t, float64(2), resp["totalCount"])
	assert.Equal(t, float64(1), resp["deletedCount"])

	code, resp = do(t, r, http.MethodPost, "/api/v1/catalog/items/"+itemID+"/restore", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "active", resp["status"])
}

func TestRouter_StrictDelete(t *testing.T) {
	r := newTestRouter(t)
	itemID := createItem(t, r, map[string]any{"code": "I1", "name": "Bolt"})

	code, resp := do(t, r, http.MethodDelete, "/api/v1/catalog/items/"+itemID+"?mode=strict", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "RECORD_NOT_DESTROYED", resp["code"])

	_, resp = do(t, r, http.MethodGet, "/api/v1/catalog/items/"+itemID, nil)
	assert.Equal(t, "deleted", resp["status"])
}

func TestRouter_PurgeMode(t *testing.T) {
	r := newTestRouter(t)
	itemID := createItem(t, r, map[string]any{"code": "I1", "name": "Bolt"})

	code, _ := do(t, r, http.MethodDelete, "/api/v1/catalog/items/"+itemID+"?mode=purge", nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, resp := do(t, r, http.MethodGet, "/api/v1/catalog/items/"+itemID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp["code"])
}

func TestRouter_InvalidInput(t *testing.T) {
	r := newTestRouter(t)

	code, resp := do(t, r, http.MethodDelete, "/api/v1/catalog/items/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", resp["code"])

	itemID := createItem(t, r, map[string]any{"code": "I1", "name": "Bolt"})
	code, _ = do(t, r, http.MethodDelete, "/api/v1/catalog/items/"+itemID+"?mode=shred", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodGet, "/api/v1/catalog/items?status=gone", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_GroupItemsAndCounts(t *testing.T) {
	r := newTestRouter(t)

	code, resp := do(t, r, http.MethodPost, "/api/v1/catalog/groups", map[string]any{"code": "G1", "name": "Fasteners"})
	require.Equal(t, http.StatusCreated, code)
	groupID := resp["id"].(string)

	a := createItem(t, r, map[string]any{"code": "I1", "name": "Bolt", "groupId": groupID})
	b := createItem(t, r, map[string]any{"code": "I2", "name": "Nut", "groupId": groupID})
	createItem(t, r, map[string]any{"code": "I3", "name": "Hammer"})

	code, resp = do(t, r, http.MethodPost, "/api/v1/catalog/items/bulk-delete", map[string]any{"ids": []string{a, b}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), resp["affected"])

	code, resp = do(t, r, http.MethodGet, "/api/v1/catalog/groups/"+groupID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), resp["itemCount"])

	code, resp = do(t, r, http.MethodGet, "/api/v1/catalog/groups/"+groupID+"/items?status=deleted", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["items"], 2)

	code, resp = do(t, r, http.MethodPost, "/api/v1/catalog/items/purge", map[string]any{"limit": 0})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), resp["affected"])

	code, resp = do(t, r, http.MethodGet, "/api/v1/catalog/groups/"+groupID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), resp["itemCount"])
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	code, resp := do(t, r, http.MethodGet, "/health/info", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["mark_only_types"], 2)

	code, _ = do(t, r, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, code)
}
