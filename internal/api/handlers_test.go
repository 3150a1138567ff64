package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bounded-cache/internal/cache"
	"bounded-cache/internal/events"
	"bounded-cache/internal/logs"
	"bounded-cache/internal/metrics"
	"bounded-cache/internal/storage"
)

func newTestRouter(t *testing.T, cfg cache.Config) (*gin.Engine, *events.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := metrics.NewRegistry()
	logger := logs.NewLogger(100, logs.DEBUG)
	kv := cache.New[string, string](cfg, storage.NewMemory[string, string](), reg)
	hub := events.NewHub()

	handler := NewHandler(kv, reg, logger, hub)
	return RegisterRoutes(handler), hub
}

func putKey(t *testing.T, router *gin.Engine, key, value string, ttlMs int64) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{"value": value, "ttl_ms": ttlMs})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/kv/"+key, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getKey(t *testing.T, router *gin.Engine, key string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/kv/"+key, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetAndGetKey(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	w := putKey(t, router, "greeting", "hello", 0)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = getKey(t, router, "greeting")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp["value"])
}

func TestGetMissingKey_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	w := getKey(t, router, "absent")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetKey_InvalidBody(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	req := httptest.NewRequest(http.MethodPut, "/kv/bad", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetKey_TTLExpires(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	putKey(t, router, "brief", "v", 30)

	w := getKey(t, router, "brief")
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(60 * time.Millisecond)

	w = getKey(t, router, "brief")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteKey_Idempotent(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	putKey(t, router, "doomed", "v", 0)

	req := httptest.NewRequest(http.MethodDelete, "/kv/doomed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Deleting again is still a 204, not an error.
	req = httptest.NewRequest(http.MethodDelete, "/kv/doomed", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = getKey(t, router, "doomed")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListKeys(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	putKey(t, router, "a", "1", 0)
	putKey(t, router, "b", "2", 0)

	req := httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Keys []string `json:"keys"`
		Size int      `json:"size"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Size)
	assert.ElementsMatch(t, []string{"a", "b"}, resp.Keys)
}

func TestClearCache(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	putKey(t, router, "a", "1", 0)

	req := httptest.NewRequest(http.MethodPost, "/admin/clear", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = getKey(t, router, "a")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveSnapshot(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	req := httptest.NewRequest(http.MethodPost, "/admin/save", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLRUOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 3})

	for i, key := range []string{"a", "b", "c", "d"} {
		putKey(t, router, key, fmt.Sprintf("%d", i+1), 0)
	}

	assert.Equal(t, http.StatusNotFound, getKey(t, router, "a").Code)
	assert.Equal(t, http.StatusOK, getKey(t, router, "b").Code)
	assert.Equal(t, http.StatusOK, getKey(t, router, "c").Code)
	assert.Equal(t, http.StatusOK, getKey(t, router, "d").Code)
}

func TestGetMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	putKey(t, router, "a", "1", 0)
	getKey(t, router, "a")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var snap map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap["cache_sets_total"])
	assert.Equal(t, int64(1), snap["cache_hits_total"])
}

func TestGetHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, cache.Config{Capacity: 8})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		OverallStatus string `json:"overall_status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "OK", report.OverallStatus)
}

func TestMutationsPublishEvents(t *testing.T) {
	router, hub := newTestRouter(t, cache.Config{Capacity: 8})

	client := &recordingClient{}
	hub.Register(client)

	putKey(t, router, "a", "1", 0)

	req := httptest.NewRequest(http.MethodDelete, "/kv/a", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	require.Len(t, client.messages, 2)

	var ev events.Event
	require.NoError(t, json.Unmarshal(client.messages[0], &ev))
	assert.Equal(t, events.OpSet, ev.Op)
	assert.Equal(t, "a", ev.Key)

	require.NoError(t, json.Unmarshal(client.messages[1], &ev))
	assert.Equal(t, events.OpDelete, ev.Op)
}

type recordingClient struct {
	messages [][]byte
}

func (c *recordingClient) Send(message []byte) bool {
	c.messages = append(c.messages, message)
	return true
}

func (c *recordingClient) Close() {}
