package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksvc/internal/models"
	"tasksvc/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) (*Server, *sqlite.Store) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dbPath := filepath.Join(t.TempDir(), "tasks.db")
	store, err := sqlite.Open(dbPath, logger, false)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return New(store, logger), store
}

func postTask(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/task/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ping":"pong!"}`, rec.Body.String())
}

func TestCreateTask(t *testing.T) {
	srv, store := setupTestServer(t)

	rec := postTask(t, srv, `{"task_name":"buy milk","task_description":"2%"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"task_name":"buy milk","task_description":"2%"}`, rec.Body.String())

	count, err := store.CountTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateTaskWithoutDescription(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := postTask(t, srv, `{"task_name":"buy milk"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"task_name":"buy milk","task_description":null}`, rec.Body.String())
}

func TestCreateTaskAcceptsEmptyName(t *testing.T) {
	srv, store := setupTestServer(t)

	rec := postTask(t, srv, `{"task_name":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"task_name":"","task_description":null}`, rec.Body.String())

	count, err := store.CountTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateTaskMissingNameRejected(t *testing.T) {
	srv, store := setupTestServer(t)

	rec := postTask(t, srv, `{"task_description":"2%"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "task_name")

	count, err := store.CountTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCreateTaskWrongTypedNameRejected(t *testing.T) {
	srv, store := setupTestServer(t)

	rec := postTask(t, srv, `{"task_name":123}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	count, err := store.CountTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCreateTaskMalformedJSONRejected(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := postTask(t, srv, `{"task_name":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	srv, store := setupTestServer(t)

	const workers = 2
	ids := make(chan int64, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := postTask(t, srv, `{"task_name":"buy milk"}`)
			assert.Equal(t, http.StatusOK, rec.Code)

			var task models.Task
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
			ids <- task.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}

	count, err := store.CountTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(workers), count)
}
