package meili

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerocell/towersync/internal/resilience"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-api-key", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"status": "available"})
	})

	require.NoError(t, c.Health(context.Background()))
}

func TestHealth_Unavailable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "down"})
	})

	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhealthy")
}

func TestEnsureIndex_Creates(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/indexes", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "towers", body["uid"])
		assert.Equal(t, "id", body["primaryKey"])

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(TaskInfo{TaskUID: 1, Type: "indexCreation"})
	})

	require.NoError(t, c.EnsureIndex(context.Background(), "towers", "id"))
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Index `towers` already exists.",
			"code":    "index_already_exists",
			"type":    "invalid_request",
		})
	})

	require.NoError(t, c.EnsureIndex(context.Background(), "towers", "id"))
}

func TestEnsureIndex_OtherError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Invalid index uid.",
			"code":    "invalid_index_uid",
		})
	})

	err := c.EnsureIndex(context.Background(), "bad uid", "id")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid_index_uid", apiErr.Code)
}

func TestUpdateSettings(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/indexes/towers/settings", r.URL.Path)

		var s Settings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&s))
		assert.Contains(t, s.FilterableAttributes, "_geo")

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(TaskInfo{TaskUID: 2, Type: "settingsUpdate"})
	})

	task, err := c.UpdateSettings(context.Background(), "towers", Settings{
		FilterableAttributes: []string{"_geo", "state"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), task.TaskUID)
}

func TestAddDocuments(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/indexes/towers/documents", r.URL.Path)

		var docs []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&docs))
		assert.Len(t, docs, 2)

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(TaskInfo{TaskUID: 3, Type: "documentAdditionOrUpdate"})
	})

	task, err := c.AddDocuments(context.Background(), "towers", []map[string]any{
		{"id": "1"}, {"id": "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), task.TaskUID)
}

func TestAddDocuments_ServerErrorIsTransient(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance","code":"internal"}`))
	})

	_, err := c.AddDocuments(context.Background(), "towers", []map[string]any{{"id": "1"}})
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestDeleteDocuments(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indexes/towers/documents/delete-batch", r.URL.Path)

		var ids []string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ids))
		assert.Equal(t, []string{"4", "5"}, ids)

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(TaskInfo{TaskUID: 4, Type: "documentDeletion"})
	})

	task, err := c.DeleteDocuments(context.Background(), "towers", []string{"4", "5"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), task.TaskUID)
}
