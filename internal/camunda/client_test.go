package camunda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/medcart/internal/apperr"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:        srv.URL,
		WorkerID:       "medcart-test-1",
		TenantID:       "clinic",
		MaxTasks:       2,
		LockDurationMs: 10000,
		LongPollMs:     500,
	})
}

func TestFetchAndLock(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/external-task/fetchAndLock", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "medcart-test-1", body["workerId"])
		assert.Equal(t, 2.0, body["maxTasks"])
		assert.Equal(t, 500.0, body["asyncResponseTimeout"])

		topics := body["topics"].([]any)
		require.Len(t, topics, 1)
		topic := topics[0].(map[string]any)
		assert.Equal(t, "inventory-check", topic["topicName"])
		assert.Equal(t, 10000.0, topic["lockDuration"])
		assert.Equal(t, []any{"clinic"}, topic["tenantIdIn"])

		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":        "task-1",
			"topicName": "inventory-check",
			"variables": map[string]any{
				"medication_id": map[string]any{"value": "opioid-001", "type": "String"},
			},
		}})
	})

	tasks, err := c.FetchAndLock(context.Background(), "inventory-check")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-1", tasks[0].ID)
	assert.Equal(t, "opioid-001", tasks[0].Variables.String("medication_id"))
}

func TestComplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/external-task/task-1/complete", r.URL.Path)

		var body struct {
			WorkerID  string    `json:"workerId"`
			Variables Variables `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "medcart-test-1", body.WorkerID)
		assert.Equal(t, "Double", body.Variables["current_stock"].Type)

		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Complete(context.Background(), "task-1", NewVariables(map[string]any{
		"current_stock": 5.0,
	}))
	require.NoError(t, err)
}

func TestFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/external-task/task-1/failure", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Medication with id opioid-009 not found", body["errorMessage"])
		assert.Equal(t, 0.0, body["retries"])
		assert.Equal(t, 1000.0, body["retryTimeout"])

		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Failure(context.Background(), "task-1",
		"Medication with id opioid-009 not found", "", 0, 1000)
	require.NoError(t, err)
}

func TestEngineErrorSurfacesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"ProcessEngineException"}`))
	})

	_, err := c.FetchAndLock(context.Background(), "inventory-check")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindExternal))

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Details, "ProcessEngineException")
}
