package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves customer records at /{id}/ the way the record store does.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]map[string]interface{}
	writes  int
}

func newFakeStore(t *testing.T, records map[string]map[string]interface{}) (*fakeStore, *httptest.Server) {
	t.Helper()
	s := &fakeStore{records: records}
	server := httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(server.Close)
	return s, server
}

func (s *fakeStore) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.Trim(r.URL.Path, "/")
	switch r.Method {
	case http.MethodGet:
		record, ok := s.records[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": record})
	case http.MethodPut:
		var body struct {
			Data map[string]interface{} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.writes++
		s.records[id] = body.Data
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": body.Data})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *fakeStore) record(id string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

func setupEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("API_URL", baseURL)
	t.Setenv("RECORD_STORE_BASE_URL", "")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("LOGGING_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUpgradeCmd_Success(t *testing.T) {
	store, server := newFakeStore(t, map[string]map[string]interface{}{
		"C1": {"SUBSCRIPTION": "basic", "ENABLED_FEATURES": map[string]interface{}{"export": true}, "NAME": "Ada"},
	})
	setupEnv(t, server.URL+"/")

	out, err := execute(t, "upgrade", "C1", "premium")

	require.NoError(t, err)
	assert.Equal(t, "Subscription upgraded successfully.\n", out)

	record := store.record("C1")
	assert.Equal(t, "premium", record["SUBSCRIPTION"])
	assert.Equal(t, "Ada", record["NAME"])
	assert.NotEmpty(t, record["UPGRADE_DATE"])
	assert.Equal(t, map[string]interface{}{"export": true}, record["ENABLED_FEATURES"])
}

func TestDowngradeCmd_ToFreeDisablesFeatures(t *testing.T) {
	store, server := newFakeStore(t, map[string]map[string]interface{}{
		"C2": {"SUBSCRIPTION": "premium", "ENABLED_FEATURES": map[string]interface{}{"export": true, "api": true}},
	})
	setupEnv(t, server.URL)

	out, err := execute(t, "downgrade", "C2", "free")

	require.NoError(t, err)
	assert.Equal(t, "Subscription downgraded successfully.\n", out)

	record := store.record("C2")
	assert.Equal(t, "free", record["SUBSCRIPTION"])
	assert.Equal(t, map[string]interface{}{"export": false, "api": false}, record["ENABLED_FEATURES"])
	assert.NotEmpty(t, record["DOWNGRADE_DATE"])
}

func TestChangeCmd_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"already at target", []string{"upgrade", "C1", "basic"}, "Customer already has a basic subscription.\n"},
		{"unreachable tier", []string{"upgrade", "C3", "basic"}, "Upgrade failed: Invalid subscription level.\n"},
		{"nothing below free", []string{"downgrade", "C6", "basic"}, "Downgrade failed: Invalid subscription level.\n"},
		{"unknown customer", []string{"upgrade", "C404", "premium"}, "Customer with ID C404 not found.\n"},
		{"record without tier", []string{"downgrade", "C5", "free"}, "Customer with ID C5 not found.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, server := newFakeStore(t, map[string]map[string]interface{}{
				"C1": {"SUBSCRIPTION": "basic"},
				"C3": {"SUBSCRIPTION": "premium"},
				"C5": {"NAME": "nobody"},
				"C6": {"SUBSCRIPTION": "free"},
			})
			setupEnv(t, server.URL)

			out, err := execute(t, tt.args...)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Zero(t, store.writes)
		})
	}
}

func TestChangeCmd_InvalidLevel(t *testing.T) {
	store, server := newFakeStore(t, map[string]map[string]interface{}{
		"C1": {"SUBSCRIPTION": "basic"},
	})
	setupEnv(t, server.URL)

	out, err := execute(t, "upgrade", "C1", "gold")

	require.Error(t, err)
	assert.Equal(t, "Upgrade failed: Invalid subscription level 'gold'.\n", out)
	assert.Zero(t, store.writes)
}

func TestChangeCmd_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()
	setupEnv(t, baseURL)

	out, err := execute(t, "downgrade", "C1", "free")

	require.Error(t, err)
	assert.Equal(t, "Connection error: Unable to connect to server.\n", out)
}

func TestChangeCmd_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "upgrade", "C1")
	assert.Error(t, err)
}

func TestHistoryCmd(t *testing.T) {
	mr := miniredis.RunT(t)
	_, server := newFakeStore(t, map[string]map[string]interface{}{
		"C1": {"SUBSCRIPTION": "free"},
	})
	setupEnv(t, server.URL)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDRESS", mr.Addr())

	_, err := execute(t, "upgrade", "C1", "premium")
	require.NoError(t, err)
	_, err = execute(t, "upgrade", "C1", "premium")
	require.NoError(t, err)

	out, err := execute(t, "history", "C1")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "already_at_target (200)")
	assert.Contains(t, lines[1], "success (204)")
	assert.Contains(t, lines[1], "premium")

	out, err = execute(t, "history", "C9")
	require.NoError(t, err)
	assert.Equal(t, "No subscription changes recorded for C9.\n", out)
}

func TestHistoryCmd_WithoutRedis(t *testing.T) {
	_, server := newFakeStore(t, map[string]map[string]interface{}{})
	setupEnv(t, server.URL)

	_, err := execute(t, "history", "C1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "enable redis")
}

func TestVersionCmd(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	defer func() { Version, GitCommit = oldVersion, oldCommit }()

	Version, GitCommit = "1.2.3", "abcdef"
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "subscription 1.2.3")
	assert.Contains(t, out, "Commit: abcdef")

	GitCommit = "unknown"
	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.NotContains(t, out, "Commit:")
}

func TestMetricsServer_Health(t *testing.T) {
	healthy := newMetricsServer(":0", func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	unhealthy := newMetricsServer(":0", func(context.Context) error { return assert.AnError })
	rec = httptest.NewRecorder()
	unhealthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	healthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
