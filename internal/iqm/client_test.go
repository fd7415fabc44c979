package iqm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Architecture(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quantum-architecture", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(architectureResponse{
			QuantumArchitecture: QuantumArchitecture{
				Name:              "spark",
				Qubits:            []string{"QB1", "QB2", "QB3"},
				QubitConnectivity: [][2]string{{"QB1", "QB2"}, {"QB2", "QB3"}},
				Operations:        []string{"phased_rx", "cz", "measurement", "barrier"},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sekrit")
	arch, err := c.Architecture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "spark", arch.Name)
	assert.Len(t, arch.Qubits, 3)
	assert.True(t, arch.HasOperation("cz"))
	assert.False(t, arch.HasOperation("move"))
}

func TestHTTPClient_SubmitAndRun(t *testing.T) {
	jobID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/jobs":
			var req RunRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 100, req.Shots)
			require.Len(t, req.Circuits, 1)
			assert.Equal(t, "bell", req.Circuits[0].Name)
			_ = json.NewEncoder(w).Encode(SubmitResponse{ID: jobID})
		case r.Method == http.MethodGet && r.URL.Path == "/jobs/"+jobID.String():
			_ = json.NewEncoder(w).Encode(RunResult{
				Status: StatusReady,
				Measurements: []Measurements{
					{"c_0": [][]int{{0}, {1}}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sekrit")
	id, err := c.Submit(context.Background(), &RunRequest{
		Circuits: []Circuit{{Name: "bell", Instructions: []Instruction{
			{Name: "cz", Qubits: []string{"QB1", "QB2"}, Args: map[string]any{}},
		}}},
		Shots: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, jobID, id)

	res, err := c.Run(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, res.Status)
	require.Len(t, res.Measurements, 1)
	assert.Equal(t, [][]int{{0}, {1}}, res.Measurements[0]["c_0"])
}

func TestHTTPClient_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "expired")
	_, err := c.Architecture(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestHTTPClient_WaitForResults(t *testing.T) {
	jobID := uuid.New()
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := polls.Add(1)
		res := RunResult{Status: StatusPendingExecution}
		if n >= 3 {
			res = RunResult{Status: StatusReady, Measurements: []Measurements{{}}}
		}
		_ = json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sekrit", WithPollInterval(time.Millisecond))
	res, err := c.WaitForResults(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, res.Status)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestHTTPClient_WaitForResultsFailedIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(RunResult{Status: StatusFailed, Message: "calibration expired"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sekrit", WithPollInterval(time.Millisecond))
	res, err := c.WaitForResults(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "calibration expired", res.Message)
}

func TestHTTPClient_WaitForResultsHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(RunResult{Status: StatusPendingCompilation})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewHTTPClient(srv.URL, "sekrit", WithPollInterval(5*time.Millisecond))
	_, err := c.WaitForResults(ctx, uuid.New())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusTerminal(StatusReady))
	assert.True(t, StatusTerminal(StatusFailed))
	assert.True(t, StatusTerminal(StatusAborted))
	assert.False(t, StatusTerminal(StatusPendingCompilation))
	assert.False(t, StatusTerminal(StatusPendingExecution))
}
