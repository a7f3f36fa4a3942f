package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAPI(serverURL string, token TokenSource) *API {
	return NewAPI(&config.ClientConfig{
		BaseURL:        serverURL,
		RequestTimeout: time.Second,
	}, token, zap.NewNop())
}

func TestAPIAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(service.GameSnapshot{GameID: 4, Gold: 100})
	}))
	defer server.Close()

	api := newTestAPI(server.URL, func() string { return "tok-123" })
	snap, err := api.GetGame(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, uint(4), snap.GameID)
	assert.Equal(t, 100, snap.Gold)
}

func TestAPIUnauthorizedFiresHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"code": "INVALID_TOKEN", "message": "token expired"})
	}))
	defer server.Close()

	api := newTestAPI(server.URL, func() string { return "stale" })
	fired := false
	api.OnUnauthorized(func() { fired = true })

	_, err := api.GetGame(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, fired)
	assert.Contains(t, err.Error(), "INVALID_TOKEN")
}

func TestAPIServerErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"code": "INSIGHT_FAILED", "message": "no insight tokens remaining"})
	}))
	defer server.Close()

	api := newTestAPI(server.URL, nil)
	_, err := api.UseInsight(context.Background(), 1, "what next")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no insight tokens remaining")
}
