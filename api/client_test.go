package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CommitTrim(t *testing.T) {
	var got TrimRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/assets/a%201/trim", r.URL.EscapedPath())
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(TrimAccepted{JobID: "j1", Status: "pending"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	res, err := c.CommitTrim(context.Background(), "a 1", 10, 20.5)
	require.NoError(t, err)
	assert.Equal(t, &TrimAccepted{JobID: "j1", Status: "pending"}, res)
	assert.Equal(t, TrimRequest{Start: 10, End: 20.5}, got)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(ErrorBody{Error: "end must be greater than start"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).CommitTrim(context.Background(), "a1", 5, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "api: status 400: end must be greater than start", se.Error())
}

func TestClient_Info(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/assets/a1/info", r.URL.Path)
		_ = json.NewEncoder(w).Encode(AssetInfo{ID: "a1", Duration: 93.2})
	}))
	defer srv.Close()

	info, err := NewClient(srv.URL, time.Second).Info(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 93.2, info.Duration)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url, time.Second).Health(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStatus)
}

func TestStatusError_NoMessage(t *testing.T) {
	assert.Equal(t, "api: status 502", (&StatusError{Code: 502}).Error())
}
