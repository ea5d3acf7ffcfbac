package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs") + "/"
	logger := NewLog(dir, "server")
	logger.Printf("rpc server has started")

	data, err := os.ReadFile(dir + "server.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "rpc server has started")
}

func TestGetJson(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "abc", r.Header.Get("Token"))
			w.Write([]byte(`{"success":true}`))
		case "/broken":
			w.Write([]byte(`{"success":`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()
	client := srv.Client()

	var out struct {
		Success bool `json:"success"`
	}
	require.NoError(t, GetJson(context.Background(), client, srv.URL+"/ok", map[string]string{"Token": "abc"}, &out))
	assert.True(t, out.Success)

	err := GetJson(context.Background(), client, srv.URL+"/denied", nil, &out)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	assert.Error(t, GetJson(context.Background(), client, srv.URL+"/broken", nil, &out))
}
