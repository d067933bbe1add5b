package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sheet-export/test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"version":"1.2.3"}`))
	}))
	defer srv.Close()

	var v struct{ Version string }
	err := NewClient(WithUserAgent("sheet-export/test")).GetJSON(context.Background(), srv.URL, &v)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.Version)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var v map[string]any
	err := NewClient().GetJSON(context.Background(), srv.URL, &v)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestClient_GetJSONTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"notes":"` + strings.Repeat("x", MaxJSONSize) + `"}`))
	}))
	defer srv.Close()

	var v map[string]any
	err := NewClient().GetJSON(context.Background(), srv.URL, &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than")
}

func TestClient_DownloadFile(t *testing.T) {
	body := strings.Repeat("x", 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "setup.bin")
	var last int64
	err := NewClient().DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		last = written
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.Equal(t, int64(len(body)), last)
	assert.NoFileExists(t, dest+".part")
}

func TestClient_DownloadFileFailureKeepsDestination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "setup.bin")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0644))

	err := NewClient().DownloadFile(context.Background(), srv.URL, dest, nil)
	require.Error(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}
