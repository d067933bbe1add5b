package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewer(t *testing.T) {
	tests := []struct {
		candidate, current string
		want               bool
		wantErr            bool
	}{
		{"1.4.0", "1.3.9", true, false},
		{"v1.4.0", "1.4.0", false, false},
		{"1.4", "1.4.0", false, false},
		{"1.10.0", "1.9.0", true, false},
		{"1.4.0-rc.1", "1.4.0", false, false},
		{"2.0.0", "1.99.99", true, false},
		{"latest", "1.0.0", false, true},
		{"1.0.0", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.candidate+"_vs_"+tt.current, func(t *testing.T) {
			got, err := Newer(tt.candidate, tt.current)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func serve(t *testing.T, payload []byte, manifest func(base string) Manifest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	mux.HandleFunc("/latest.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(manifest(srv.URL))
	})
	mux.HandleFunc("/files/sheet-export.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})
	t.Cleanup(srv.Close)
	return srv
}

func TestChecker_CheckAndDownload(t *testing.T) {
	payload := []byte("release payload")
	sum := sha256.Sum256(payload)
	srv := serve(t, payload, func(base string) Manifest {
		return Manifest{Version: "1.5.0", URL: base + "/files/sheet-export.zip", SHA256: hex.EncodeToString(sum[:])}
	})

	c := NewChecker(nil, srv.URL+"/latest.json", "1.4.2", zaptest.NewLogger(t))
	rel, err := c.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, rel.Available)
	assert.Equal(t, "1.4.2", rel.Current)

	path, err := c.Download(context.Background(), rel, t.TempDir(), nil)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestChecker_UpToDate(t *testing.T) {
	srv := serve(t, nil, func(base string) Manifest {
		return Manifest{Version: "v1.4.2", URL: base + "/files/sheet-export.zip"}
	})
	rel, err := NewChecker(nil, srv.URL+"/latest.json", "1.4.2", nil).Check(context.Background())
	require.NoError(t, err)
	assert.False(t, rel.Available)
}

func TestChecker_ChecksumMismatch(t *testing.T) {
	srv := serve(t, []byte("tampered"), func(base string) Manifest {
		return Manifest{Version: "2.0.0", URL: base + "/files/sheet-export.zip", SHA256: "00"}
	})
	c := NewChecker(nil, srv.URL+"/latest.json", "1.0.0", nil)
	rel, err := c.Check(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = c.Download(context.Background(), rel, dir, nil)
	assert.ErrorIs(t, err, ErrChecksum)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
