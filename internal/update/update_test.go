package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckReportsNewerRelease(t *testing.T) {
	srv := feedServer(t, `{
		"tag_name": "v2.1.0",
		"body": "bug fixes",
		"assets": [
			{"name": "stockpos-2.1.0.tar.gz", "browser_download_url": "https://example.com/a.tar.gz"},
			{"name": "stockpos-2.1.0.zip", "browser_download_url": "https://example.com/a.zip"}
		]
	}`)

	c := NewChecker(srv.URL, "2.0.3", t.TempDir(), "", nil)
	result, err := c.Check(context.Background())
	require.NoError(t, err)

	assert.True(t, result.UpdateAvailable)
	assert.Equal(t, "2.1.0", result.LatestVersion)
	assert.Equal(t, "2.0.3", result.CurrentVersion)
	assert.Equal(t, "stockpos-2.1.0.zip", result.AssetName)
	assert.Equal(t, "bug fixes", result.Notes)
}

func TestCheckSameVersionIsNotAnUpdate(t *testing.T) {
	srv := feedServer(t, `{"tag_name": "v2.0.3", "assets": []}`)

	c := NewChecker(srv.URL, "v2.0.3", t.TempDir(), "", nil)
	result, err := c.Check(context.Background())
	require.NoError(t, err)

	assert.False(t, result.UpdateAvailable)
	assert.Empty(t, result.AssetName)
}

func TestCheckRejectsMalformedTag(t *testing.T) {
	srv := feedServer(t, `{"tag_name": "latest-build"}`)

	c := NewChecker(srv.URL, "2.0.3", t.TempDir(), "", nil)
	_, err := c.Check(context.Background())
	assert.Error(t, err)
}

func TestStageDownloadsAsset(t *testing.T) {
	payload := "zip-bytes"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	c := NewChecker("http://unused", "2.0.3", t.TempDir(), "", nil)
	path, err := c.Stage(context.Background(), &CheckResult{
		LatestVersion: "2.1.0",
		AssetName:     "stockpos-2.1.0.zip",
		AssetURL:      srv.URL + "/stockpos-2.1.0.zip",
	})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestStageWithoutAssetFails(t *testing.T) {
	c := NewChecker("http://unused", "2.0.3", t.TempDir(), "", nil)
	_, err := c.Stage(context.Background(), &CheckResult{})
	assert.Error(t, err)
}
