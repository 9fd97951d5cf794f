// Package update checks a release feed for newer builds, downloads the
// packaged artifact into a staging directory, and hands installation off to
// an external script so the running process can be replaced.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"go.uber.org/zap"
)

type releaseAsset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

type release struct {
	TagName string         `json:"tag_name"`
	Name    string         `json:"name"`
	Body    string         `json:"body"`
	Assets  []releaseAsset `json:"assets"`
}

// CheckResult describes the latest published release relative to the running
// build.
type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	UpdateAvailable bool   `json:"update_available"`
	Notes           string `json:"notes,omitempty"`
	AssetName       string `json:"asset_name,omitempty"`
	AssetURL        string `json:"-"`
}

type Checker struct {
	feedURL       string
	current       string
	stagingDir    string
	handoffScript string
	client        *http.Client
	log           *zap.Logger
}

func NewChecker(feedURL, current, stagingDir, handoffScript string, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{
		feedURL:       feedURL,
		current:       current,
		stagingDir:    stagingDir,
		handoffScript: handoffScript,
		client:        &http.Client{Timeout: 30 * time.Second},
		log:           log,
	}
}

// Check fetches the latest release and compares its tag against the running
// version. Tags may carry a leading "v".
func (c *Checker) Check(ctx context.Context) (*CheckResult, error) {
	if c.feedURL == "" {
		return nil, fmt.Errorf("update feed is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release feed returned status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to decode release feed: %w", err)
	}

	latest, err := version.NewVersion(strings.TrimPrefix(rel.TagName, "v"))
	if err != nil {
		return nil, fmt.Errorf("release tag %q is not a version: %w", rel.TagName, err)
	}
	current, err := version.NewVersion(strings.TrimPrefix(c.current, "v"))
	if err != nil {
		return nil, fmt.Errorf("running version %q is not a version: %w", c.current, err)
	}

	result := &CheckResult{
		CurrentVersion:  current.String(),
		LatestVersion:   latest.String(),
		UpdateAvailable: latest.GreaterThan(current),
		Notes:           rel.Body,
	}
	if asset := pickAsset(rel.Assets); asset != nil {
		result.AssetName = asset.Name
		result.AssetURL = asset.DownloadURL
	}
	return result, nil
}

// pickAsset prefers a zip archive and falls back to the first asset.
func pickAsset(assets []releaseAsset) *releaseAsset {
	for i := range assets {
		if strings.HasSuffix(strings.ToLower(assets[i].Name), ".zip") {
			return &assets[i]
		}
	}
	if len(assets) > 0 {
		return &assets[0]
	}
	return nil
}

// Stage downloads the release asset into the staging directory and returns
// the local path of the downloaded file.
func (c *Checker) Stage(ctx context.Context, result *CheckResult) (string, error) {
	if result == nil || result.AssetURL == "" {
		return "", fmt.Errorf("no downloadable asset in latest release")
	}
	if err := os.MkdirAll(c.stagingDir, 0o755); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.AssetURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("asset download returned status %d", resp.StatusCode)
	}

	path := filepath.Join(c.stagingDir, result.AssetName)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write staged asset: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	c.log.Info("staged update asset",
		zap.String("version", result.LatestVersion),
		zap.String("path", path))
	return path, nil
}

// Handoff launches the external installer script against a staged asset. The
// script runs detached so it can replace this process.
func (c *Checker) Handoff(stagedPath string) error {
	if c.handoffScript == "" {
		return fmt.Errorf("no handoff script configured")
	}
	if _, err := os.Stat(stagedPath); err != nil {
		return fmt.Errorf("staged asset missing: %w", err)
	}

	cmd := exec.Command(c.handoffScript, stagedPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch handoff script: %w", err)
	}
	c.log.Info("update handoff started",
		zap.String("script", c.handoffScript),
		zap.Int("pid", cmd.Process.Pid))
	return cmd.Process.Release()
}
