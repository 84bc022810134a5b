package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/passeth/neural-visuals-v2/audio"
)

// Fetcher downloads remote audio into a local directory.
type Fetcher struct {
	Client *http.Client
	Dir    string
}

// NewFetcher creates a fetcher with a request timeout.
func NewFetcher(dir string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client: &http.Client{Timeout: timeout},
		Dir:    dir,
	}
}

// Fetch downloads rawURL to <Dir>/<id><ext> and returns the local path. The
// extension comes from the URL when it names a supported format, else .mp3.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, id string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing audio url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported audio url scheme %q", u.Scheme)
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if !audio.Supported("x" + ext) {
		ext = ".mp3"
	}
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return "", err
	}
	dest := filepath.Join(f.Dir, id+ext)

	slog.Info("downloading audio", "job_id", id, "url", rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download: %s", resp.Status)
	}

	tmp, err := os.CreateTemp(f.Dir, id+"-*.part")
	if err != nil {
		return "", err
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("downloading audio: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	slog.Info("downloaded audio", "job_id", id, "path", dest, "bytes", n)
	return dest, nil
}
