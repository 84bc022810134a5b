package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func audioServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tracks/song.wav", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("RIFF-data"))
	})
	mux.HandleFunc("/tracks/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ID3-data"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher(t *testing.T) {
	srv := audioServer(t)

	tests := []struct {
		name     string
		url      string
		wantFile string
		wantBody string
		wantErr  bool
	}{
		{"extension from url", srv.URL + "/tracks/song.wav", "NM001.wav", "RIFF-data", false},
		{"default extension", srv.URL + "/tracks/stream", "NM001.mp3", "ID3-data", false},
		{"not found", srv.URL + "/tracks/missing.mp3", "", "", true},
		{"bad scheme", "ftp://example.com/a.mp3", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			f := NewFetcher(dir, 5*time.Second)

			got, err := f.Fetch(context.Background(), tt.url, "NM001")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				entries, _ := os.ReadDir(dir)
				if len(entries) != 0 {
					t.Errorf("left %d files behind", len(entries))
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if got != filepath.Join(dir, tt.wantFile) {
				t.Errorf("path = %q, want %q", got, filepath.Join(dir, tt.wantFile))
			}
			body, err := os.ReadFile(got)
			if err != nil || string(body) != tt.wantBody {
				t.Errorf("body = %q (%v), want %q", body, err, tt.wantBody)
			}
		})
	}
}

func TestRunnerFetchesURL(t *testing.T) {
	srv := audioServer(t)
	f := newFixture(t, nil)

	rec, err := f.runner.Run(context.Background(), Job{
		ID:       "remote",
		AudioURL: srv.URL + "/tracks/song.wav",
		Theme:    "brainboost",
		Duration: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.Status != StatusSuccess {
		t.Errorf("status = %s", rec.Status)
	}
	if want := filepath.Join(f.audioDir, "remote.wav"); len(f.mux.audio) != 1 || f.mux.audio[0] != want {
		t.Errorf("muxed audio = %v, want %s", f.mux.audio, want)
	}

	_, err = f.runner.Run(context.Background(), Job{
		ID:       "gone",
		AudioURL: srv.URL + "/tracks/missing.mp3",
		Theme:    "brainboost",
		Duration: 100 * time.Millisecond,
	})
	var je *JobError
	if !errors.As(err, &je) || je.Stage != StageFetch {
		t.Errorf("err = %v, want fetch-stage JobError", err)
	}
}
