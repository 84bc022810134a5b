package main

import (
	"testing"
	"time"
)

func TestSingleJob(t *testing.T) {
	tests := []struct {
		name              string
		audio, id, theme  string
		wantID, wantTheme string
	}{
		{"derived id", "music/NM042.mp3", "", "", "NM042", "zenfocus"},
		{"explicit", "music/a.wav", "X1", "ocean", "X1", "ocean"},
		{"no extension", "track", "", "brainboost", "track", "brainboost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := singleJob(tt.audio, tt.id, tt.theme, "arctic", time.Minute, "zenfocus")
			if job.ID != tt.wantID || job.Theme != tt.wantTheme {
				t.Errorf("job = %+v", job)
			}
			if job.AudioPath != tt.audio || job.ColorPreset != "arctic" || job.Duration != time.Minute {
				t.Errorf("job = %+v", job)
			}
		})
	}
}
