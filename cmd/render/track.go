package main

import (
	"path/filepath"
	"strings"
)

// trackName derives a job id from an audio path.
func trackName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
