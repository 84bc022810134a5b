package pipeline

import (
	"slices"
	"strings"
	"testing"

	"github.com/passeth/neural-visuals-v2/config"
)

func TestFFmpegArgs(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	ff := FFmpegFrom(cfg.Capture)

	enc := strings.Join(ff.EncodeArgs("out/a_visual.mp4", 1920, 1080, 60), " ")
	for _, want := range []string{"-f rawvideo", "-pix_fmt rgba", "-s 1920x1080", "-r 60", "-i -", "-c:v libx264", "-preset ultrafast", "-pix_fmt yuv420p"} {
		if !strings.Contains(enc, want) {
			t.Errorf("encode args %q missing %q", enc, want)
		}
	}
	if !strings.HasSuffix(enc, "out/a_visual.mp4") {
		t.Errorf("encode args should end with the output path: %q", enc)
	}

	mux := ff.MuxArgs("v.mp4", "a.mp3", "f.mp4")
	for _, want := range []string{"-shortest", "copy", "aac", "192k"} {
		if !slices.Contains(mux, want) {
			t.Errorf("mux args %v missing %q", mux, want)
		}
	}
	if mux[len(mux)-1] != "f.mp4" {
		t.Errorf("mux output = %q", mux[len(mux)-1])
	}
}

func TestTailBuffer(t *testing.T) {
	tb := &tailBuffer{max: 8}
	tb.Write([]byte("hello "))
	tb.Write([]byte("world!"))
	if got := tb.String(); got != "o world!" {
		t.Errorf("tail = %q, want %q", got, "o world!")
	}
}

func TestRendererFor(t *testing.T) {
	for _, name := range []string{"", "software", "raylib"} {
		if _, err := RendererFor(name); err != nil {
			t.Errorf("RendererFor(%q): %v", name, err)
		}
	}
	if _, err := RendererFor("vulkan"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
