package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/reframe/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func validConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		InputVideo:     writeFile(t, dir, "talk.mp4", "not really a video"),
		SegmentsPath:   writeFile(t, dir, "segments.json", `[{"speakers":[0],"start_time":0,"end_time":5}]`),
		OutDir:         filepath.Join(dir, "out"),
		AspectWidth:    9,
		AspectHeight:   16,
		Options:        config.Defaults(),
		FaceServiceURL: "http://127.0.0.1:8791",
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := validConfig(t)
	cfg.InputVideo = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty input accepted")
	}

	cfg = validConfig(t)
	cfg.InputVideo = filepath.Join(t.TempDir(), "missing.mp4")
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing input accepted")
	}

	cfg = validConfig(t)
	cfg.SegmentsPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing segments path accepted")
	}

	cfg = validConfig(t)
	cfg.AspectWidth = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero aspect accepted")
	}

	cfg = validConfig(t)
	cfg.FaceServiceURL = "http://example.com/detect"
	if err := cfg.Validate(); err == nil {
		t.Fatal("plain http to a non-loopback host accepted")
	}
}

func TestLoadSegments(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "segments.json",
		`[{"speakers":[0],"start_time":0,"end_time":4.5},{"speakers":[0,1],"start_time":4.5,"end_time":9}]`)

	segments, err := loadSegments(path)
	if err != nil {
		t.Fatalf("loadSegments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[1].Start != 4.5 || segments[1].End != 9 {
		t.Fatalf("second segment = %+v", segments[1])
	}
	if len(segments[1].Speakers) != 2 {
		t.Fatalf("second segment speakers = %v", segments[1].Speakers)
	}

	bad := writeFile(t, dir, "bad.json", `{"not":"an array"}`)
	if _, err := loadSegments(bad); err == nil {
		t.Fatal("malformed segments accepted")
	}
}

func TestLoadScenes(t *testing.T) {
	scenes, err := loadScenes("")
	if err != nil || scenes != nil {
		t.Fatalf("empty path: got %v, %v", scenes, err)
	}

	path := writeFile(t, t.TempDir(), "scenes.json", `[1.2, 7.8]`)
	scenes, err = loadScenes(path)
	if err != nil {
		t.Fatalf("loadScenes: %v", err)
	}
	if len(scenes) != 2 || scenes[0] != 1.2 || scenes[1] != 7.8 {
		t.Fatalf("scenes = %v", scenes)
	}
}

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	dir := buildRunOutDir("out", "/videos/My Talk (final).mp4", now)

	if !strings.HasPrefix(dir, filepath.Join("out", "my-talk-final-20260314-150926Z-")) {
		t.Fatalf("unexpected run dir: %s", dir)
	}
	suffix := dir[strings.LastIndex(dir, "-")+1:]
	if len(suffix) != 6 {
		t.Fatalf("hash suffix %q, want 6 chars", suffix)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	cases := map[string]string{
		"My Talk (final)": "my-talk-final",
		"already-clean":   "already-clean",
		"___":             "",
		"Ep.12 @ Studio":  "ep-12-studio",
	}
	for in, want := range cases {
		if got := normalizePathSegment(in); got != want {
			t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
