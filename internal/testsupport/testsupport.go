// Package testsupport provides shared fixtures for package tests: a config
// rooted in per-test temp directories and ready-made project builders.
package testsupport

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"overdub/internal/audio"
	"overdub/internal/config"
	"overdub/internal/project"
)

// NewConfig returns a validated config whose directories all live under the
// test's temp dir.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Paths.ProjectsDir = filepath.Join(root, "projects")
	cfg.Paths.ExportDir = filepath.Join(root, "exports")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.LegacyCacheDir = filepath.Join(root, "legacy")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fixture config invalid: %v", err)
	}
	return &cfg
}

// NewProject builds a project with count segments advanced to the given
// stage. Segment texts are generated; timings are contiguous 2-second spans.
func NewProject(t *testing.T, name string, stage project.Stage, count int) *project.Project {
	t.Helper()
	p := project.New(name, "test fixture")

	segments := make([]*project.Segment, count)
	for i := range segments {
		start := float64(i) * 2.0
		segments[i] = project.NewSegment(fmt.Sprintf("seg_%03d", i+1), start, start+2.0, fmt.Sprintf("line %d", i+1))
	}
	if stage != project.StageFileUpload {
		if err := p.AdvanceStage(stage, segments); err != nil {
			t.Fatalf("advance fixture to %s: %v", stage, err)
		}
	}
	return p
}

// AttachAudio synthesizes a clip per segment of the active collection.
func AttachAudio(t *testing.T, p *project.Project, d time.Duration) {
	t.Helper()
	for _, seg := range p.ActiveSegments() {
		seg.SetAudio(audio.Synthesize(d, audio.DefaultSampleRate))
	}
}
