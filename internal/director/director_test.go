package director

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivlev/chatmotion/internal/config"
)

func TestSchedulerStartFrames(t *testing.T) {
	timing := config.DefaultTiming()
	timing.BaseStartFrame = 12
	timing.StaggerFrames = 18

	s, err := NewScheduler(timing)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	tests := []struct {
		index int
		want  int
	}{
		{0, 12},
		{1, 30},
		{2, 48},
		{5, 102},
	}
	for _, tt := range tests {
		if got := s.StartFrame(tt.index); got != tt.want {
			t.Errorf("StartFrame(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}

	for i := 0; i < 100; i++ {
		if s.StartFrame(i) >= s.StartFrame(i+1) {
			t.Fatalf("start frames not strictly increasing at %d", i)
		}
	}
}

func TestSchedulerRejectsNonPositiveStagger(t *testing.T) {
	for _, stagger := range []int{0, -18} {
		timing := config.DefaultTiming()
		timing.StaggerFrames = stagger

		_, err := NewScheduler(timing)
		if !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("stagger %d: expected ErrInvalidConfig, got %v", stagger, err)
		}
	}
}

func TestSchedulerPhase(t *testing.T) {
	s, _ := NewScheduler(config.DefaultTiming()) // start 12, enter 28

	tests := []struct {
		frame int
		want  Phase
	}{
		{-100, PhasePending},
		{11, PhasePending},
		{12, PhasePending},
		{13, PhaseEntering},
		{39, PhaseEntering},
		{40, PhaseSettled},
		{1000, PhaseSettled},
	}
	for _, tt := range tests {
		if got := s.Phase(tt.frame, 0); got != tt.want {
			t.Errorf("Phase(%d) = %v, want %v", tt.frame, got, tt.want)
		}
	}
	if s.SettledFrame(0) != 40 {
		t.Errorf("SettledFrame(0) = %d, want 40", s.SettledFrame(0))
	}
}

func TestSchedulerAtIntLimits(t *testing.T) {
	timing := config.DefaultTiming()
	timing.BaseStartFrame = -5
	negative, _ := NewScheduler(timing)
	positive, _ := NewScheduler(config.DefaultTiming())

	tests := []struct {
		name    string
		s       *Scheduler
		frame   int
		elapsed int
		phase   Phase
	}{
		{"min, positive start", positive, math.MinInt, math.MinInt, PhasePending},
		{"max, positive start", positive, math.MaxInt, math.MaxInt - 12, PhaseSettled},
		{"min, negative start", negative, math.MinInt, math.MinInt + 5, PhasePending},
		{"max, negative start", negative, math.MaxInt, math.MaxInt, PhaseSettled},
	}
	for _, tt := range tests {
		if got := tt.s.Elapsed(tt.frame, 0); got != tt.elapsed {
			t.Errorf("%s: Elapsed = %d, want %d", tt.name, got, tt.elapsed)
		}
		if got := tt.s.Phase(tt.frame, 0); got != tt.phase {
			t.Errorf("%s: Phase = %v, want %v", tt.name, got, tt.phase)
		}
	}
}

func TestScenarioWriteRead(t *testing.T) {
	scenario := DefaultScenario()
	scenario.Title = "Round trip"
	scenario.Timing.StaggerFrames = 20
	scenario.Motion.FadeEasing = "outQuad"

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := WriteScenario(scenario, path); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	read, err := ReadScenario(path)
	if err != nil {
		t.Fatalf("ReadScenario failed: %v", err)
	}

	if read.Title != scenario.Title {
		t.Errorf("Title mismatch: expected %s, got %s", scenario.Title, read.Title)
	}
	if read.Timing != scenario.Timing {
		t.Errorf("Timing mismatch: expected %+v, got %+v", scenario.Timing, read.Timing)
	}
	if read.Motion != scenario.Motion {
		t.Errorf("Motion mismatch: expected %+v, got %+v", scenario.Motion, read.Motion)
	}
	if len(read.Messages) != len(scenario.Messages) {
		t.Errorf("Message count mismatch: expected %d, got %d", len(scenario.Messages), len(read.Messages))
	}
}

func TestParseScenarioFillsDefaults(t *testing.T) {
	data := []byte(`
title: Minimal
timing:
  stagger: 9
messages:
  - id: a
    text: hi
  - id: b
    sent: true
    text: hello
`)

	s, err := ParseScenario(data)
	if err != nil {
		t.Fatalf("ParseScenario failed: %v", err)
	}

	if s.Timing.StaggerFrames != 9 {
		t.Errorf("stagger = %d, want 9", s.Timing.StaggerFrames)
	}
	if s.Timing.EnterDurationFrames != 28 {
		t.Errorf("enter duration should default to 28, got %d", s.Timing.EnterDurationFrames)
	}
	if s.Scene.FPS != 30 || s.Motion.SlideDistance != 54 {
		t.Errorf("scene/motion defaults missing: %+v %+v", s.Scene, s.Motion)
	}
	if len(s.Messages) != 2 || !s.Messages[1].Sent {
		t.Errorf("messages not decoded: %+v", s.Messages)
	}
}

func TestParseScenarioRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero fps", "scene: {fps: 0, width: 10, height: 10}\n"},
		{"zero stagger", "timing: {stagger: 0}\n"},
		{"bad spring", "motion: {entrance: {damping: 10, stiffness: 0, mass: 1}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.data))
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := ParseScenario([]byte("messages: [")); err == nil {
		t.Error("expected YAML syntax error")
	}
}

func TestGenerateScenarioPath(t *testing.T) {
	path := GenerateScenarioPath()

	if filepath.Dir(path) != ScenariosDir {
		t.Errorf("Path should be in %s: %s", ScenariosDir, path)
	}
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("Path should be a yaml file: %s", path)
	}

	t.Logf("Generated path: %s", path)
}

func TestFindLatestScenario(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		filepath.Join(dir, "scenario_2026-02-12_10-00-00.yaml"),
		filepath.Join(dir, "scenario_2026-02-13_01-00-00.yaml"),
		filepath.Join(dir, "scenario_2026-02-11_15-30-00.yaml"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("version: \"1.0\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(f, modTime, modTime)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	latest, err := FindLatestScenario(dir)
	if err != nil {
		t.Fatalf("FindLatestScenario failed: %v", err)
	}
	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}

	if _, err := FindLatestScenario(t.TempDir()); err == nil {
		t.Error("expected error for empty directory")
	}
}
