package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/signtutor/internal/camera"
	"github.com/verte-zerg/signtutor/internal/model"
)

func TestCameraDeviceSelection(t *testing.T) {
	dev, err := cameraDevice("auto", "/tmp/frames", "")
	if err != nil {
		t.Fatalf("auto with dir: %v", err)
	}
	if d, ok := dev.(camera.DirDevice); !ok || d.Dir != "/tmp/frames" {
		t.Fatalf("expected dir device, got %#v", dev)
	}
	dev, err = cameraDevice("", "/tmp/frames", "grab-frame")
	if err != nil {
		t.Fatalf("auto with command: %v", err)
	}
	if _, ok := dev.(camera.CommandDevice); !ok {
		t.Fatalf("command should win over dir, got %#v", dev)
	}
	if dev, err := cameraDevice("none", "/tmp/frames", ""); err != nil || dev != nil {
		t.Fatalf("none should yield no device, got %#v (%v)", dev, err)
	}
	if _, err := cameraDevice("dir", "", ""); err == nil {
		t.Fatalf("expected error for dir without --camera-dir")
	}
	if _, err := cameraDevice("webcam", "", ""); err == nil {
		t.Fatalf("expected error for unknown device kind")
	}
}

func TestAnonymousIDIsStable(t *testing.T) {
	a := anonymousID("alice")
	if a != anonymousID("alice") {
		t.Fatalf("pseudonym changed between calls")
	}
	if a == anonymousID("bob") || strings.Contains(a, "alice") {
		t.Fatalf("pseudonym leaks or collides: %s", a)
	}
}

func TestValidateConfig(t *testing.T) {
	base := model.Config{StudentID: "s1", StartSign: "hello", HistoryCap: 10, LogTimeout: 1}
	if err := validateConfig(base); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	bad := base
	bad.StartSign = "wave"
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected unknown sign to be rejected")
	}
	bad = base
	bad.HistoryCap = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected history cap 0 to be rejected")
	}
	bad.HistoryCap = 11
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected history cap above 10 to be rejected")
	}
}

func TestPrintSignStats(t *testing.T) {
	var buf bytes.Buffer
	err := printSignStats(&buf, model.SignStats{
		Sign:               "thankyou",
		TotalAttempts:      4,
		SuccessfulAttempts: 3,
		SuccessRate:        0.75,
		AverageConfidence:  0.8,
	})
	if err != nil {
		t.Fatalf("print failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sign: Thank you", "Attempts: 4", "Success rate: 75.0%", "Avg Confidence: 80.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Students:") {
		t.Fatalf("student count should be omitted when zero:\n%s", out)
	}
}

func TestPrintModuleDetail(t *testing.T) {
	detail := model.ModuleDetail{
		Module:   model.Module{ID: 2, Name: "Everyday Signs", Difficulty: "beginner", Signs: []model.Sign{"hello", "good_morning"}, Duration: "3 weeks"},
		ModuleID: 2,
		Progress: 50,
	}
	var buf bytes.Buffer
	if err := printModuleDetail(&buf, detail, true); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Module 2: Everyday Signs (beginner)", "Signs: Hello, Good morning", "Estimated time: 3 weeks", "Progress: 50%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	buf.Reset()
	if err := printModuleDetail(&buf, detail, false); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if strings.Contains(buf.String(), "Progress:") {
		t.Fatalf("progress should be omitted without a student:\n%s", buf.String())
	}
}
