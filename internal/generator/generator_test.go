package generator

import (
	"image"
	"testing"

	"github.com/verte-zerg/signtutor/internal/signs"
)

func TestPredictDistribution(t *testing.T) {
	g := NewSeeded(1)
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for i := 0; i < 50; i++ {
		res, err := g.Predict(img)
		if err != nil {
			t.Fatalf("predict: %v", err)
		}
		if signs.Index(res.Label) < 0 {
			t.Fatalf("unexpected label %q", res.Label)
		}
		if res.Confidence < minConfidence || res.Confidence > maxConfidence {
			t.Fatalf("confidence out of range: %f", res.Confidence)
		}
		if len(res.Distribution) != len(signs.All) || res.Distribution[res.Label] != res.Confidence {
			t.Fatalf("unexpected distribution: %+v", res.Distribution)
		}
	}
}

func TestSeededIsDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	a, _ := NewSeeded(42).Predict(img)
	b, _ := NewSeeded(42).Predict(img)
	if a.Label != b.Label || a.Confidence != b.Confidence {
		t.Fatalf("expected identical predictions, got %+v and %+v", a, b)
	}
}

func TestPredictEmptyFrame(t *testing.T) {
	if _, err := NewSeeded(1).Predict(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Fatalf("expected error for empty frame")
	}
}

func TestPreprocessSize(t *testing.T) {
	out := Preprocess(image.NewRGBA(image.Rect(0, 0, 1280, 720)))
	if b := out.Bounds(); b.Dx() != InputSize || b.Dy() != InputSize {
		t.Fatalf("expected %dx%d, got %v", InputSize, InputSize, b)
	}
}
