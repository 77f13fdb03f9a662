// Package generator produces stand-in predictions for the development API.
package generator

import (
	"errors"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/nfnt/resize"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
)

// InputSize is the square side frames are scaled to before prediction.
const InputSize = 64

// Confidence bounds for the predicted label and for the rest of the distribution.
const (
	minConfidence = 0.75
	maxConfidence = 0.95
	minNoise      = 0.01
	maxNoise      = 0.2
)

// Generator picks a uniformly random sign for each frame.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Preprocess scales img to the model input size.
func Preprocess(img image.Image) image.Image {
	return resize.Resize(InputSize, InputSize, img, resize.Lanczos3)
}

// Predict returns a random label with a plausible distribution.
func (g *Generator) Predict(img image.Image) (model.PredictionResult, error) {
	if img == nil || img.Bounds().Empty() {
		return model.PredictionResult{}, errors.New("empty frame")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.rnd.Intn(len(signs.All))
	confidence := uniform(g.rnd, minConfidence, maxConfidence)
	dist := make(map[model.Sign]float64, len(signs.All))
	for i, sign := range signs.All {
		if i == idx {
			dist[sign] = confidence
			continue
		}
		dist[sign] = uniform(g.rnd, minNoise, maxNoise)
	}
	return model.PredictionResult{
		Label:        signs.All[idx],
		Confidence:   confidence,
		Distribution: dist,
	}, nil
}

func uniform(rnd *rand.Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}
