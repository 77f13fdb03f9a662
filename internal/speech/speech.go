// Package speech provides spoken feedback over a pluggable text-to-speech backend.
package speech

import (
	"context"
	"log"
	"sync"
)

// Options tune a single utterance. Zero values fall back to the adapter defaults.
type Options struct {
	Lang   string
	Voice  string
	Rate   float64
	Pitch  float64
	Volume float64
}

// DefaultOptions mirrors the browser speech defaults.
func DefaultOptions() Options {
	return Options{Lang: "en-US", Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// Backend renders text to audio and returns when playback ends.
// Implementations must stop promptly when ctx is canceled.
type Backend interface {
	Say(ctx context.Context, text string, opts Options) error
}

// Utterance is a queued request to speak.
type Utterance struct {
	Text string
}

// Adapter serializes speech so at most one utterance is audible at a time.
// A new Speak cancels the one in progress.
type Adapter struct {
	backend  Backend
	defaults Options

	mu       sync.Mutex
	cancel   context.CancelFunc
	current  uint64
	speaking bool
}

// NewAdapter wraps backend. A nil backend produces a silent adapter.
func NewAdapter(backend Backend, defaults Options) *Adapter {
	if backend == nil {
		backend = Nop{}
	}
	return &Adapter{backend: backend, defaults: mergeOptions(DefaultOptions(), defaults)}
}

// Speak cancels any current utterance, starts text, and returns a channel that
// is closed when playback finishes. Errors close the channel as well.
func (a *Adapter) Speak(ctx context.Context, text string, opts *Options) <-chan struct{} {
	done := make(chan struct{})
	effective := a.defaults
	if opts != nil {
		effective = mergeOptions(effective, *opts)
	}

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	sayCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.current++
	id := a.current
	a.speaking = true
	a.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		if err := a.backend.Say(sayCtx, text, effective); err != nil && sayCtx.Err() == nil {
			log.Printf("speech: %v", err)
		}
		a.mu.Lock()
		if a.current == id {
			a.speaking = false
			a.cancel = nil
		}
		a.mu.Unlock()
	}()
	return done
}

// SpeakAsync starts text without waiting for it.
func (a *Adapter) SpeakAsync(ctx context.Context, text string) {
	_ = a.Speak(ctx, text, nil)
}

// Stop cancels the current utterance immediately.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.speaking = false
}

// IsSpeaking reports whether an utterance is in progress.
func (a *Adapter) IsSpeaking() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speaking
}

// Play speaks queued utterances in order, waiting for each to finish,
// until in is closed or ctx is done.
func (a *Adapter) Play(ctx context.Context, in <-chan Utterance) {
	for {
		select {
		case <-ctx.Done():
			a.Stop()
			return
		case u, ok := <-in:
			if !ok {
				return
			}
			select {
			case <-a.Speak(ctx, u.Text, nil):
			case <-ctx.Done():
				a.Stop()
				return
			}
		}
	}
}

func mergeOptions(base, override Options) Options {
	if override.Lang != "" {
		base.Lang = override.Lang
	}
	if override.Voice != "" {
		base.Voice = override.Voice
	}
	if override.Rate > 0 {
		base.Rate = override.Rate
	}
	if override.Pitch > 0 {
		base.Pitch = override.Pitch
	}
	if override.Volume > 0 {
		base.Volume = override.Volume
	}
	return base
}

// Nop is a silent backend.
type Nop struct{}

// Say implements Backend.
func (Nop) Say(context.Context, string, Options) error { return nil }
