package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type blockingBackend struct {
	mu       sync.Mutex
	spoken   []string
	canceled []string
	release  chan struct{}
	err      error
}

func (b *blockingBackend) Say(ctx context.Context, text string, _ Options) error {
	b.mu.Lock()
	b.spoken = append(b.spoken, text)
	b.mu.Unlock()
	select {
	case <-ctx.Done():
		b.mu.Lock()
		b.canceled = append(b.canceled, text)
		b.mu.Unlock()
		return ctx.Err()
	case <-b.release:
		return b.err
	}
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for completion")
	}
}

func TestSpeakCancelsPrevious(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	a := NewAdapter(backend, Options{})
	ctx := context.Background()

	first := a.Speak(ctx, "first", nil)
	second := a.Speak(ctx, "second", nil)
	waitClosed(t, first)
	if !a.IsSpeaking() {
		t.Fatalf("expected second utterance to be speaking")
	}
	close(backend.release)
	waitClosed(t, second)
	if a.IsSpeaking() {
		t.Fatalf("expected speaking to end")
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.canceled) != 1 || backend.canceled[0] != "first" {
		t.Fatalf("expected first utterance canceled, got %v", backend.canceled)
	}
}

func TestSpeakCompletesOnError(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{}), err: errors.New("boom")}
	close(backend.release)
	a := NewAdapter(backend, Options{})
	waitClosed(t, a.Speak(context.Background(), "hello", nil))
}

func TestStopCancelsImmediately(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	a := NewAdapter(backend, Options{})
	done := a.Speak(context.Background(), "hello", nil)
	a.Stop()
	waitClosed(t, done)
	if a.IsSpeaking() {
		t.Fatalf("expected not speaking after stop")
	}
	a.Stop()
}

func TestPlayPreservesOrder(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	close(backend.release)
	a := NewAdapter(backend, Options{})
	in := make(chan Utterance, 3)
	in <- Utterance{Text: "one"}
	in <- Utterance{Text: "two"}
	in <- Utterance{Text: "three"}
	close(in)

	finished := make(chan struct{})
	go func() {
		a.Play(context.Background(), in)
		close(finished)
	}()
	waitClosed(t, finished)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	want := []string{"one", "two", "three"}
	if len(backend.spoken) != len(want) {
		t.Fatalf("expected %v, got %v", want, backend.spoken)
	}
	for i := range want {
		if backend.spoken[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, backend.spoken)
		}
	}
}

func TestCommandBackendOptionArgs(t *testing.T) {
	c, err := NewCommandBackend("espeak-ng -q")
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	args := c.optionArgs(Options{Lang: "en-US", Rate: 1.0})
	if len(args) != 4 || args[0] != "-v" || args[1] != "en-us" || args[2] != "-s" || args[3] != "175" {
		t.Fatalf("unexpected espeak args: %v", args)
	}
	if _, err := NewCommandBackend("  "); err == nil {
		t.Fatalf("expected error for empty command")
	}
}
