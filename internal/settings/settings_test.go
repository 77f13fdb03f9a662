package settings

import (
	"testing"

	"github.com/verte-zerg/signtutor/internal/model"
)

func TestSetBoolAndEnum(t *testing.T) {
	s := model.DefaultSettings()
	s, err := Set(s, "audio-feedback", "off")
	if err != nil || s.AudioFeedback {
		t.Fatalf("expected audio off, got %+v, %v", s, err)
	}
	s, err = Set(s, "data-retention", "5YEARS")
	if err != nil || s.DataRetention != "5years" {
		t.Fatalf("expected 5years, got %+v, %v", s, err)
	}
	if _, err := Set(s, "theme", "blue"); err == nil {
		t.Fatalf("expected invalid theme error")
	}
	if _, err := Set(s, "volume", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestToggle(t *testing.T) {
	s := model.DefaultSettings()
	s, err := Toggle(s, "third-party-sharing")
	if err != nil || !s.ThirdPartySharing {
		t.Fatalf("expected sharing on, got %+v, %v", s, err)
	}
	s, err = Toggle(s, "theme")
	if err != nil || s.Theme != "dark" {
		t.Fatalf("expected dark, got %q, %v", s.Theme, err)
	}
	s, err = Toggle(s, "data-retention")
	if err != nil || s.DataRetention != "5years" {
		t.Fatalf("expected 5years, got %q, %v", s.DataRetention, err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(model.DefaultSettings()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	s := model.DefaultSettings()
	s.DataRetention = "forever"
	if err := Validate(s); err == nil {
		t.Fatalf("expected retention error")
	}
}

func TestFieldsRender(t *testing.T) {
	s := model.DefaultSettings()
	f, ok := Lookup("anonymous-analytics")
	if !ok || f.Get(s) != "true" {
		t.Fatalf("unexpected field value")
	}
	if len(Keys()) != len(Fields) {
		t.Fatalf("keys mismatch")
	}
}
