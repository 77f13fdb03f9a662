// Package settings validates and edits the settings and compliance panel.
package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/signtutor/internal/model"
)

// Allowed enumerated values.
var (
	Retentions = []string{"never", "1year", "2years", "5years"}
	Themes     = []string{"light", "dark"}
)

// Field describes one editable setting.
type Field struct {
	Key   string
	Label string
	get   func(model.Settings) string
	set   func(*model.Settings, string) error
}

// Get renders the field value.
func (f Field) Get(s model.Settings) string {
	return f.get(s)
}

// Fields lists the settings in panel order.
var Fields = []Field{
	boolField("audio-feedback", "Audio feedback", func(s *model.Settings) *bool { return &s.AudioFeedback }),
	boolField("anonymous-analytics", "Anonymous analytics", func(s *model.Settings) *bool { return &s.AnonymousAnalytics }),
	boolField("performance-monitoring", "Performance monitoring", func(s *model.Settings) *bool { return &s.PerformanceMonitoring }),
	boolField("video-data-storage", "Video data storage", func(s *model.Settings) *bool { return &s.VideoDataStorage }),
	boolField("third-party-sharing", "Third-party sharing", func(s *model.Settings) *bool { return &s.ThirdPartySharing }),
	boolField("email-notifications", "Email notifications", func(s *model.Settings) *bool { return &s.EmailNotifications }),
	enumField("data-retention", "Data retention", Retentions, func(s *model.Settings) *string { return &s.DataRetention }),
	enumField("theme", "Theme", Themes, func(s *model.Settings) *string { return &s.Theme }),
}

func boolField(key, label string, ptr func(*model.Settings) *bool) Field {
	return Field{
		Key:   key,
		Label: label,
		get: func(s model.Settings) string {
			return strconv.FormatBool(*ptr(&s))
		},
		set: func(s *model.Settings, raw string) error {
			v, err := parseBool(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*ptr(s) = v
			return nil
		},
	}
}

func enumField(key, label string, allowed []string, ptr func(*model.Settings) *string) Field {
	return Field{
		Key:   key,
		Label: label,
		get: func(s model.Settings) string {
			return *ptr(&s)
		},
		set: func(s *model.Settings, raw string) error {
			v := strings.ToLower(strings.TrimSpace(raw))
			if !contains(allowed, v) {
				return fmt.Errorf("%s must be one of %s", key, strings.Join(allowed, ", "))
			}
			*ptr(s) = v
			return nil
		},
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes", "enabled":
		return true, nil
	case "off", "no", "disabled":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}

// Lookup finds a field by key.
func Lookup(key string) (Field, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns the sorted field keys.
func Keys() []string {
	keys := make([]string, len(Fields))
	for i, f := range Fields {
		keys[i] = f.Key
	}
	sort.Strings(keys)
	return keys
}

// Set applies raw to the field named key and returns the updated settings.
func Set(s model.Settings, key, raw string) (model.Settings, error) {
	f, ok := Lookup(key)
	if !ok {
		return s, fmt.Errorf("unknown setting %q (available: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := f.set(&s, raw); err != nil {
		return s, err
	}
	return s, nil
}

// Toggle flips a boolean field or cycles an enumerated one.
func Toggle(s model.Settings, key string) (model.Settings, error) {
	switch key {
	case "data-retention":
		return Set(s, key, cycle(Retentions, s.DataRetention))
	case "theme":
		return Set(s, key, cycle(Themes, s.Theme))
	}
	f, ok := Lookup(key)
	if !ok {
		return s, fmt.Errorf("unknown setting %q", key)
	}
	current, err := strconv.ParseBool(f.Get(s))
	if err != nil {
		return s, err
	}
	return Set(s, key, strconv.FormatBool(!current))
}

// Validate checks enumerated values.
func Validate(s model.Settings) error {
	if !contains(Retentions, s.DataRetention) {
		return fmt.Errorf("data-retention must be one of %s", strings.Join(Retentions, ", "))
	}
	if !contains(Themes, s.Theme) {
		return fmt.Errorf("theme must be one of %s", strings.Join(Themes, ", "))
	}
	return nil
}

func cycle(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
