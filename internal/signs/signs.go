// Package signs defines the practice sign set.
package signs

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/signtutor/internal/model"
)

// All lists the recognizable signs in enumeration order.
var All = []model.Sign{
	"good",
	"good_morning",
	"goodbye",
	"hello",
	"help",
	"meet",
	"nice",
	"thankyou",
}

var displayText = map[model.Sign]string{
	"good":         "Good",
	"good_morning": "Good morning",
	"goodbye":      "Goodbye",
	"hello":        "Hello",
	"help":         "Help",
	"meet":         "Meet",
	"nice":         "Nice",
	"thankyou":     "Thank you",
}

// ErrorLabel is the label the recognition endpoint returns for unusable frames.
const ErrorLabel model.Sign = "error"

// Index returns the position of s in All, or -1.
func Index(s model.Sign) int {
	for i, candidate := range All {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Next returns the sign following s, wrapping at the end of the set.
// Unknown signs restart at the first element.
func Next(s model.Sign) model.Sign {
	idx := Index(s)
	return All[(idx+1)%len(All)]
}

// DisplayText returns the human-readable text for a sign.
func DisplayText(s model.Sign) string {
	if text, ok := displayText[s]; ok {
		return text
	}
	return string(s)
}

// Parse validates a user-supplied sign name.
func Parse(raw string) (model.Sign, error) {
	normalized := model.Sign(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_"))
	if Index(normalized) < 0 {
		compact := strings.ReplaceAll(string(normalized), "_", "")
		for _, s := range All {
			if strings.ReplaceAll(string(s), "_", "") == compact {
				return s, nil
			}
		}
		names := make([]string, len(All))
		for i, s := range All {
			names[i] = string(s)
		}
		return "", fmt.Errorf("unknown sign %q (available: %s)", raw, strings.Join(names, ", "))
	}
	return normalized, nil
}
