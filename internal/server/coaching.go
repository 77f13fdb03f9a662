package server

// Coaching is graded advice for one tutored attempt.
type Coaching struct {
	Level      string   `json:"level"`
	Message    string   `json:"message"`
	Tips       []string `json:"tips"`
	NextAction string   `json:"next_action"`
}

// Coach grades a prediction confidence into five levels.
func Coach(confidence float64) Coaching {
	switch {
	case confidence > 0.95:
		return Coaching{
			Level:      "excellent",
			Message:    "Excellent sign! Perfect execution!",
			Tips:       []string{"Your hand positioning is perfect", "Great speed and fluidity"},
			NextAction: "Try the next sign",
		}
	case confidence > 0.9:
		return Coaching{
			Level:      "very_good",
			Message:    "Very good! Almost perfect!",
			Tips:       []string{"Minor adjustment in hand angle", "Keep the motion smooth"},
			NextAction: "Practice one more time or move on",
		}
	case confidence > 0.75:
		return Coaching{
			Level:      "good",
			Message:    "Good attempt! Refine your motion.",
			Tips:       []string{"Focus on hand positioning", "Try slower, more deliberate movements"},
			NextAction: "Try again",
		}
	case confidence > 0.6:
		return Coaching{
			Level:      "okay",
			Message:    "Not quite right. Let's try again.",
			Tips:       []string{"Watch the reference video", "Pay attention to hand shape"},
			NextAction: "Try again with the visual guide",
		}
	default:
		return Coaching{
			Level:      "needs_work",
			Message:    "Keep practicing! Watch the demo first.",
			Tips:       []string{"Review the correct hand shape", "Practice the motion slowly"},
			NextAction: "Watch demo and try again",
		}
	}
}
