package practice

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/signtutor/internal/api"
	"github.com/verte-zerg/signtutor/internal/model"
)

// Tone classifies a feedback message for display.
type Tone int

// Feedback tones.
const (
	ToneNone Tone = iota
	ToneWorking
	ToneSuccess
	ToneError
)

// Feedback is the message shown to the learner.
type Feedback struct {
	Text string
	Tone Tone
}

// Fixed feedback texts.
const (
	MsgWelcome        = "Welcome to Sign Language Practice"
	MsgRecording      = "Recording your sign..."
	MsgProcessing     = "Processing your sign..."
	MsgExcellent      = "Excellent! Perfect sign!"
	MsgGood           = "Good! Refine your hand motion slightly."
	MsgFair           = "Correct, but try with better clarity."
	MsgCameraNotReady = "Camera not ready. Please try again."
	MsgCaptureFailed  = "Error capturing frame. Please try again."
	MsgInvalidFrame   = "Could not process frame. Please try again."
	MsgConnection     = "Connection error. Please try again."
)

// Confidence thresholds for the success tiers. Both are exclusive.
const (
	ExcellentThreshold = 0.9
	GoodThreshold      = 0.75
)

// ErrCameraNotReady reports a capture attempted before the camera delivered a frame.
var ErrCameraNotReady = errors.New("camera not ready")

// ErrCapture wraps failures reading or encoding a frame.
var ErrCapture = errors.New("frame capture failed")

// Judge grades a prediction against target.
func Judge(target model.Sign, res model.PredictionResult) (bool, Feedback) {
	if res.Label != target {
		return false, Feedback{
			Text: fmt.Sprintf("That's %s, but we want %s. Try again!", res.Label, target),
			Tone: ToneError,
		}
	}
	switch {
	case res.Confidence > ExcellentThreshold:
		return true, Feedback{Text: MsgExcellent, Tone: ToneSuccess}
	case res.Confidence > GoodThreshold:
		return true, Feedback{Text: MsgGood, Tone: ToneSuccess}
	default:
		return true, Feedback{Text: MsgFair, Tone: ToneSuccess}
	}
}

// failureFeedback maps a failed cycle to its message and whether it is spoken.
func failureFeedback(err error) (Feedback, bool) {
	switch {
	case errors.Is(err, ErrCameraNotReady):
		return Feedback{Text: MsgCameraNotReady, Tone: ToneError}, false
	case errors.Is(err, ErrCapture):
		return Feedback{Text: MsgCaptureFailed, Tone: ToneError}, false
	case errors.Is(err, api.ErrInvalidFrame):
		return Feedback{Text: MsgInvalidFrame, Tone: ToneError}, true
	default:
		return Feedback{Text: MsgConnection, Tone: ToneError}, true
	}
}

// Announcement is the prompt spoken when the target changes.
func Announcement(target model.Sign) string {
	return fmt.Sprintf("Please sign: %s", target)
}

// Confirmation is spoken after every recognized gesture.
func Confirmation(displayText string) string {
	return fmt.Sprintf("You signed: %s", displayText)
}
