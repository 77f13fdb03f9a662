// Package model defines shared data structures.
package model

import "time"

// Sign identifies a gesture in the practice set.
type Sign string

// Config defines practice settings.
type Config struct {
	APIURL         string
	PredictPath    string
	StudentID      string
	StartSign      Sign
	HistoryCap     int
	PredictionsCap int
	LogTimeout     time.Duration
}

// StatsConfig defines filters and options for dashboard output.
type StatsConfig struct {
	StudentID   string
	Sign        Sign
	Since       *time.Time
	Last        int
	CurveWindow int
}

// PredictionResult is the recognition endpoint's answer for one frame.
type PredictionResult struct {
	Label        Sign             `json:"label"`
	Confidence   float64          `json:"confidence"`
	Distribution map[Sign]float64 `json:"all"`
	Error        string           `json:"error,omitempty"`
}

// PredictionRecord is one entry of the session prediction log.
type PredictionRecord struct {
	Label      Sign
	Confidence float64
	Timestamp  time.Time
}

// SessionStats are the running aggregates of one practice session.
type SessionStats struct {
	TotalAttempts      int
	CorrectPredictions int
	AverageConfidence  float64
	Predictions        []PredictionRecord
}

// CapturedGesture is a recognized gesture shown in the session history.
type CapturedGesture struct {
	ID          string
	Gesture     Sign
	DisplayText string
	CapturedAt  time.Time
}

// PerformanceLog records one attempt for the remote log endpoint.
type PerformanceLog struct {
	StudentID     string    `json:"studentId"`
	TargetSign    Sign      `json:"targetSign"`
	PredictedSign Sign      `json:"predictedSign"`
	Confidence    float64   `json:"confidence"`
	IsCorrect     bool      `json:"isCorrect"`
	Timestamp     time.Time `json:"timestamp"`
}

// DashboardMetrics is the overall usage summary.
type DashboardMetrics struct {
	TotalPredictions int          `json:"total_predictions"`
	UsageByLabel     map[Sign]int `json:"usage_by_label"`
}

// StudentSummary identifies a student.
type StudentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SignPerformance counts attempts for one sign.
type SignPerformance struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// StudentStats aggregates all attempts of a student.
type StudentStats struct {
	StudentID          string                   `json:"studentId"`
	TotalAttempts      int                      `json:"totalAttempts"`
	CorrectPredictions int                      `json:"correctPredictions"`
	Accuracy           float64                  `json:"accuracy"`
	AverageConfidence  float64                  `json:"averageConfidence"`
	SignPerformance    map[Sign]SignPerformance `json:"signPerformance"`
	Summary            string                   `json:"summary,omitempty"`
}

// SignStats aggregates attempts at one target sign.
type SignStats struct {
	Sign               Sign    `json:"sign"`
	StudentID          string  `json:"studentId,omitempty"`
	TotalAttempts      int     `json:"totalAttempts"`
	SuccessfulAttempts int     `json:"successfulAttempts"`
	SuccessRate        float64 `json:"successRate"`
	AverageConfidence  float64 `json:"averageConfidence"`
	StudentCount       int     `json:"studentCount"`
}

// SessionAggregate summarizes a stored practice session for reporting.
type SessionAggregate struct {
	SessionID     int64
	StudentID     string
	EndedAt       time.Time
	Attempts      int
	Correct       int
	ConfidenceSum float64
}

// PredictionEvent is a stored answer of the recognition endpoint.
type PredictionEvent struct {
	Label      Sign
	Confidence float64
	CreatedAt  time.Time
}

// AttemptRecord is a stored attempt.
type AttemptRecord struct {
	ID            int64
	SessionID     int64
	StudentID     string
	TargetSign    Sign
	PredictedSign Sign
	Confidence    float64
	IsCorrect     bool
	CreatedAt     time.Time
}

// Settings is the settings and compliance panel state.
type Settings struct {
	AudioFeedback         bool   `json:"audioFeedback"`
	AnonymousAnalytics    bool   `json:"anonymousAnalytics"`
	PerformanceMonitoring bool   `json:"performanceMonitoring"`
	VideoDataStorage      bool   `json:"videoDataStorage"`
	ThirdPartySharing     bool   `json:"thirdPartySharing"`
	EmailNotifications    bool   `json:"emailNotifications"`
	DataRetention         string `json:"dataRetention"`
	Theme                 string `json:"theme"`
}

// DefaultSettings returns the settings a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		AudioFeedback:         true,
		AnonymousAnalytics:    true,
		PerformanceMonitoring: true,
		VideoDataStorage:      false,
		ThirdPartySharing:     false,
		EmailNotifications:    true,
		DataRetention:         "2years",
		Theme:                 "light",
	}
}

// Module is an entry of the learning-modules catalog.
type Module struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
	Difficulty  string `json:"difficulty" yaml:"difficulty"`
	Signs       []Sign `json:"signs" yaml:"signs"`
	Lessons     int    `json:"lessons,omitempty" yaml:"lessons"`
	Duration    string `json:"estimatedTime,omitempty" yaml:"duration"`
	Objective   string `json:"objective,omitempty" yaml:"objective"`
}

// ModuleDetail is one module with a student's progress through it.
// Progress is the percentage of the module's signs the student has
// performed correctly at least once.
type ModuleDetail struct {
	Module
	ModuleID int     `json:"moduleId"`
	Progress float64 `json:"progress"`
}
