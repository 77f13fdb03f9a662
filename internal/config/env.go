package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvAPIURL    = "SIGNTUTOR_API_URL"
	EnvStudentID = "SIGNTUTOR_STUDENT_ID"
	EnvLogFile   = "SIGNTUTOR_LOG_FILE"
)

// Env holds values read from the process environment and an optional .env file.
type Env struct {
	APIURL    string
	StudentID string
	LogFile   string
}

// LoadEnv reads a .env file from path when present, then the environment.
// Variables already set in the environment win over the file.
func LoadEnv(path string) (Env, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return Env{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return Env{
		APIURL:    strings.TrimSpace(os.Getenv(EnvAPIURL)),
		StudentID: strings.TrimSpace(os.Getenv(EnvStudentID)),
		LogFile:   strings.TrimSpace(os.Getenv(EnvLogFile)),
	}, nil
}

// Apply overlays non-empty environment values onto the file config.
func (e Env) Apply(cfg *FileConfig) {
	if e.APIURL != "" {
		v := e.APIURL
		cfg.API.URL = &v
	}
	if e.StudentID != "" {
		v := e.StudentID
		cfg.Practice.StudentID = &v
	}
}
