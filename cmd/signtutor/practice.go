package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/signtutor/internal/camera"
	"github.com/verte-zerg/signtutor/internal/logsink"
	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/practice"
	"github.com/verte-zerg/signtutor/internal/signs"
	"github.com/verte-zerg/signtutor/internal/speech"
	"github.com/verte-zerg/signtutor/internal/stats"
	"github.com/verte-zerg/signtutor/internal/store"
	"github.com/verte-zerg/signtutor/internal/tui"
)

var (
	practiceSign           string
	practiceHistoryCap     int
	practicePredictionsCap int
	practiceCameraDevice   string
	practiceCameraDir      string
	practiceCameraCmd      string
	practiceSpeechCmd      string
	practiceSpeechRate     float64
	practiceMute           bool
)

func newPracticeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Practice signs in front of the camera",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			return runPractice(cmd, rc, "")
		},
	}
	cmd.Flags().StringVar(&practiceSign, "sign", string(signs.All[0]), "first sign to practice")
	cmd.Flags().IntVar(&practiceHistoryCap, "history-cap", stats.HistoryCap, "captured gestures kept on screen")
	cmd.Flags().IntVar(&practicePredictionsCap, "predictions-cap", 0, "session prediction log size (0 = unbounded)")
	cmd.Flags().StringVar(&practiceCameraDevice, "camera", "auto", "camera device: auto, dir, command or none")
	cmd.Flags().StringVar(&practiceCameraDir, "camera-dir", "", "directory of still frames replayed as a camera")
	cmd.Flags().StringVar(&practiceCameraCmd, "camera-cmd", "", "command writing one JPEG/PNG frame to stdout")
	cmd.Flags().StringVar(&practiceSpeechCmd, "speech-cmd", "", "text-to-speech program (default: autodetect)")
	cmd.Flags().Float64Var(&practiceSpeechRate, "speech-rate", 1.0, "speech rate multiplier")
	cmd.Flags().BoolVar(&practiceMute, "mute", false, "disable spoken feedback")
	return cmd
}

// runPractice runs one practice session. A non-empty start overrides the
// configured first sign.
func runPractice(cmd *cobra.Command, rc runtimeConfig, start model.Sign) error {
	file := rc.file
	applyStringConfig(cmd, "sign", &practiceSign, file.Practice.StartSign)
	applyIntConfig(cmd, "history-cap", &practiceHistoryCap, file.Practice.HistoryCap)
	applyIntConfig(cmd, "predictions-cap", &practicePredictionsCap, file.Practice.PredictionsCap)
	applyStringConfig(cmd, "camera", &practiceCameraDevice, file.Camera.Device)
	applyStringConfig(cmd, "camera-dir", &practiceCameraDir, file.Camera.Dir)
	applyStringConfig(cmd, "camera-cmd", &practiceCameraCmd, file.Camera.Command)
	applyStringConfig(cmd, "speech-cmd", &practiceSpeechCmd, file.Speech.Command)
	applyFloatConfig(cmd, "speech-rate", &practiceSpeechRate, file.Speech.Rate)

	timeout, err := rc.logTimeout()
	if err != nil {
		return err
	}
	if start == "" {
		start, err = signs.Parse(practiceSign)
		if err != nil {
			return fmt.Errorf("invalid --sign: %w", err)
		}
	}
	cfg := model.Config{
		APIURL:         rc.apiURL,
		StudentID:      rc.student,
		StartSign:      start,
		HistoryCap:     practiceHistoryCap,
		PredictionsCap: practicePredictionsCap,
		LogTimeout:     timeout,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	device, err := cameraDevice(practiceCameraDevice, practiceCameraDir, practiceCameraCmd)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	prefs, err := st.LoadSettings(ctx)
	if err != nil {
		logErrf("failed to load settings, using defaults: %v\n", err)
		prefs = model.DefaultSettings()
	}

	sessionID, err := st.OpenSession(ctx, cfg.StudentID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if cerr := st.CloseSession(context.Background(), sessionID, time.Now()); cerr != nil {
			logErrf("failed to close session: %v\n", cerr)
		}
	}()

	client := rc.client()
	sink := newSink(client, st, sessionID, cfg, prefs)

	preview := &camera.Preview{}
	cam := camera.NewManager(device, camera.WithSurface(preview))
	defer cam.Stop()

	ctrl := practice.New(cfg, cam, client, practice.WithRecorder(sink))

	adapter := speech.NewAdapter(speechBackend(prefs), speechOptions(rc))
	speechCtx, stopSpeech := context.WithCancel(ctx)
	speechDone := make(chan struct{})
	go func() {
		defer close(speechDone)
		adapter.Play(speechCtx, ctrl.Utterances())
	}()

	runErr := runProgram(rc, tui.NewModel(ctrl, cam, preview, st, cfg.StudentID))

	stopSpeech()
	ctrl.Close()
	<-speechDone
	sink.Wait()
	return runErr
}

func newSink(client logsink.Poster, st *store.Store, sessionID int64, cfg model.Config, prefs model.Settings) *logsink.Sink {
	opts := []logsink.Option{logsink.WithStore(st, sessionID), logsink.WithTimeout(cfg.LogTimeout)}
	if prefs.AnonymousAnalytics {
		opts = append(opts, logsink.WithAnonymousID(anonymousID(cfg.StudentID)))
	}
	if !prefs.PerformanceMonitoring {
		return logsink.New(nil, opts...)
	}
	return logsink.New(client, opts...)
}

// anonymousID derives a stable pseudonym so remote analytics can still group
// attempts without learning the student id.
func anonymousID(studentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("signtutor:"+studentID)).String()
}

func cameraDevice(kind, dir, command string) (camera.Device, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "auto":
		switch {
		case command != "":
			return camera.CommandDevice{CommandLine: command}, nil
		case dir != "":
			return camera.DirDevice{Dir: dir}, nil
		}
		return nil, nil
	case "dir":
		if dir == "" {
			return nil, fmt.Errorf("--camera dir requires --camera-dir")
		}
		return camera.DirDevice{Dir: dir}, nil
	case "command":
		if command == "" {
			return nil, fmt.Errorf("--camera command requires --camera-cmd")
		}
		return camera.CommandDevice{CommandLine: command}, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("--camera must be one of auto, dir, command, none")
	}
}

func speechBackend(prefs model.Settings) speech.Backend {
	if practiceMute || !prefs.AudioFeedback {
		return speech.Nop{}
	}
	commandLine := practiceSpeechCmd
	if commandLine == "" {
		commandLine = speech.DetectCommand()
	}
	if commandLine == "" {
		logErrln("no text-to-speech program found; spoken feedback disabled")
		return speech.Nop{}
	}
	backend, err := speech.NewCommandBackend(commandLine)
	if err != nil {
		logErrf("failed to set up speech: %v\n", err)
		return speech.Nop{}
	}
	return backend
}

func speechOptions(rc runtimeConfig) speech.Options {
	opts := speech.Options{Rate: practiceSpeechRate}
	if rc.file.Speech.Voice != nil {
		opts.Voice = *rc.file.Speech.Voice
	}
	if rc.file.Speech.Lang != nil {
		opts.Lang = *rc.file.Speech.Lang
	}
	return opts
}

func validateConfig(cfg model.Config) error {
	if cfg.StudentID == "" {
		return fmt.Errorf("--student must not be empty")
	}
	if signs.Index(cfg.StartSign) < 0 {
		return fmt.Errorf("--sign must be one of the practice signs")
	}
	if cfg.HistoryCap < 1 || cfg.HistoryCap > stats.HistoryCap {
		return fmt.Errorf("--history-cap must be between 1 and %d", stats.HistoryCap)
	}
	if cfg.PredictionsCap < 0 {
		return fmt.Errorf("--predictions-cap must be >= 0")
	}
	if cfg.LogTimeout <= 0 {
		return fmt.Errorf("api.log-timeout must be > 0")
	}
	return nil
}
