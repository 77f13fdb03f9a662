// Package main provides the CLI entrypoint for signtutor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/signtutor/internal/api"
	"github.com/verte-zerg/signtutor/internal/catalog"
	"github.com/verte-zerg/signtutor/internal/config"
	"github.com/verte-zerg/signtutor/internal/logsink"
	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
	"github.com/verte-zerg/signtutor/internal/stats"
	"github.com/verte-zerg/signtutor/internal/store"
	"github.com/verte-zerg/signtutor/internal/tui"
)

const (
	defaultStudentID   = "student"
	defaultCurveWindow = 10
	defaultEnvFile     = ".env"
)

var (
	rootAPIURL  string
	rootStudent string
	rootDBPath  string
)

// runtimeConfig is the merged view of flags, config file and environment.
type runtimeConfig struct {
	file    config.FileConfig
	env     config.Env
	apiURL  string
	student string
	dbPath  string
	logPath string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "signtutor",
		Short:         "Terminal sign language tutor",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runHomeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&rootAPIURL, "api-url", api.DefaultBaseURL, "recognition and analytics API base URL")
	rootCmd.PersistentFlags().StringVar(&rootStudent, "student", defaultStudentID, "student id attached to attempts")
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "SQLite database path (default: XDG data dir)")

	rootCmd.AddCommand(newPracticeCmd())
	rootCmd.AddCommand(newModulesCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newRemoteCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func loadRuntime(cmd *cobra.Command) (runtimeConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return runtimeConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	env, err := config.LoadEnv(defaultEnvFile)
	if err != nil {
		return runtimeConfig{}, fmt.Errorf("failed to load environment: %w", err)
	}
	env.Apply(&fileCfg)

	rc := runtimeConfig{file: fileCfg, env: env, apiURL: rootAPIURL, student: rootStudent, dbPath: rootDBPath}
	applyStringConfig(cmd, "api-url", &rc.apiURL, fileCfg.API.URL)
	applyStringConfig(cmd, "student", &rc.student, fileCfg.Practice.StudentID)
	if rc.dbPath == "" {
		rc.dbPath = config.DefaultDBPath()
	}
	rc.logPath = env.LogFile
	if rc.logPath == "" {
		rc.logPath = config.DefaultLogPath()
	}
	if strings.TrimSpace(rc.student) == "" {
		return runtimeConfig{}, fmt.Errorf("--student must not be empty")
	}
	return rc, nil
}

func (rc runtimeConfig) client() *api.Client {
	c := api.New(rc.apiURL)
	if p := rc.file.API.PredictPath; p != nil && *p != "" {
		c.PredictPath = *p
	}
	return c
}

func (rc runtimeConfig) logTimeout() (time.Duration, error) {
	if rc.file.API.LogTimeout == nil || *rc.file.API.LogTimeout == "" {
		return logsink.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(*rc.file.API.LogTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("api.log-timeout must be a positive duration like \"10s\"")
	}
	return d, nil
}

func (rc runtimeConfig) modules() ([]model.Module, error) {
	path := ""
	if rc.file.Practice.Catalog != nil {
		path = *rc.file.Practice.Catalog
	}
	modules, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load module catalog: %w", err)
	}
	return modules, nil
}

func openStore(path string) (*store.Store, func(), error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

// runProgram runs a full-screen model with std log routed to a file.
func runProgram(rc runtimeConfig, m tea.Model) error {
	if err := os.MkdirAll(filepath.Dir(rc.logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(rc.logPath, "signtutor")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func runHomeCmd(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	for {
		home := tui.NewHomeModel(homeSummary(rc))
		if err := runProgram(rc, home); err != nil {
			return err
		}
		switch home.Chosen() {
		case tui.GoPractice:
			err = runPractice(cmd, rc, "")
		case tui.GoModules:
			err = runModulesBrowser(cmd, rc, "")
		case tui.GoDashboard:
			err = runDashboard(rc, model.StatsConfig{StudentID: rc.student, CurveWindow: defaultCurveWindow}, nil)
		case tui.GoSettings:
			err = runSettingsPanel(rc)
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func homeSummary(rc runtimeConfig) string {
	st, closeFn, err := openStore(rc.dbPath)
	if err != nil {
		logErrf("%v\n", err)
		return "Welcome, " + rc.student
	}
	defer closeFn()
	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{StudentID: rc.student})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return "Welcome, " + rc.student
	}
	report := stats.Report{Sessions: sessions}
	attempts, correct, _ := report.Totals()
	if attempts == 0 {
		return fmt.Sprintf("Welcome, %s · no attempts yet", rc.student)
	}
	acc := float64(correct) / float64(attempts) * 100
	return fmt.Sprintf("Welcome back, %s · %d attempts · %.1f%% · %s", rc.student, attempts, acc, stats.ProgressSummary(acc, attempts))
}

func newModulesCmd() *cobra.Command {
	var difficulty string
	var list bool
	var remote bool
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Browse learning modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			if difficulty != "" && difficulty != "all" && !validDifficulty(difficulty) {
				return fmt.Errorf("--difficulty must be one of all, %s", strings.Join(catalog.Difficulties, ", "))
			}
			if remote {
				modules, err := rc.client().Modules(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to fetch modules: %w", err)
				}
				return printModules(cmd, catalog.FilterByDifficulty(modules, difficulty))
			}
			if list {
				modules, err := rc.modules()
				if err != nil {
					return err
				}
				return printModules(cmd, catalog.FilterByDifficulty(modules, difficulty))
			}
			return runModulesBrowser(cmd, rc, difficulty)
		},
	}
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "filter by difficulty (beginner, intermediate, advanced)")
	cmd.Flags().BoolVar(&list, "list", false, "print modules instead of opening the browser")
	cmd.Flags().BoolVar(&remote, "remote", false, "list the modules served by the API")
	return cmd
}

func validDifficulty(d string) bool {
	for _, candidate := range catalog.Difficulties {
		if candidate == d {
			return true
		}
	}
	return false
}

func printModules(cmd *cobra.Command, modules []model.Module) error {
	out := cmd.OutOrStdout()
	for _, m := range modules {
		names := make([]string, len(m.Signs))
		for i, s := range m.Signs {
			names[i] = signs.DisplayText(s)
		}
		if _, err := fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", m.ID, m.Name, m.Difficulty, strings.Join(names, ", ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runModulesBrowser(cmd *cobra.Command, rc runtimeConfig, difficulty string) error {
	modules, err := rc.modules()
	if err != nil {
		return err
	}
	browser := tui.NewModulesModel(modules, difficulty)
	if err := runProgram(rc, browser); err != nil {
		return err
	}
	selected, ok := browser.Selected()
	if !ok || len(selected.Signs) == 0 {
		return nil
	}
	return runPractice(cmd, rc, selected.Signs[0])
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# signtutor configuration
# Uncomment a value to enable it. CLI flags override config values.
# SIGNTUTOR_API_URL, SIGNTUTOR_STUDENT_ID and SIGNTUTOR_LOG_FILE (or a .env
# file in the working directory) override this file.

[practice]
# student-id = %q         # Student id attached to attempts
# start-sign = %q            # First sign to practice
# history-cap = %d             # Captured gestures kept on screen
# predictions-cap = 0          # Session prediction log size (0 = unbounded)
# catalog = ""                 # YAML module catalog (default: builtin)

[api]
# url = %q
# predict-path = %q
# log-timeout = %q

[camera]
# device = "auto"              # auto, dir, command or none
# dir = ""                     # Directory of still frames replayed as a camera
# command = "ffmpeg -loglevel error -f v4l2 -video_size {width}x{height} -i /dev/video0 -frames:v 1 -f mjpeg -"

[speech]
# command = ""                 # Text-to-speech program (default: first of espeak-ng, espeak, say)
# voice = ""
# lang = "en-US"
# rate = 1.0
`,
		defaultStudentID,
		signs.All[0],
		stats.HistoryCap,
		api.DefaultBaseURL,
		api.DefaultPredictPath,
		logsink.DefaultTimeout.String(),
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
