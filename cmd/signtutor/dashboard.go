package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
	"github.com/verte-zerg/signtutor/internal/stats"
	"github.com/verte-zerg/signtutor/internal/statsui"
)

const plainPlotHeight = 10

var (
	dashboardStudent     string
	dashboardSign        string
	dashboardSince       string
	dashboardLast        int
	dashboardCurveWindow int
	dashboardSigns       string
	dashboardAll         bool
	dashboardPlain       bool
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show progress and per-sign statistics",
		Args:  cobra.NoArgs,
		RunE:  runDashboardCmd,
	}
	cmd.Flags().StringVar(&dashboardStudent, "for", "", "student filter (default: --student)")
	cmd.Flags().BoolVar(&dashboardAll, "all", false, "include every student")
	cmd.Flags().StringVar(&dashboardSign, "sign", "", "target sign filter")
	cmd.Flags().StringVar(&dashboardSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&dashboardLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&dashboardCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&dashboardSigns, "signs", "", "signs for per-sign curves, comma separated")
	cmd.Flags().BoolVar(&dashboardPlain, "plain", false, "print a text report instead of the dashboard")
	return cmd
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	var since *time.Time
	if dashboardSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dashboardSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	var sign model.Sign
	if dashboardSign != "" {
		sign, err = signs.Parse(dashboardSign)
		if err != nil {
			return fmt.Errorf("invalid --sign: %w", err)
		}
	}
	if dashboardLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if dashboardCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	selected, err := statsui.ParseSignList(dashboardSigns)
	if err != nil {
		return fmt.Errorf("invalid --signs: %w", err)
	}

	student := dashboardStudent
	if student == "" {
		student = rc.student
	}
	if dashboardAll {
		student = ""
	}
	cfg := model.StatsConfig{
		StudentID:   student,
		Sign:        sign,
		Since:       since,
		Last:        dashboardLast,
		CurveWindow: dashboardCurveWindow,
	}
	if dashboardPlain {
		return printDashboard(cmd, rc, cfg, selected)
	}
	return runDashboard(rc, cfg, selected)
}

func runDashboard(rc runtimeConfig, cfg model.StatsConfig, selected []model.Sign) error {
	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	dash := statsui.NewModel(st, rc.client(), cfg, selected)
	if prefs, err := st.LoadSettings(context.Background()); err == nil {
		dash.SetTheme(prefs.Theme)
	} else {
		logErrf("failed to load settings, using default theme: %v\n", err)
	}
	return runProgram(rc, dash)
}

func printDashboard(cmd *cobra.Command, rc runtimeConfig, cfg model.StatsConfig, selected []model.Sign) error {
	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSignTable(out, report.SignsWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow, 0, plainPlotHeight, false); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	if len(selected) == 0 {
		selected = stats.MostPracticed(report.SignsAll, 3)
	}
	ids := make([]int64, len(report.Sessions))
	for i, s := range report.Sessions {
		ids[i] = s.SessionID
	}
	perSession, err := st.ListSignStatsForSessions(ctx, ids, selected)
	if err != nil {
		return fmt.Errorf("failed to load sign curves: %w", err)
	}
	names := make([]string, len(selected))
	for i, s := range selected {
		names[i] = signs.DisplayText(s)
	}
	if _, err := fmt.Fprintf(out, "\nSigns: %s\n", strings.Join(names, ", ")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSignCurves(out, report.Sessions, perSession, selected, cfg.CurveWindow, 0, plainPlotHeight, false); err != nil {
		return fmt.Errorf("failed to render sign curves: %w", err)
	}
	return nil
}
