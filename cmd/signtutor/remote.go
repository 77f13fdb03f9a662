package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/signs"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Query the analytics API",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "metrics",
		Short: "Total predictions and usage per sign",
		Args:  cobra.NoArgs,
		RunE:  runRemoteMetrics,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "students",
		Short: "List students",
		Args:  cobra.NoArgs,
		RunE:  runRemoteStudents,
	})
	studentCmd := &cobra.Command{
		Use:   "student <id>",
		Short: "Show one student's statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemoteStudent,
	}
	studentCmd.Flags().String("sign", "", "limit to one target sign")
	cmd.AddCommand(studentCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "sign <sign>",
		Short: "Show statistics for one sign across students",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemoteSign,
	})
	moduleCmd := &cobra.Command{
		Use:   "module <id>",
		Short: "Show one learning module and a student's progress",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemoteModule,
	}
	moduleCmd.Flags().String("student", "", "include this student's progress")
	cmd.AddCommand(moduleCmd)
	return cmd
}

func runRemoteMetrics(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	metrics, err := rc.client().Dashboard(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Total predictions: %d\n", metrics.TotalPredictions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	labels := make([]model.Sign, 0, len(metrics.UsageByLabel))
	for s := range metrics.UsageByLabel {
		labels = append(labels, s)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	for _, s := range labels {
		if _, err := fmt.Fprintf(out, "%-14s %d\n", signs.DisplayText(s), metrics.UsageByLabel[s]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runRemoteStudents(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	students, err := rc.client().Students(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch students: %w", err)
	}
	for _, s := range students {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runRemoteStudent(cmd *cobra.Command, args []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	raw, err := cmd.Flags().GetString("sign")
	if err != nil {
		return err
	}
	client := rc.client()
	if raw != "" {
		sign, err := signs.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid --sign: %w", err)
		}
		st, err := client.StudentPerformance(cmd.Context(), args[0], sign)
		if err != nil {
			return fmt.Errorf("failed to fetch performance: %w", err)
		}
		return printSignStats(cmd.OutOrStdout(), st)
	}
	st, err := client.Student(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch student: %w", err)
	}
	out := cmd.OutOrStdout()
	lines := []string{
		fmt.Sprintf("Student: %s", st.StudentID),
		fmt.Sprintf("Attempts: %d", st.TotalAttempts),
		fmt.Sprintf("Correct: %d", st.CorrectPredictions),
		fmt.Sprintf("Accuracy: %.1f%%", st.Accuracy),
		fmt.Sprintf("Avg Confidence: %.1f%%", st.AverageConfidence*100),
	}
	if st.Summary != "" {
		lines = append(lines, st.Summary)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	perSign := make([]model.Sign, 0, len(st.SignPerformance))
	for s := range st.SignPerformance {
		perSign = append(perSign, s)
	}
	sort.Slice(perSign, func(i, j int) bool { return perSign[i] < perSign[j] })
	for _, s := range perSign {
		p := st.SignPerformance[s]
		if _, err := fmt.Fprintf(out, "  %-14s %d/%d\n", signs.DisplayText(s), p.Correct, p.Total); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runRemoteSign(cmd *cobra.Command, args []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	sign, err := signs.Parse(args[0])
	if err != nil {
		return err
	}
	st, err := rc.client().SignStatistics(cmd.Context(), sign)
	if err != nil {
		return fmt.Errorf("failed to fetch sign statistics: %w", err)
	}
	return printSignStats(cmd.OutOrStdout(), st)
}

func runRemoteModule(cmd *cobra.Command, args []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid module id %q", args[0])
	}
	student, err := cmd.Flags().GetString("student")
	if err != nil {
		return err
	}
	detail, err := rc.client().Module(cmd.Context(), id, student)
	if err != nil {
		return fmt.Errorf("failed to fetch module: %w", err)
	}
	return printModuleDetail(cmd.OutOrStdout(), detail, student != "")
}

func printModuleDetail(w io.Writer, d model.ModuleDetail, withProgress bool) error {
	names := make([]string, len(d.Signs))
	for i, s := range d.Signs {
		names[i] = signs.DisplayText(s)
	}
	lines := []string{
		fmt.Sprintf("Module %d: %s (%s)", d.ModuleID, d.Name, d.Difficulty),
		fmt.Sprintf("Signs: %s", strings.Join(names, ", ")),
	}
	if d.Description != "" {
		lines = append(lines, d.Description)
	}
	if d.Duration != "" {
		lines = append(lines, fmt.Sprintf("Estimated time: %s", d.Duration))
	}
	if withProgress {
		lines = append(lines, fmt.Sprintf("Progress: %.0f%%", d.Progress))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func printSignStats(w io.Writer, st model.SignStats) error {
	lines := []string{
		fmt.Sprintf("Sign: %s", signs.DisplayText(st.Sign)),
		fmt.Sprintf("Attempts: %d", st.TotalAttempts),
		fmt.Sprintf("Successful: %d", st.SuccessfulAttempts),
		fmt.Sprintf("Success rate: %.1f%%", st.SuccessRate*100),
		fmt.Sprintf("Avg Confidence: %.1f%%", st.AverageConfidence*100),
	}
	if st.StudentCount > 0 {
		lines = append(lines, fmt.Sprintf("Students: %d", st.StudentCount))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
