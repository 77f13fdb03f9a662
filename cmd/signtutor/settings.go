package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/signtutor/internal/settings"
	"github.com/verte-zerg/signtutor/internal/tui"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Edit audio, privacy and retention settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			return runSettingsPanel(rc)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print current settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE:  runSettingsSet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsReset,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload local settings to the API",
		Args:  cobra.NoArgs,
		RunE:  runSettingsPush,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Replace local settings with the API's",
		Args:  cobra.NoArgs,
		RunE:  runSettingsPull,
	})
	return cmd
}

func runSettingsPanel(rc runtimeConfig) error {
	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	current, err := st.LoadSettings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	return runProgram(rc, tui.NewSettingsModel(st, current))
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	current, err := st.LoadSettings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	for _, f := range settings.Fields {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", f.Key, f.Get(current)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	current, err := st.LoadSettings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	next, err := settings.Set(current, args[0], args[1])
	if err != nil {
		return err
	}
	if err := settings.Validate(next); err != nil {
		return err
	}
	if err := st.SaveSettings(cmd.Context(), next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	if err := st.ResetSettings(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	logErrln("Settings restored to defaults")
	return nil
}

func runSettingsPush(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	current, err := st.LoadSettings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := rc.client().UpdateSettings(cmd.Context(), current); err != nil {
		return fmt.Errorf("failed to push settings: %w", err)
	}
	return nil
}

func runSettingsPull(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	remote, err := rc.client().Settings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to pull settings: %w", err)
	}
	if err := settings.Validate(remote); err != nil {
		return fmt.Errorf("remote settings rejected: %w", err)
	}
	st, closeStore, err := openStore(rc.dbPath)
	if err != nil {
		return err
	}
	defer closeStore()
	if err := st.SaveSettings(cmd.Context(), remote); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
