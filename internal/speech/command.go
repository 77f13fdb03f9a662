package speech

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// CommandBackend speaks through an external program such as espeak-ng or say.
// The text is passed as the last argument.
type CommandBackend struct {
	Program string
	Args    []string
}

// NewCommandBackend parses a command line like "espeak-ng -a 150".
func NewCommandBackend(commandLine string) (*CommandBackend, error) {
	parts := strings.Fields(commandLine)
	if len(parts) == 0 {
		return nil, fmt.Errorf("speech command is empty")
	}
	return &CommandBackend{Program: parts[0], Args: parts[1:]}, nil
}

// Say implements Backend.
func (c *CommandBackend) Say(ctx context.Context, text string, opts Options) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	args := append(append([]string(nil), c.Args...), c.optionArgs(opts)...)
	args = append(args, text)
	cmd := exec.CommandContext(ctx, c.Program, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w: %s", c.Program, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (c *CommandBackend) optionArgs(opts Options) []string {
	switch filepath.Base(c.Program) {
	case "espeak", "espeak-ng":
		var args []string
		if opts.Voice != "" {
			args = append(args, "-v", opts.Voice)
		} else if opts.Lang != "" {
			args = append(args, "-v", strings.ToLower(opts.Lang))
		}
		if opts.Rate > 0 {
			args = append(args, "-s", strconv.Itoa(int(175*opts.Rate)))
		}
		if opts.Pitch > 0 {
			args = append(args, "-p", strconv.Itoa(int(50*opts.Pitch)))
		}
		if opts.Volume > 0 {
			args = append(args, "-a", strconv.Itoa(int(100*opts.Volume)))
		}
		return args
	case "say":
		var args []string
		if opts.Voice != "" {
			args = append(args, "-v", opts.Voice)
		}
		if opts.Rate > 0 {
			args = append(args, "-r", strconv.Itoa(int(175*opts.Rate)))
		}
		return args
	default:
		return nil
	}
}

// DetectCommand returns the first text-to-speech program found on PATH, or "".
func DetectCommand() string {
	for _, candidate := range []string{"espeak-ng", "espeak", "say", "spd-say"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
