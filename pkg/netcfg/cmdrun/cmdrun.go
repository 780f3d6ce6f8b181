// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package cmdrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"go.githedgehog.com/fabric-netcfg/pkg/util/logutil"
)

type Command struct {
	Name string
	Args []string
}

func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes a single command against the host
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// RunAll runs cmds in order and stops at the first failure. Commands that already succeeded aren't rolled back.
func RunAll(ctx context.Context, r Runner, cmds ...Command) error {
	for idx, cmd := range cmds {
		if err := r.Run(ctx, cmd); err != nil {
			slog.Error("A command in the queue failed", "cmd", cmd.String(), "step", idx+1, "total", len(cmds))

			return fmt.Errorf("running %q (%d/%d): %w", cmd, idx+1, len(cmds), err)
		}
	}

	return nil
}

// Exec runs commands as child processes, their output is logged
type Exec struct{}

var _ Runner = Exec{}

func (Exec) Run(ctx context.Context, c Command) error {
	slog.Info("Command to execute", "cmd", c.String())

	stdout := logutil.NewSink(slog.Info, c.Name+": ")
	stderr := logutil.NewSink(slog.Warn, c.Name+": ")
	defer stdout.Close()
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("'%s' exited with error status: %w", c, err)
	}

	return nil
}

// DryRun only reports the commands it's given and always succeeds
type DryRun struct {
	Out io.Writer
}

var _ Runner = DryRun{}

func (d DryRun) Run(_ context.Context, c Command) error {
	slog.Info("Command to execute (dry run)", "cmd", c.String())

	if d.Out != nil {
		if _, err := fmt.Fprintln(d.Out, c.String()); err != nil {
			return fmt.Errorf("echoing command: %w", err)
		}
	}

	return nil
}
