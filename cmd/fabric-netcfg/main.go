// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	slogwh "github.com/samber/slog-webhook/v2"
	"github.com/urfave/cli/v2"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg/app"
	"go.githedgehog.com/fabric-netcfg/pkg/version"
	"gopkg.in/natefinch/lumberjack.v2"
)

// webhook records are sent from background goroutines with no way to flush them, so the process lingers for a
// bit before exiting if the webhook is enabled
const webhookGrace = 2 * time.Second

var logFlushDelay time.Duration

func flushLogs() {
	if logFlushDelay > 0 {
		time.Sleep(logFlushDelay)
	}
}

func setupLogger(verbose, debug bool, logFile, logWebhook string) error {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelInfo
	}
	if debug {
		logLevel = slog.LevelDebug
	}

	logConsole := os.Stderr

	handlers := []slog.Handler{
		tint.NewHandler(logConsole, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
			NoColor:    !isatty.IsTerminal(logConsole.Fd()),
		}),
	}

	if logFile != "" {
		handlers = append(handlers, slog.NewTextHandler(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    5, // MB
			MaxBackups: 4,
			MaxAge:     30, // days
			Compress:   true,
		}, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	if logWebhook != "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("getting hostname: %w", err)
		}

		handlers = append(handlers, slogwh.Option{
			Level:    slog.LevelInfo,
			Endpoint: logWebhook,
			AttrFromContext: []func(ctx context.Context) []slog.Attr{
				func(_ context.Context) []slog.Attr {
					return []slog.Attr{
						slog.String("hostname", hostname),
					}
				},
			},
		}.NewWebhookHandler())

		logFlushDelay = webhookGrace
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))

	slog.Debug("Running fabric-netcfg", "version", version.Version)

	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var verbose, debug bool
	var logFile, logWebhook string
	opts := app.Options{}
	settingsPath := ""

	cli.VersionFlag.(*cli.BoolFlag).Aliases = []string{"V"}
	cliApp := &cli.App{
		Name:                   "fabric-netcfg",
		Usage:                  "configure a fabric interface from the config advertised by the switch over LLDP",
		ArgsUsage:              "<interface>",
		Version:                version.Version,
		Suggest:                true,
		UseShortOptionHandling: true,
		EnableBashCompletion:   true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "create-ifcfg",
				Aliases:     []string{"c"},
				Usage:       "create corresponding ifcfg file instead of configuring the interface live",
				Destination: &opts.CreateIfcfg,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Aliases:     []string{"d"},
				Usage:       "enable debug output",
				Destination: &debug,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "enable verbose output",
				Destination: &verbose,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Aliases:     []string{"n"},
				Usage:       "show the commands to be run but do not run them",
				Destination: &opts.DryRun,
			},
			&cli.StringFlag{
				Name:        "input-file",
				Aliases:     []string{"f"},
				Usage:       "read lldptool output (or a pcap/pcapng capture) from `FILE` instead of querying lldpad",
				Destination: &opts.InputFile,
				TakesFile:   true,
			},
			&cli.BoolFlag{
				Name:        "remove-ip-addrs",
				Aliases:     []string{"r"},
				Usage:       "remove any existing ip addresses",
				Destination: &opts.RemoveIPAddrs,
			},
			&cli.BoolFlag{
				Name:        "skip-reload",
				Aliases:     []string{"s"},
				Usage:       "do not cycle (link down, then link up) the interface to apply configuration",
				Destination: &opts.SkipReload,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       fmt.Sprintf("how to apply the live config, one of %v", app.Backends),
				Value:       app.BackendExec,
				Destination: &opts.Backend,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "settings file with tool paths (yaml)",
				Destination: &settingsPath,
				TakesFile:   true,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "also write debug logs to the rotated `FILE`",
				Destination: &logFile,
				TakesFile:   true,
			},
			&cli.StringFlag{
				Name:        "log-webhook",
				Usage:       "also send logs to the `URL`",
				Destination: &logWebhook,
			},
			&cli.StringFlag{
				Name:        "metrics-file",
				Usage:       "write run metrics in node exporter textfile format to `FILE`",
				Destination: &opts.MetricsFile,
				TakesFile:   true,
			},
		},
		Before: func(_ *cli.Context) error {
			return setupLogger(verbose, debug, logFile, logWebhook)
		},
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() != 1 {
				_ = cli.ShowAppHelp(cCtx)

				return cli.Exit("exactly one interface name is required", 1)
			}
			opts.Interface = cCtx.Args().First()

			settings, err := netcfg.LoadSettings(settingsPath)
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			opts.Settings = settings

			return app.Run(ctx, opts)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("Failed", "err", err.Error())
		for _, hint := range netcfg.Hints(err) {
			slog.Warn("Diagnostic", "hint", hint)
		}
		flushLogs()
		os.Exit(1) //nolint:gocritic
	}

	flushLogs()
}
