// Command validator-core wires configuration, logging, and a metrics
// endpoint around a demo Pack loop. Grounded on cmd/evm-node/main.go
// (urfave/cli.App with a Before hook installing a terminal log handler).
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/luxfi/validator-core/cmd/validator-core/config"
	"github.com/luxfi/validator-core/log"
	"github.com/luxfi/validator-core/pack"
)

const clientIdentifier = "validator-core"

func main() {
	app := &cli.App{
		Name:    clientIdentifier,
		Usage:   "Pack/Tower transaction-scheduling and fork-choice core",
		Version: "0.1.0",
		Before: func(c *cli.Context) error {
			handler := log.NewTerminalHandler(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
			log.SetDefault(log.NewLogger(handler))
			return nil
		},
		Commands: []*cli.Command{
			demoCommand,
			configCheckCommand,
		},
		Action: runDemo,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var demoCommand = &cli.Command{
	Name:  "demo",
	Usage: "run an in-process Pack demo loop",
	Action: func(c *cli.Context) error {
		return runDemo(c)
	},
}

var configCheckCommand = &cli.Command{
	Name:  "config-check",
	Usage: "validate configuration and print the resolved limits",
	Action: func(c *cli.Context) error {
		v, err := config.BuildViper(config.BuildFlagSet(), c.Args().Slice())
		if err != nil {
			return err
		}
		cfg, err := config.Build(v)
		if err != nil {
			return err
		}
		fmt.Printf("%+v\n", cfg)
		return nil
	},
}

func runDemo(c *cli.Context) error {
	v, err := config.BuildViper(config.BuildFlagSet(), c.Args().Slice())
	if err != nil {
		return err
	}
	cfg, err := config.Build(v)
	if err != nil {
		return err
	}
	installLogFile(cfg.LogFile)

	return RunDemo(c.Context, cfg)
}

// installLogFile installs an optional rotating file sink in place of the
// terminal handler when --log-file is set, via
// gopkg.in/natefinch/lumberjack.v2.
func installLogFile(path string) {
	if path == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	handler := log.NewTerminalHandler(rotator, false)
	log.SetDefault(log.NewLogger(handler))
}

// PackLimitsFromConfig exposes the resolved Pack limits for callers
// embedding validator-core as a library rather than a standalone binary.
func PackLimitsFromConfig(cfg config.Config) pack.Limits {
	return cfg.Limits
}
