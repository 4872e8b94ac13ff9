package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/localrivet/distill/internal/config"
	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/summarizer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "distill",
		Usage: "Summarize documents with extractive, abstractive and hybrid strategies",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "configuration file path",
				Value: config.DefaultConfigFilename,
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "environment file path",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the summarization tools over MCP stdio",
				Action: serveAction,
			},
			{
				Name:  "http",
				Usage: "Serve the HTTP JSON API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address",
						Value: ":8000",
					},
				},
				Action: httpAction,
			},
			{
				Name:      "summarize",
				Usage:     "Summarize a file, or stdin when no file is given",
				ArgsUsage: "[file]",
				Flags:     requestFlags(),
				Action:    summarizeAction,
			},
			{
				Name:      "batch",
				Usage:     "Summarize several files with the same parameters",
				ArgsUsage: "file...",
				Flags:     requestFlags(),
				Action:    batchAction,
			},
			{
				Name:      "analyze",
				Usage:     "Print text statistics for a file, or stdin when no file is given",
				ArgsUsage: "[file]",
				Action:    analyzeAction,
			},
			{
				Name:   "models",
				Usage:  "List the summarization engines and methods",
				Action: modelsAction,
			},
			{
				Name:  "config",
				Usage: "Configuration commands",
				Commands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Write the default configuration",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "force",
								Usage: "overwrite an existing file",
							},
						},
						Action: configInitAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		errortypes.LogError(slog.Default(), err)
		os.Exit(1)
	}
}

func requestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "method",
			Usage: "extractive, abstractive or hybrid",
			Value: string(summarizer.DefaultMethod),
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "engine name (defaults to engine.default)",
		},
		&cli.IntFlag{
			Name:  "max-sentences",
			Usage: "maximum number of sentences",
			Value: summarizer.DefaultMaxSentences,
		},
		&cli.IntFlag{
			Name:  "max-length",
			Usage: "maximum summary length",
			Value: summarizer.DefaultMaxLength,
		},
		&cli.IntFlag{
			Name:  "min-length",
			Usage: "minimum summary length",
			Value: summarizer.DefaultMinLength,
		},
		&cli.StringFlag{
			Name:  "language",
			Usage: "document language (advisory)",
			Value: summarizer.DefaultLanguage,
		},
	}
}
