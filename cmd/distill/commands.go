package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/localrivet/distill"
	"github.com/localrivet/distill/internal/config"
	"github.com/localrivet/distill/internal/errortypes"
	"github.com/localrivet/distill/internal/logger"
	"github.com/localrivet/distill/internal/summarizer"
	"github.com/localrivet/distill/internal/telemetry"
	"github.com/localrivet/distill/internal/textproc"
)

const shutdownTimeout = 5 * time.Second

// appContext holds what every command needs.
type appContext struct {
	config  *config.Config
	log     *logger.Logger
	metrics *telemetry.MetricsCollector
	service *distill.Service
}

// newAppContext loads the env file and configuration, installs the process
// logger as the slog default and builds the service.
func newAppContext(cmd *cli.Command) (*appContext, error) {
	if envFile := cmd.String("env"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errortypes.ConfigError(err, "failed to load env file").WithField("path", envFile)
		}
	}

	cfg, err := config.InitGlobal(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	log := setupLogging(cfg)
	slog.SetDefault(logger.NewSlog(log))

	metrics := telemetry.NewMetricsCollector()
	svc, err := distill.NewService(distill.ServiceOptions{
		Config:  cfg,
		Logger:  slog.Default(),
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}

	return &appContext{
		config:  cfg,
		log:     log,
		metrics: metrics,
		service: svc,
	}, nil
}

// setupLogging creates the process logger from the logging settings.
func setupLogging(cfg *config.Config) *logger.Logger {
	log := logger.New(cfg.LoggerConfig())
	logger.SetDefaultLogger(log)
	return log
}

// startExporter serves Prometheus metrics on metrics.addr when it is set.
// The returned stop function is always safe to call.
func (a *appContext) startExporter() func() {
	addr := a.config.Metrics.Addr
	if addr == "" {
		return func() {}
	}

	exporter := telemetry.NewExporter(addr, a.metrics)
	log := a.log.WithContext("metrics")
	go func() {
		log.Info("Serving metrics on %s", addr)
		if err := exporter.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics exporter failed: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = exporter.Shutdown(ctx)
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	stopExporter := app.startExporter()
	defer stopExporter()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.service.Start()
	}()

	select {
	case <-ctx.Done():
		app.log.Info("Received shutdown signal, terminating gracefully...")
		return app.service.Stop()
	case err := <-errCh:
		return err
	}
}

func httpAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	exporter := telemetry.NewExporter("", app.metrics)
	hs, err := app.service.HTTPServer(cmd.String("addr"), exporter.Handler())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Start()
	}()

	select {
	case <-ctx.Done():
		app.log.Info("Received shutdown signal, terminating gracefully...")
		return hs.Stop()
	case err := <-errCh:
		return err
	}
}

func summarizeAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	text, err := readInput(cmd.Args().First(), os.Stdin)
	if err != nil {
		return err
	}

	req := requestFromFlags(cmd)
	req.Text = text

	result, err := app.service.Summarize(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, result)
}

func batchAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return errortypes.ValidationError(errors.New("no files given"), "batch needs at least one file")
	}

	req := requestFromFlags(cmd)
	batch := summarizer.BatchRequest{
		Method:       req.Method,
		Engine:       req.Engine,
		MaxSentences: req.MaxSentences,
		MaxLength:    req.MaxLength,
		MinLength:    req.MinLength,
		Language:     req.Language,
	}
	for _, path := range paths {
		text, err := readInput(path, nil)
		if err != nil {
			return err
		}
		batch.Documents = append(batch.Documents, summarizer.Document{Text: text})
	}

	result, err := app.service.SummarizeBatch(ctx, batch)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, result)
}

func analyzeAction(_ context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	text, err := readInput(cmd.Args().First(), os.Stdin)
	if err != nil {
		return err
	}

	stats, err := app.service.Analyze(text)
	if err != nil {
		return err
	}
	renderStatistics(os.Stdout, stats)
	return nil
}

func modelsAction(_ context.Context, _ *cli.Command) error {
	renderCatalog(os.Stdout, summarizer.Catalog())
	return nil
}

func configInitAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return errortypes.ConfigError(os.ErrExist, "configuration file already exists").WithField("path", path)
	}

	if err := distill.SaveConfig(distill.DefaultConfig(), path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote default configuration to %s\n", path)
	return nil
}

// requestFromFlags builds a request from the shared summarization flags.
func requestFromFlags(cmd *cli.Command) summarizer.Request {
	return summarizer.Request{
		Method:       summarizer.Method(strings.ToLower(cmd.String("method"))),
		Engine:       strings.ToLower(cmd.String("model")),
		MaxSentences: int(cmd.Int("max-sentences")),
		MaxLength:    int(cmd.Int("max-length")),
		MinLength:    int(cmd.Int("min-length")),
		Language:     cmd.String("language"),
	}
}

// readInput reads the file at path, or all of stdin when path is empty or
// "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		if stdin == nil {
			return "", errortypes.ValidationError(errors.New("no input"), "a file path is required")
		}
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errortypes.ValidationError(err, "failed to read input").WithField("path", path)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderCatalog(w io.Writer, catalog summarizer.CatalogInfo) {
	table := tablewriter.NewWriter(w)
	table.Header("Model", "Type", "Max Input", "API Key", "Best For")
	for _, e := range catalog.Engines {
		table.Append(
			e.ID,
			e.Type,
			strconv.Itoa(e.MaxInputLength),
			strconv.FormatBool(e.RequiresAPIKey),
			e.BestFor,
		)
	}
	table.Render()

	fmt.Fprintln(w)
	methods := tablewriter.NewWriter(w)
	methods.Header("Method", "Description")
	for _, m := range catalog.Methods {
		methods.Append(string(m.ID), m.Description)
	}
	methods.Render()
}

func renderStatistics(w io.Writer, stats textproc.TextStatistics) {
	table := tablewriter.NewWriter(w)
	table.Header("Statistic", "Value")
	table.Append("Words", strconv.Itoa(stats.WordCount))
	table.Append("Sentences", strconv.Itoa(stats.SentenceCount))
	table.Append("Characters", strconv.Itoa(stats.CharacterCount))
	table.Append("Characters (no spaces)", strconv.Itoa(stats.CharacterCountNoSpaces))
	table.Append("Tokens", strconv.Itoa(stats.TokenCount))
	table.Append("Words per sentence", fmt.Sprintf("%.1f", stats.AvgWordsPerSentence))
	table.Append("Characters per word", fmt.Sprintf("%.1f", stats.AvgCharsPerWord))
	table.Append("Language", stats.Language)
	table.Render()
}
