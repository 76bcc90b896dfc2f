package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crimson-sun/talepnlp/internal/config"
	"github.com/crimson-sun/talepnlp/internal/engine"
	"github.com/crimson-sun/talepnlp/internal/engine/loader"
	"github.com/crimson-sun/talepnlp/internal/logging"
	"github.com/crimson-sun/talepnlp/internal/output"
	"github.com/crimson-sun/talepnlp/internal/output/async"
	"github.com/crimson-sun/talepnlp/internal/output/file"
	"github.com/crimson-sun/talepnlp/internal/output/multi"
	"github.com/crimson-sun/talepnlp/internal/output/sqlite"
	"github.com/crimson-sun/talepnlp/internal/output/stdout"
	"github.com/crimson-sun/talepnlp/internal/pipeline"
	"github.com/crimson-sun/talepnlp/internal/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default $TALEP_CONFIG)")
	text := flag.String("text", "", "predict a single text and exit")
	inputFile := flag.String("file", "", "predict every line of a file and exit")
	serve := flag.Bool("serve", false, "serve predictions over HTTP")
	addr := flag.String("addr", "", "listen address for -serve (default from config)")
	parallel := flag.Bool("parallel", false, "run the prediction stages concurrently")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *parallel {
		cfg.Engine.Parallel = true
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := logging.Init(cfg.Output.Display == stdout.FormatJSON, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bundle, err := loader.Load(ctx, cfg.Models.Paths(), logger)
	if err != nil {
		log.Fatalf("failed to load models: %v", err)
	}
	defer bundle.Close()
	printStatus(bundle.Status())

	eng := engine.New(bundle,
		engine.WithParallel(cfg.Engine.Parallel),
		engine.WithCache(cfg.Engine.CacheSize),
		engine.WithLogger(logger),
	)

	sink, err := openSink(ctx, cfg.Output)
	if err != nil {
		log.Fatalf("failed to open prediction log: %v", err)
	}

	if *serve {
		if sink != nil {
			sink = async.New(sink, async.WithBufferSize(cfg.Server.QueueSize))
			defer sink.Close()
		}
		srv := server.New(eng, sink, logger)
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	p := pipeline.New(eng, openDisplay(cfg.Output), sink)
	defer p.Close()

	switch {
	case *text != "":
		if _, err := p.Once(ctx, *text); err != nil {
			logger.Error("prediction failed", "error", err)
			os.Exit(1)
		}
	case *inputFile != "":
		f, err := os.Open(*inputFile)
		if err != nil {
			log.Fatalf("failed to open input: %v", err)
		}
		defer f.Close()
		n, err := p.Batch(ctx, f)
		logger.Info("batch complete", "records", n)
		if err != nil {
			logger.Error("batch failed", "error", err)
			os.Exit(1)
		}
	default:
		if err := p.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("session ended with error", "error", err)
		}
	}
}

// openSink returns the configured prediction log, or nil for "none".
func openSink(ctx context.Context, cfg config.OutputConfig) (output.Output, error) {
	switch cfg.Sink {
	case config.SinkCSV:
		return file.New(cfg.Path, file.WithMaxSize(cfg.MaxSize))
	case config.SinkSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.SinkBoth:
		csvLog, err := file.New(cfg.Path, file.WithMaxSize(cfg.MaxSize))
		if err != nil {
			return nil, err
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			csvLog.Close()
			return nil, err
		}
		return multi.New(csvLog, db), nil
	default:
		return nil, nil
	}
}

// openDisplay returns the console output, or nil for "none".
func openDisplay(cfg config.OutputConfig) output.Output {
	if cfg.Display == "none" {
		return nil
	}
	return stdout.New(cfg.Display, cfg.Pretty)
}

func printStatus(st []loader.Status) {
	fmt.Fprintln(os.Stderr, "talepnlp: models")
	for _, s := range st {
		if s.Available {
			fmt.Fprintf(os.Stderr, "  %-10s ok\n", s.Name)
			continue
		}
		fmt.Fprintf(os.Stderr, "  %-10s unavailable (%s)\n", s.Name, s.Error)
	}
}
