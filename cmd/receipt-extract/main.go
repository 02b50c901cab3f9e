package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"receipt-extract/internal/pipeline"
	"receipt-extract/internal/server"
	"receipt-extract/internal/store"
	"receipt-extract/pkg/export"
	"receipt-extract/pkg/extract"
	"receipt-extract/pkg/ocr"
)

func main() {
	fs := ff.NewFlagSet("receipt-extract")
	var (
		inputDir   = fs.StringLong("input", "./images", "Directory of receipt images")
		outputPath = fs.StringLong("output", "extracted_data.csv", "CSV output path")
		threshold  = fs.StringLong("threshold", "otsu", "Threshold method: 'otsu' or 'adaptive'")
		denoise    = fs.BoolLong("denoise", "Apply a morphological open pass after thresholding")
		registry   = fs.StringLong("registry", "broad", "Pattern registry: 'broad' or 'banksplit'")
		lang       = fs.StringLong("lang", "eng", "Tesseract language")
		tessdata   = fs.StringLong("tessdata", "", "Tesseract data prefix (empty uses the system default)")
		watch      = fs.BoolLong("watch", "Keep watching the input directory for new images")
		serve      = fs.BoolLong("serve", "Run the HTTP extraction server instead of a batch run")
		port       = fs.IntLong("port", 8081, "HTTP server port (serve mode)")
		dbDSN      = fs.StringLong("db-dsn", "", "Optional Postgres DSN for persisting records")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("RECEIPT_EXTRACT")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log := slog.Default()

	method, err := ocr.ParseMethod(*threshold)
	if err != nil {
		log.Error("invalid flag", "error", err)
		os.Exit(1)
	}
	var reg *extract.Registry
	switch *registry {
	case "broad":
		reg = extract.NewBroadRegistry()
	case "banksplit":
		reg = extract.NewBankSplitRegistry()
	default:
		log.Error("invalid flag", "error", fmt.Sprintf("unknown registry %q (want broad or banksplit)", *registry))
		os.Exit(1)
	}

	var st *store.Store
	if *dbDSN != "" {
		st, err = store.Open(*dbDSN)
		if err != nil {
			log.Error("database unavailable", "error", err)
			os.Exit(1)
		}
	}

	engine := ocr.NewEngine(*lang)
	engine.TessdataPrefix = *tessdata

	if *serve {
		srv := server.New(engine, serverStore(st), log)
		addr := fmt.Sprintf(":%d", *port)
		log.Info("serving", "addr", addr)
		if err := srv.Routes().Run(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	runner := &pipeline.Runner{
		Pre:      pipeline.ImagePreprocessor{Opts: ocr.Options{Method: method, Denoise: *denoise}},
		OCR:      engine,
		Registry: reg,
		Store:    runnerStore(st),
		Log:      log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, failures, err := runner.Run(ctx, *inputDir)
	if err != nil {
		if table == nil {
			log.Error("run failed", "error", err)
			os.Exit(1)
		}
		// Interrupted mid-batch: rows aggregated so far are still valid.
		log.Warn("run interrupted", "error", err)
	}
	for _, f := range failures {
		log.Warn("image skipped", "image", f.Image, "reason", f.Err)
	}
	if err := export.WriteCSVFile(*outputPath, table); err != nil {
		log.Error("write output", "error", err)
		os.Exit(1)
	}
	log.Info("batch complete", "rows", table.Len(), "skipped", len(failures), "output", *outputPath)

	if *watch && ctx.Err() == nil {
		rewrite := func() {
			if err := export.WriteCSVFile(*outputPath, table); err != nil {
				log.Error("write output", "error", err)
			}
		}
		if err := runner.Watch(ctx, *inputDir, rewrite, table, &failures); err != nil && ctx.Err() == nil {
			log.Error("watch failed", "error", err)
			os.Exit(1)
		}
	}
}

// runnerStore avoids handing the runner a non-nil interface wrapping a nil
// store.
func runnerStore(st *store.Store) pipeline.RecordStore {
	if st == nil {
		return nil
	}
	return st
}

func serverStore(st *store.Store) server.RecordStore {
	if st == nil {
		return nil
	}
	return st
}
