package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisgaborit/storyboard-engine/internal/clients/openai"
	"github.com/chrisgaborit/storyboard-engine/internal/pipeline"
	pkgerrors "github.com/chrisgaborit/storyboard-engine/internal/pkg/errors"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/envutil"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/logger"
	"github.com/chrisgaborit/storyboard-engine/internal/store"
)

func main() {
	requestPath := flag.String("request", "", "path to a JSON pipeline request (title, organization, summary, blocks)")
	configPath := flag.String("config", "", "optional YAML pipeline config")
	outPath := flag.String("out", "", "optional path to write the result JSON (defaults to stdout)")
	flag.Parse()

	log, err := logger.New(envutil.String("APP_ENV", "dev"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *requestPath == "" {
		log.Fatal("missing -request flag")
	}

	raw, err := os.ReadFile(*requestPath)
	if err != nil {
		log.Fatal("read request", "error", err)
	}
	var req pipeline.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		log.Fatal("parse request", "error", err)
	}

	cfg, err := pipeline.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("load config", "error", err)
	}

	ai, err := openai.NewClient(log)
	if err != nil {
		log.Fatal("openai client", "error", err)
	}

	runStore, err := store.Open(envutil.String("STORYBOARD_DB_DSN", "storyboard.db"), log)
	if err != nil {
		log.Fatal("open store", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.New(log, ai, cfg).Run(ctx, req)
	if err != nil && !errors.Is(err, pkgerrors.ErrCriticalGateFailure) {
		log.Fatal("pipeline run", "error", err)
	}
	if err != nil {
		// Critical gate failure: the run is persisted as rejected so the
		// caller can inspect it, but the exit code signals a full re-run.
		log.Error("storyboard rejected by critical quality gate", "error", err)
	}

	runID, saveErr := runStore.SaveRun(ctx, req, result)
	if saveErr != nil {
		log.Fatal("save run", "error", saveErr)
	}
	log.Info("run persisted", "run_id", runID.String())

	encoded, encErr := json.MarshalIndent(result, "", "  ")
	if encErr != nil {
		log.Fatal("encode result", "error", encErr)
	}
	if *outPath != "" {
		if writeErr := os.WriteFile(*outPath, encoded, 0o644); writeErr != nil {
			log.Fatal("write result", "error", writeErr)
		}
	} else {
		fmt.Println(string(encoded))
	}

	if err != nil {
		os.Exit(2)
	}
}
