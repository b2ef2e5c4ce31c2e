// Copyright 2024 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/blinklabs-io/fpowd/internal/api"
	"github.com/blinklabs-io/fpowd/internal/config"
	"github.com/blinklabs-io/fpowd/internal/logging"
	"github.com/blinklabs-io/fpowd/internal/metrics"
	"github.com/blinklabs-io/fpowd/internal/state"
	"github.com/blinklabs-io/fpowd/internal/validator"
	"github.com/blinklabs-io/fpowd/internal/version"
	"github.com/blinklabs-io/fpowd/pow"
)

var cmdlineFlags struct {
	configFile string
	version    bool
}

func main() {
	flag.StringVar(
		&cmdlineFlags.configFile,
		"config",
		"",
		"path to config file to load",
	)
	flag.BoolVar(
		&cmdlineFlags.version,
		"version",
		false,
		"show version and exit",
	)
	flag.Parse()

	if cmdlineFlags.version {
		fmt.Printf("fpowd %s\n", version.GetVersionString())
		os.Exit(0)
	}

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	logging.Setup()
	logger := logging.GetLogger()

	logger.Info(
		fmt.Sprintf("fpowd %s started", version.GetVersionString()),
		"profile", cfg.Profile,
	)

	// Load state
	var ledger *state.State
	if !cfg.State.Disabled {
		ledger = state.GetState()
		if err := ledger.Load(); err != nil {
			fatal(logger, "failed to load state", err)
		}
		defer func() {
			if err := ledger.Close(); err != nil {
				logger.Error("failed to close state", "error", err)
			}
		}()
	}

	// Start debug listener
	if cfg.Debug.ListenPort > 0 {
		logger.Info(
			"starting debug listener",
			"address", cfg.Debug.ListenAddress,
			"port", cfg.Debug.ListenPort,
		)
		go func() {
			debugger := &http.Server{
				Addr: fmt.Sprintf(
					"%s:%d",
					cfg.Debug.ListenAddress,
					cfg.Debug.ListenPort,
				),
				ReadHeaderTimeout: 60 * time.Second,
			}
			if err := debugger.ListenAndServe(); err != nil {
				fatal(logger, "failed to start debug listener", err)
			}
		}()
	}

	// Start metrics listener
	if err := metrics.Start(); err != nil {
		fatal(logger, "failed to start metrics listener", err)
	}

	// Start validator
	verifier := pow.NewVerifier(
		pow.WithOracle(pow.NewOracle(cfg.LargePrimePolicy())),
		pow.WithMaxBitLength(cfg.Verifier.MaxBitLength),
	)
	validatorOpts := []validator.ValidatorOptionFunc{
		validator.WithVerifier(verifier),
		validator.WithWorkers(cfg.Verifier.Workers),
		validator.WithQueueSize(cfg.Verifier.QueueSize),
		validator.WithRejectLog(cfg.Logging.RejectLog),
	}
	apiOpts := []api.ApiOptionFunc{
		api.WithAccessLog(cfg.Logging.AccessLog),
	}
	if ledger != nil {
		validatorOpts = append(validatorOpts, validator.WithLedger(ledger))
		apiOpts = append(apiOpts, api.WithLedger(ledger))
	}
	v := validator.New(validatorOpts...)
	if err := v.Start(); err != nil {
		fatal(logger, "failed to start validator", err)
	}
	defer v.Stop()

	// Start API listener
	if err := api.New(v, verifier, apiOpts...).Start(); err != nil {
		fatal(logger, "failed to start API listener", err)
	}

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	<-ctx.Done()
	logger.Info("shutting down")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
