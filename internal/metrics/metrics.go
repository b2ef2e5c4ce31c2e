// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinklabs-io/fpowd/internal/config"
	"github.com/blinklabs-io/fpowd/internal/logging"
)

const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
)

var (
	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpowd_verifications_total",
			Help: "Completed proof verifications by result",
		},
		[]string{"result"},
	)
	rejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpowd_rejections_total",
			Help: "Rejected proofs by reason",
		},
		[]string{"reason"},
	)
	verificationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fpowd_verification_duration_seconds",
			Help:    "Time spent verifying a single proof",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)
	ledgerHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fpowd_ledger_hits_total",
			Help: "Submissions answered from the verdict ledger",
		},
	)
)

// ObserveVerification records a verification that ran to completion
func ObserveVerification(reason string, elapsed time.Duration) {
	verificationSeconds.Observe(elapsed.Seconds())
	if reason == "" {
		verificationsTotal.WithLabelValues(ResultAccepted).Inc()
		return
	}
	verificationsTotal.WithLabelValues(ResultRejected).Inc()
	rejectionsTotal.WithLabelValues(reason).Inc()
}

func ObserveLedgerHit() {
	ledgerHitsTotal.Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Start serves the default registry in the background
func Start() error {
	cfg := config.GetConfig()
	if cfg.Metrics.ListenPort == 0 {
		return nil
	}
	logger := logging.GetLogger()
	listenAddr := fmt.Sprintf(
		"%s:%d",
		cfg.Metrics.ListenAddress,
		cfg.Metrics.ListenPort,
	)
	logger.Info(
		"starting metrics listener",
		"address", listenAddr,
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil {
			logger.Error(
				"failed to start metrics listener",
				"error", err,
			)
		}
	}()
	return nil
}
