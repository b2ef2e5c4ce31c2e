// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/blinklabs-io/fpowd/internal/config"
	"github.com/blinklabs-io/fpowd/internal/logging"
	"github.com/blinklabs-io/fpowd/internal/proof"
	"github.com/blinklabs-io/fpowd/internal/state"
	"github.com/blinklabs-io/fpowd/internal/validator"
	"github.com/blinklabs-io/fpowd/internal/version"
	"github.com/blinklabs-io/fpowd/pow"
)

const (
	contentTypeJson   = "application/json"
	contentTypeBinary = "application/octet-stream"

	// Largest JSON body, hex doubles the size of the factors
	maxRequestSize = 2*proof.MaxFactorsLength + 1024
)

type Api struct {
	validator *validator.Validator
	verifier  *pow.Verifier
	ledger    *state.State
	logger    *slog.Logger
	accessLog bool
	mux       *http.ServeMux
}

type ApiOptionFunc func(*Api)

// WithLedger reports ledger stats on the health endpoint
func WithLedger(ledger *state.State) ApiOptionFunc {
	return func(a *Api) {
		a.ledger = ledger
	}
}

func WithAccessLog(accessLog bool) ApiOptionFunc {
	return func(a *Api) {
		a.accessLog = accessLog
	}
}

func New(
	v *validator.Validator,
	verifier *pow.Verifier,
	opts ...ApiOptionFunc,
) *Api {
	a := &Api{
		validator: v,
		verifier:  verifier,
		logger:    logging.GetLogger(),
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.mux.HandleFunc("POST /v1/verify", a.handleVerify)
	a.mux.HandleFunc("GET /v1/target", a.handleTarget)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	return a
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !a.accessLog {
		a.mux.ServeHTTP(w, r)
		return
	}
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	a.mux.ServeHTTP(rec, r)
	logging.GetAccessLogger().Info(
		"request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote", r.RemoteAddr,
		"status", rec.status,
		"elapsed", time.Since(start).String(),
	)
}

// Start serves the API in the background
func (a *Api) Start() error {
	cfg := config.GetConfig()
	listenAddr := fmt.Sprintf(
		"%s:%d",
		cfg.Api.ListenAddress,
		cfg.Api.ListenPort,
	)
	a.logger.Info(
		"starting API listener",
		"address", listenAddr,
	)
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           a,
		ReadHeaderTimeout: 60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil {
			a.logger.Error(
				"failed to start API listener",
				"error", err,
			)
		}
	}()
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type targetResponse struct {
	PrevBlock string `json:"prevBlock"`
	Bits      uint32 `json:"bits"`
	Target    string `json:"target"`
}

type healthResponse struct {
	Status         string       `json:"status"`
	Version        version.Info `json:"version"`
	LargePrimeTest string       `json:"largePrimeTest"`
	MaxBitLength   uint32       `json:"maxBitLength"`
	Ledger         *state.Stats `json:"ledger,omitempty"`
}

func (a *Api) handleVerify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		a.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	var envelope *proof.Envelope
	if r.Header.Get("Content-Type") == contentTypeBinary {
		envelope, err = proof.DecodeBytes(body)
	} else {
		envelope = &proof.Envelope{}
		err = json.Unmarshal(body, envelope)
	}
	if err != nil {
		a.writeError(
			w,
			http.StatusBadRequest,
			fmt.Errorf("invalid envelope: %w", err),
		)
		return
	}
	result, err := a.validator.Submit(r.Context(), envelope)
	if err != nil {
		status := http.StatusServiceUnavailable
		if r.Context().Err() != nil {
			status = http.StatusRequestTimeout
		}
		a.writeError(w, status, err)
		return
	}
	a.writeJson(w, http.StatusOK, result)
}

func (a *Api) handleTarget(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	prev, err := proof.ParseBlockID(query.Get("prev"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	bits, err := strconv.ParseUint(query.Get("bits"), 10, 32)
	if err != nil {
		a.writeError(
			w,
			http.StatusBadRequest,
			fmt.Errorf("invalid bits: %w", err),
		)
		return
	}
	// nolint:gosec // bounded by ParseUint
	bitLength := uint32(bits)
	if bitLength > a.verifier.MaxBitLength() {
		a.writeError(
			w,
			http.StatusBadRequest,
			fmt.Errorf("%w: %d", pow.ErrBitLengthTooLarge, bitLength),
		)
		return
	}
	target, err := pow.DeriveTarget(prev, bitLength)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJson(
		w,
		http.StatusOK,
		targetResponse{
			PrevBlock: hex.EncodeToString(prev[:]),
			Bits:      bitLength,
			Target:    target.HexBE(),
		},
	)
}

func (a *Api) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:         "ok",
		Version:        version.GetInfo(),
		LargePrimeTest: a.verifier.Oracle().Policy().String(),
		MaxBitLength:   a.verifier.MaxBitLength(),
	}
	if a.ledger != nil && a.ledger.IsLoaded() {
		stats, err := a.ledger.Stats()
		if err != nil {
			a.logger.Warn(
				"failed to read ledger stats",
				"error", err,
			)
		} else {
			resp.Ledger = &stats
		}
	}
	a.writeJson(w, http.StatusOK, resp)
}

func (a *Api) writeJson(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJson)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn(
			"failed to write response",
			"error", err,
		)
	}
}

func (a *Api) writeError(w http.ResponseWriter, status int, err error) {
	var maxBytesErr *http.MaxBytesError
	if !errors.As(err, &maxBytesErr) && status == http.StatusRequestEntityTooLarge {
		status = http.StatusBadRequest
	}
	a.writeJson(w, status, errorResponse{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
