// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package validator

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/fpowd/internal/logging"
	"github.com/blinklabs-io/fpowd/internal/metrics"
	"github.com/blinklabs-io/fpowd/internal/proof"
	"github.com/blinklabs-io/fpowd/internal/state"
	"github.com/blinklabs-io/fpowd/pow"
)

const (
	defaultWorkers   = 1
	defaultQueueSize = 16
)

var (
	ErrNotStarted = errors.New("validator not started")
	ErrStopped    = errors.New("validator stopped")
)

type Result struct {
	Digest  string        `json:"digest"`
	Valid   bool          `json:"valid"`
	Reason  string        `json:"reason,omitempty"`
	Error   string        `json:"error,omitempty"`
	Cached  bool          `json:"cached"`
	Elapsed time.Duration `json:"elapsedNs"`
}

type job struct {
	ctx      context.Context
	envelope *proof.Envelope
	resultCh chan<- Result
}

// Validator runs proof verifications on a bounded pool of workers
type Validator struct {
	sync.Mutex
	verifier  *pow.Verifier
	ledger    *state.State
	logger    *slog.Logger
	rejectLog bool
	workers   uint
	queueSize uint
	jobCh     chan job
	doneCh    chan struct{}
	wg        sync.WaitGroup
	started   bool
}

type ValidatorOptionFunc func(*Validator)

func WithVerifier(verifier *pow.Verifier) ValidatorOptionFunc {
	return func(v *Validator) {
		v.verifier = verifier
	}
}

// WithLedger enables caching of verdicts in the given state
func WithLedger(ledger *state.State) ValidatorOptionFunc {
	return func(v *Validator) {
		v.ledger = ledger
	}
}

func WithLogger(logger *slog.Logger) ValidatorOptionFunc {
	return func(v *Validator) {
		v.logger = logger
	}
}

func WithRejectLog(rejectLog bool) ValidatorOptionFunc {
	return func(v *Validator) {
		v.rejectLog = rejectLog
	}
}

func WithWorkers(workers uint) ValidatorOptionFunc {
	return func(v *Validator) {
		v.workers = max(workers, 1)
	}
}

func WithQueueSize(queueSize uint) ValidatorOptionFunc {
	return func(v *Validator) {
		v.queueSize = queueSize
	}
}

func New(opts ...ValidatorOptionFunc) *Validator {
	v := &Validator{
		workers:   defaultWorkers,
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.verifier == nil {
		v.verifier = pow.NewVerifier()
	}
	if v.logger == nil {
		v.logger = logging.GetLogger()
	}
	return v
}

func (v *Validator) Start() error {
	v.Lock()
	defer v.Unlock()
	if v.started {
		return errors.New("validator already started")
	}
	v.jobCh = make(chan job, v.queueSize)
	v.doneCh = make(chan struct{})
	for range v.workers {
		v.wg.Add(1)
		go v.worker(v.jobCh, v.doneCh)
	}
	v.started = true
	v.logger.Info(
		"started validator",
		"workers", v.workers,
		"queueSize", v.queueSize,
		"largePrimeTest", v.verifier.Oracle().Policy().String(),
		"maxBitLength", v.verifier.MaxBitLength(),
	)
	return nil
}

// Stop waits for running verifications to finish. Queued jobs are dropped
// and their submitters receive ErrStopped.
func (v *Validator) Stop() {
	v.Lock()
	if !v.started {
		v.Unlock()
		return
	}
	v.started = false
	close(v.doneCh)
	v.Unlock()
	v.wg.Wait()
}

// Submit queues an envelope and waits for its verdict. A rejected proof is
// a successful call with Valid set to false.
func (v *Validator) Submit(
	ctx context.Context,
	envelope *proof.Envelope,
) (Result, error) {
	v.Lock()
	if !v.started {
		v.Unlock()
		return Result{}, ErrNotStarted
	}
	jobCh, doneCh := v.jobCh, v.doneCh
	v.Unlock()
	resultCh := make(chan Result, 1)
	select {
	case jobCh <- job{ctx: ctx, envelope: envelope, resultCh: resultCh}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-doneCh:
		return Result{}, ErrStopped
	}
	select {
	case result := <-resultCh:
		return result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-doneCh:
		// The job may have completed concurrently with shutdown
		select {
		case result := <-resultCh:
			return result, nil
		default:
			return Result{}, ErrStopped
		}
	}
}

func (v *Validator) worker(jobCh <-chan job, doneCh <-chan struct{}) {
	defer v.wg.Done()
	for {
		select {
		case <-doneCh:
			return
		case j := <-jobCh:
			// Skip work for callers that already gave up
			if j.ctx.Err() != nil {
				continue
			}
			j.resultCh <- v.process(j.envelope)
		}
	}
}

// ledgerNamespace keys verdicts by the settings that produced them
func (v *Validator) ledgerNamespace() string {
	return fmt.Sprintf(
		"%s_%d",
		v.verifier.Oracle().Policy(),
		v.verifier.MaxBitLength(),
	)
}

func (v *Validator) process(envelope *proof.Envelope) Result {
	digest := envelope.Digest()
	result := Result{
		Digest: hex.EncodeToString(digest[:]),
	}
	if v.ledger != nil {
		verdict, err := v.ledger.LookupVerdict(v.ledgerNamespace(), digest)
		if err != nil {
			v.logger.Warn(
				"failed to look up verdict",
				"digest", result.Digest,
				"error", err,
			)
		} else if verdict != nil {
			metrics.ObserveLedgerHit()
			result.Valid = verdict.Valid
			result.Reason = verdict.Reason
			result.Cached = true
			return result
		}
	}
	start := time.Now()
	err := envelope.Verify(v.verifier)
	result.Elapsed = time.Since(start)
	result.Valid = err == nil
	if err != nil {
		result.Reason = RejectReason(err)
		result.Error = err.Error()
		if v.rejectLog {
			v.logger.Info(
				"rejected proof",
				"digest", result.Digest,
				"prevBlock", hex.EncodeToString(envelope.PrevBlock[:]),
				"bits", envelope.Bits,
				"reason", result.Reason,
				"error", err,
			)
		}
	}
	metrics.ObserveVerification(result.Reason, result.Elapsed)
	if v.ledger != nil {
		err := v.ledger.RecordVerdict(
			v.ledgerNamespace(),
			digest,
			state.Verdict{
				Valid:  result.Valid,
				Reason: result.Reason,
				Bits:   envelope.Bits,
			},
		)
		if err != nil {
			v.logger.Warn(
				"failed to record verdict",
				"digest", result.Digest,
				"error", err,
			)
		}
	}
	return result
}

// RejectReason maps a verification error to a short label
func RejectReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, pow.ErrBitLengthTooLarge):
		return "bit_length"
	case errors.Is(err, pow.ErrFactorEncoding):
		return "encoding"
	case errors.Is(err, pow.ErrFactorOrder):
		return "order"
	case errors.Is(err, pow.ErrFactorNotPrime):
		return "not_prime"
	case errors.Is(err, pow.ErrProductMismatch):
		return "product"
	default:
		return "other"
	}
}
