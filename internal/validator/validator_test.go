// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package validator_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/fpowd/internal/proof"
	"github.com/blinklabs-io/fpowd/internal/state"
	"github.com/blinklabs-io/fpowd/internal/validator"
	"github.com/blinklabs-io/fpowd/pow"
)

// Zero previous block, 8 bits: 0x93 = 3 * 7^2
func validEnvelope() *proof.Envelope {
	return &proof.Envelope{
		Bits:    8,
		Factors: []byte{1, 0x03, 1, 0x01, 1, 0x07, 1, 0x02},
	}
}

func TestSubmit(t *testing.T) {
	v := validator.New(validator.WithWorkers(2))
	require.NoError(t, v.Start())
	defer v.Stop()

	result, err := v.Submit(context.Background(), validEnvelope())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Reason)
	assert.False(t, result.Cached)
	assert.Len(t, result.Digest, 64)

	testDefs := []struct {
		factors []byte
		reason  string
	}{
		{factors: []byte{1, 0x07, 1, 0x02, 1, 0x03, 1, 0x01}, reason: "order"},
		{factors: []byte{1, 0x03, 1, 0x01, 1, 0x07}, reason: "encoding"},
		{factors: []byte{1, 0x03, 1, 0x31}, reason: "product"},
		{factors: []byte{1, 0x93, 1, 0x01}, reason: "not_prime"},
	}
	for _, td := range testDefs {
		envelope := validEnvelope()
		envelope.Factors = td.factors
		result, err := v.Submit(context.Background(), envelope)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, td.reason, result.Reason, "factors %x", td.factors)
		assert.NotEmpty(t, result.Error)
	}

	envelope := validEnvelope()
	envelope.Bits = pow.MaxBitLength + 1
	result, err = v.Submit(context.Background(), envelope)
	require.NoError(t, err)
	assert.Equal(t, "bit_length", result.Reason)
}

func TestSubmitLedger(t *testing.T) {
	ledger := &state.State{}
	require.NoError(t, ledger.LoadInMemory())
	defer ledger.Close()

	v := validator.New(validator.WithLedger(ledger))
	require.NoError(t, v.Start())
	defer v.Stop()

	first, err := v.Submit(context.Background(), validEnvelope())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	second, err := v.Submit(context.Background(), validEnvelope())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Valid, second.Valid)
	assert.Equal(t, first.Digest, second.Digest)

	// A different policy does not reuse the stored verdict
	det := validator.New(
		validator.WithLedger(ledger),
		validator.WithVerifier(
			pow.NewVerifier(pow.WithOracle(pow.NewOracle(pow.LargePrimeDeterministic))),
		),
	)
	require.NoError(t, det.Start())
	defer det.Stop()
	third, err := det.Submit(context.Background(), validEnvelope())
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.True(t, third.Valid)

	stats, err := ledger.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Accepted)
}

func TestSubmitConcurrent(t *testing.T) {
	v := validator.New(validator.WithWorkers(4), validator.WithQueueSize(2))
	require.NoError(t, v.Start())
	defer v.Stop()

	var wg sync.WaitGroup
	errCh := make(chan error, 64)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			envelope := validEnvelope()
			// Every other submission is corrupted
			if i%2 == 1 {
				envelope.Factors = []byte{1, 0x03, 1, 0x02, 1, 0x07, 1, 0x02}
			}
			result, err := v.Submit(context.Background(), envelope)
			if err != nil {
				errCh <- err
				return
			}
			if result.Valid != (i%2 == 0) {
				errCh <- fmt.Errorf("unexpected verdict for submission %d", i)
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}
}

func TestSubmitLifecycle(t *testing.T) {
	v := validator.New()
	_, err := v.Submit(context.Background(), validEnvelope())
	require.ErrorIs(t, err, validator.ErrNotStarted)

	require.NoError(t, v.Start())
	require.Error(t, v.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = v.Submit(ctx, validEnvelope())
	// The job may still be picked up before the cancellation is noticed
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}

	v.Stop()
	_, err = v.Submit(context.Background(), validEnvelope())
	require.ErrorIs(t, err, validator.ErrNotStarted)
	// Stopping twice is harmless
	v.Stop()
}

func TestRejectReason(t *testing.T) {
	assert.Empty(t, validator.RejectReason(nil))
	assert.Equal(t, "not_prime", validator.RejectReason(fmt.Errorf("%w: 65537", pow.ErrFactorNotPrime)))
	assert.Equal(t, "other", validator.RejectReason(errors.New("boom")))
}
