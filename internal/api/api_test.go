// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/fpowd/internal/api"
	"github.com/blinklabs-io/fpowd/internal/proof"
	"github.com/blinklabs-io/fpowd/internal/state"
	"github.com/blinklabs-io/fpowd/internal/validator"
	"github.com/blinklabs-io/fpowd/pow"
)

var zeroPrev = strings.Repeat("00", 32)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ledger := &state.State{}
	require.NoError(t, ledger.LoadInMemory())
	t.Cleanup(func() { ledger.Close() })
	verifier := pow.NewVerifier()
	v := validator.New(
		validator.WithVerifier(verifier),
		validator.WithLedger(ledger),
	)
	require.NoError(t, v.Start())
	t.Cleanup(v.Stop)
	server := httptest.NewServer(
		api.New(v, verifier, api.WithLedger(ledger), api.WithAccessLog(true)),
	)
	t.Cleanup(server.Close)
	return server
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestVerifyJson(t *testing.T) {
	server := newTestServer(t)
	body := `{"prevBlock":"` + zeroPrev + `","bits":8,"factors":"0103010101070102"}`
	resp, err := http.Post(server.URL+"/v1/verify", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result validator.Result
	decodeBody(t, resp, &result)
	assert.True(t, result.Valid)

	body = `{"prevBlock":"` + zeroPrev + `","bits":8,"factors":"0103010101070101"}`
	resp, err = http.Post(server.URL+"/v1/verify", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &result)
	assert.False(t, result.Valid)
	assert.Equal(t, "product", result.Reason)
}

func TestVerifyBinary(t *testing.T) {
	server := newTestServer(t)
	envelope := proof.Envelope{
		Bits:    24,
		Factors: []byte{2, 0x6f, 0x01, 1, 1, 2, 0x5f, 0x6b, 1, 1},
	}
	resp, err := http.Post(
		server.URL+"/v1/verify",
		"application/octet-stream",
		bytes.NewReader(envelope.Encode()),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result validator.Result
	decodeBody(t, resp, &result)
	assert.True(t, result.Valid)
}

func TestVerifyBadRequest(t *testing.T) {
	server := newTestServer(t)
	testDefs := []struct {
		contentType string
		body        []byte
	}{
		{contentType: "application/json", body: []byte("{")},
		{contentType: "application/json", body: []byte(`{"prevBlock":"00","bits":8,"factors":""}`)},
		{contentType: "application/octet-stream", body: []byte{0x01, 0x02}},
	}
	for _, td := range testDefs {
		resp, err := http.Post(server.URL+"/v1/verify", td.contentType, bytes.NewReader(td.body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", td.body)
	}
	resp, err := http.Post(
		server.URL+"/v1/verify",
		"application/json",
		bytes.NewReader(make([]byte, 2*proof.MaxFactorsLength+2048)),
	)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestTarget(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/v1/target?prev=" + zeroPrev + "&bits=40")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var target struct {
		Bits   uint32 `json:"bits"`
		Target string `json:"target"`
	}
	decodeBody(t, resp, &target)
	assert.Equal(t, uint32(40), target.Bits)
	assert.Equal(t, "9e88687ef3", target.Target)

	badDefs := []string{
		"/v1/target?prev=" + zeroPrev,
		"/v1/target?prev=00&bits=8",
		"/v1/target?prev=" + zeroPrev + "&bits=513",
		"/v1/target?prev=" + zeroPrev + "&bits=-1",
	}
	for _, path := range badDefs {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)
	body := `{"prevBlock":"` + zeroPrev + `","bits":8,"factors":"0103010101070102"}`
	resp, err := http.Post(server.URL+"/v1/verify", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		Status         string `json:"status"`
		LargePrimeTest string `json:"largePrimeTest"`
		Ledger         struct {
			Accepted uint64 `json:"accepted"`
		} `json:"ledger"`
	}
	decodeBody(t, resp, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "reject", health.LargePrimeTest)
	assert.Equal(t, uint64(1), health.Ledger.Accepted)
}
