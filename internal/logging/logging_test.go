// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/fpowd/internal/config"
	"github.com/blinklabs-io/fpowd/internal/logging"
)

func TestSetupWriter(t *testing.T) {
	cfg := config.GetConfig()
	origLevel := cfg.Logging.Level
	origDefault := slog.Default()
	t.Cleanup(func() {
		cfg.Logging.Level = origLevel
		slog.SetDefault(origDefault)
	})
	cfg.Logging.Level = "warn"
	var buf bytes.Buffer
	logging.SetupWriter(&buf)

	logger := logging.GetLogger()
	logger.Info("dropped")
	logger.Warn("kept", "bits", 40)
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unexpected error decoding log entry %q: %s", buf.String(), err)
	}
	if entry["msg"] != "kept" {
		t.Fatalf("did not get expected message: got %v, want kept", entry["msg"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("log entry is missing the timestamp: %s", buf.String())
	}
	if entry["bits"] != float64(40) {
		t.Fatalf("did not get expected attribute: got %v", entry["bits"])
	}

	buf.Reset()
	logging.GetAccessLogger().Warn("request")
	if !bytes.Contains(buf.Bytes(), []byte(`"type":"access"`)) {
		t.Fatalf("access log entry is missing its type: %s", buf.String())
	}
}
