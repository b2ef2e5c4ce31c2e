// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/fpowd/pow"
)

// resetConfig restores the global config after a test mutates it
func resetConfig(t *testing.T) {
	t.Helper()
	orig := *globalConfig
	t.Cleanup(func() {
		*globalConfig = orig
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error writing config: %s", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	resetConfig(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Profile != "mainnet" {
		t.Fatalf("did not get expected profile: got %s, want mainnet", cfg.Profile)
	}
	if cfg.LargePrimePolicy() != pow.LargePrimeReject {
		t.Fatalf("did not get expected policy: got %s, want reject", cfg.LargePrimePolicy())
	}
	if cfg.Verifier.MaxBitLength != pow.MaxBitLength {
		t.Fatalf("did not get expected max bit length: got %d", cfg.Verifier.MaxBitLength)
	}
}

func TestLoadProfileFromEnv(t *testing.T) {
	resetConfig(t)
	t.Setenv("PROFILE", "regtest")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if GetProfile().Network != "regtest" {
		t.Fatalf("did not get expected profile: got %s, want regtest", GetProfile().Network)
	}
	if cfg.LargePrimePolicy() != pow.LargePrimeDeterministic {
		t.Fatalf("did not get expected policy: got %s, want deterministic", cfg.LargePrimePolicy())
	}
	if cfg.Verifier.MaxBitLength != 64 {
		t.Fatalf("did not get expected max bit length: got %d, want 64", cfg.Verifier.MaxBitLength)
	}
}

func TestLoadFile(t *testing.T) {
	resetConfig(t)
	path := writeConfigFile(t, `
profile: regtest
logging:
  level: debug
verifier:
  workers: 2
  largePrimeTest: reject
  maxBitLength: 128
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("did not get expected log level: got %s, want debug", cfg.Logging.Level)
	}
	if cfg.Verifier.Workers != 2 {
		t.Fatalf("did not get expected workers: got %d, want 2", cfg.Verifier.Workers)
	}
	// Non-consensus profiles accept any policy
	if cfg.LargePrimePolicy() != pow.LargePrimeReject {
		t.Fatalf("did not get expected policy: got %s, want reject", cfg.LargePrimePolicy())
	}
	if cfg.Verifier.MaxBitLength != 128 {
		t.Fatalf("did not get expected max bit length: got %d, want 128", cfg.Verifier.MaxBitLength)
	}
}

func TestLoadErrors(t *testing.T) {
	testDefs := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown profile",
			content: "profile: devnet\n",
		},
		{
			name:    "conflicting policy",
			content: "profile: mainnet\nverifier:\n  largePrimeTest: deterministic\n",
		},
		{
			name:    "bad policy",
			content: "profile: regtest\nverifier:\n  largePrimeTest: aks\n",
		},
		{
			name:    "consensus bit length",
			content: "profile: mainnet\nverifier:\n  maxBitLength: 64\n",
		},
		{
			name:    "testnet bit length",
			content: "profile: testnet\nverifier:\n  maxBitLength: 511\n",
		},
		{
			name:    "bit length too large",
			content: "verifier:\n  maxBitLength: 1024\n",
		},
		{
			name:    "no workers",
			content: "verifier:\n  workers: 0\n",
		},
	}
	for _, td := range testDefs {
		t.Run(td.name, func(t *testing.T) {
			resetConfig(t)
			if _, err := Load(writeConfigFile(t, td.content)); err == nil {
				t.Fatalf("expected error, got none")
			}
		})
	}
}

func TestLoadConsensusMatchingSettings(t *testing.T) {
	resetConfig(t)
	// Restating the profile's own values is allowed
	path := writeConfigFile(t, "profile: mainnet\nverifier:\n  largePrimeTest: reject\n  maxBitLength: 512\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Verifier.MaxBitLength != pow.MaxBitLength {
		t.Fatalf("did not get expected max bit length: got %d, want %d", cfg.Verifier.MaxBitLength, pow.MaxBitLength)
	}
}

func TestGetAvailableProfiles(t *testing.T) {
	got := GetAvailableProfiles()
	want := []string{"mainnet", "regtest", "testnet"}
	if len(got) != len(want) {
		t.Fatalf("did not get expected profiles: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("did not get expected profiles: got %v, want %v", got, want)
		}
	}
}
