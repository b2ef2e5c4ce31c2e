// Copyright 2023 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/blinklabs-io/fpowd/pow"
)

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Debug    DebugConfig    `yaml:"debug"`
	Api      ApiConfig      `yaml:"api"`
	State    StateConfig    `yaml:"state"`
	Verifier VerifierConfig `yaml:"verifier"`
	Profile  string         `yaml:"profile" envconfig:"PROFILE"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"     envconfig:"LOGGING_LEVEL"`
	RejectLog bool   `yaml:"rejectLog" envconfig:"LOGGING_REJECT_LOG"`
	AccessLog bool   `yaml:"accessLog" envconfig:"LOGGING_ACCESS_LOG"`
}

type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"DEBUG_PORT"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"address" envconfig:"METRICS_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"METRICS_LISTEN_PORT"`
}

type ApiConfig struct {
	ListenAddress string `yaml:"address" envconfig:"API_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"API_LISTEN_PORT"`
}

type StateConfig struct {
	Directory string `yaml:"dir" envconfig:"STATE_DIR"`
	// Disables the verdict ledger, every submission is verified from scratch
	Disabled bool `yaml:"disabled" envconfig:"STATE_DISABLED"`
}

type VerifierConfig struct {
	Workers   uint `yaml:"workers"   envconfig:"VERIFIER_WORKERS"`
	QueueSize uint `yaml:"queueSize" envconfig:"VERIFIER_QUEUE_SIZE"`
	// "reject" or "deterministic", defaults to the profile's policy
	LargePrimeTest string `yaml:"largePrimeTest" envconfig:"VERIFIER_LARGE_PRIME_TEST"`
	// Defaults to the profile's limit
	MaxBitLength uint32 `yaml:"maxBitLength" envconfig:"VERIFIER_MAX_BIT_LENGTH"`
}

// Singleton config instance with default values
var globalConfig = &Config{
	Logging: LoggingConfig{
		Level:     "info",
		RejectLog: true,
	},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Metrics: MetricsConfig{
		ListenAddress: "",
		ListenPort:    8081,
	},
	Api: ApiConfig{
		ListenAddress: "",
		ListenPort:    8080,
	},
	State: StateConfig{
		Directory: "./.state",
	},
	Verifier: VerifierConfig{
		Workers:   4,
		QueueSize: 64,
	},
	Profile: "mainnet",
}

func Load(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Load config values from environment variables
	// We use "dummy" as the app name here to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	err := envconfig.Process("dummy", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := globalConfig.applyProfile(); err != nil {
		return nil, err
	}
	if globalConfig.Verifier.Workers == 0 {
		return nil, errors.New("verifier workers must be at least 1")
	}
	return globalConfig, nil
}

// applyProfile fills verifier settings left unset from the selected network
// profile and rejects explicit settings that contradict it
func (c *Config) applyProfile() error {
	profile, ok := Profiles[c.Profile]
	if !ok {
		return fmt.Errorf(
			"unknown profile: %s: available profiles: %s",
			c.Profile,
			strings.Join(GetAvailableProfiles(), ","),
		)
	}
	if c.Verifier.LargePrimeTest == "" {
		c.Verifier.LargePrimeTest = profile.LargePrimeTest.String()
	} else {
		policy, err := pow.ParseLargePrimePolicy(c.Verifier.LargePrimeTest)
		if err != nil {
			return err
		}
		if profile.Consensus && policy != profile.LargePrimeTest {
			return fmt.Errorf(
				"conflicting large prime tests configured: %s and %s (profile %s)",
				policy,
				profile.LargePrimeTest,
				c.Profile,
			)
		}
	}
	switch {
	case c.Verifier.MaxBitLength == 0:
		c.Verifier.MaxBitLength = profile.MaxBitLength
	case c.Verifier.MaxBitLength > pow.MaxBitLength:
		return fmt.Errorf(
			"max bit length %d exceeds %d",
			c.Verifier.MaxBitLength,
			pow.MaxBitLength,
		)
	case profile.Consensus && c.Verifier.MaxBitLength != profile.MaxBitLength:
		return fmt.Errorf(
			"conflicting max bit lengths configured: %d and %d (profile %s)",
			c.Verifier.MaxBitLength,
			profile.MaxBitLength,
			c.Profile,
		)
	}
	return nil
}

// LargePrimePolicy returns the parsed verifier policy
func (c *Config) LargePrimePolicy() pow.LargePrimePolicy {
	// Validated in Load
	policy, _ := pow.ParseLargePrimePolicy(c.Verifier.LargePrimeTest)
	return policy
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}
