// Package config holds the board settings for the clock and power sequencer.
// Defaults are compiled in; a YAML file can override any of them.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Jon-Bright/mcom03clk/ucg"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed mcom03.yaml
var rawDefaults []byte

// Subsystems names the keys accepted under sync.
var Subsystems = []string{"service", "top", "cpu", "lsp0", "lsp1", "hsp", "ddr"}

// Domains names the power domains accepted under ppolicy.settle.
var Domains = []string{"cpu", "a53sys", "core0", "sdr", "lsp0", "lsp1", "risc0", "i2s"}

// BootSteps names the steps accepted under boot, in the order a full XIP boot runs them.
var BootSteps = []string{"top-clkgate", "wdt", "service", "top", "lsp0", "lsp1", "hsp-refclk", "i2s-rstn", "debug-disable", "cpu", "arm0"}

var ErrInvalidConfig = errors.New("invalid config")

type PPolicy struct {
	TimeoutUS uint32   `yaml:"timeout_us"`
	SettleUS  uint32   `yaml:"settle_us"`
	Settle    []string `yaml:"settle"`
}

type Poll struct {
	IntervalUS    uint32 `yaml:"interval_us"`
	MaxIntervalUS uint32 `yaml:"max_interval_us"`
}

type Config struct {
	MemFile   string            `yaml:"mem_file"`
	XTIHz     uint32            `yaml:"xti_hz"`
	CounterHz uint32            `yaml:"counter_hz"`
	Retries   uint32            `yaml:"retries"`
	PPolicy   PPolicy           `yaml:"ppolicy"`
	Poll      Poll              `yaml:"poll"`
	Sync      map[string]string `yaml:"sync"`
	TFAEntry  uint64            `yaml:"tfa_entry"`
	Boot      []string          `yaml:"boot"`
}

func decode(c *Config, b []byte) error {
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	err := d.Decode(c)
	if errors.Is(err, io.EOF) {
		// Empty document
		return nil
	}
	return err
}

// Default returns the compiled in configuration.
func Default() *Config {
	c := &Config{}
	err := decode(c, rawDefaults)
	if err != nil {
		panic(fmt.Sprintf("embedded config broken: %v", err))
	}
	return c
}

// Load returns the defaults overridden by the file at path. An empty path gives the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("couldn't read config: %v", err)
		}
		err = decode(c, b)
		if err != nil {
			return nil, fmt.Errorf("couldn't parse %s: %v", path, err)
		}
	}
	err := c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every name and frequency in c.
func (c *Config) Validate() error {
	if c.XTIHz == 0 {
		return fmt.Errorf("xti_hz must be set: %w", ErrInvalidConfig)
	}
	if c.CounterHz == 0 {
		return fmt.Errorf("counter_hz must be set: %w", ErrInvalidConfig)
	}
	modes := ucg.SyncModeNames()
	for subsys, mode := range c.Sync {
		if !slices.Contains(Subsystems, subsys) {
			return fmt.Errorf("unknown sync subsystem %q: %w", subsys, ErrInvalidConfig)
		}
		if !slices.Contains(modes, mode) {
			return fmt.Errorf("sync mode %q for %s isn't one of %v: %w", mode, subsys, modes, ErrInvalidConfig)
		}
	}
	for _, d := range c.PPolicy.Settle {
		if !slices.Contains(Domains, d) {
			return fmt.Errorf("unknown settle domain %q: %w", d, ErrInvalidConfig)
		}
	}
	for _, s := range c.Boot {
		if !slices.Contains(BootSteps, s) {
			return fmt.Errorf("unknown boot step %q: %w", s, ErrInvalidConfig)
		}
	}
	return nil
}

// SyncMode returns the sync variant configured for subsys, SyncMask if there's none.
func (c *Config) SyncMode(subsys string) ucg.SyncMode {
	m, err := ucg.ParseSyncMode(c.Sync[subsys])
	if err != nil {
		return ucg.SyncMask
	}
	return m
}

// Settles reports whether domain should get the settle delay after a policy change.
func (c *Config) Settles(domain string) bool {
	return slices.Contains(c.PPolicy.Settle, domain)
}
