package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/railcheck/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Horizon:     Horizon{Inclination: 0.01, SkipUncalibrated: true},
		Output:      Output{JSON: true},
		Concurrency: 4,
		Checks:      DefaultChecks,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "railcheck.yaml")
	src := `
horizon:
  inclination: 0.02
  tolerance_percent: 5
output:
  csv: true
concurrency: 2
checks: [sensor_type, sensor_names]
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Horizon:     Horizon{Inclination: 0.02, TolerancePercent: 5, SkipUncalibrated: true},
		Output:      Output{JSON: true, CSV: true},
		Concurrency: 2,
		Checks:      []string{"sensor_type", "sensor_names"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("RAILCHECK_CONCURRENCY", "8")
	t.Setenv("RAILCHECK_HORIZON_SKIP_UNCALIBRATED", "false")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.Horizon.SkipUncalibrated {
		t.Error("SkipUncalibrated = true, want false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.IsConfiguration(err) {
		t.Errorf("err = %v, want configuration error", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Concurrency: 1, Checks: []string{"horizon"}}
	}
	cases := map[string]func(*Config){
		"zero concurrency":   func(c *Config) { c.Concurrency = 0 },
		"negative tolerance": func(c *Config) { c.Horizon.TolerancePercent = -1 },
		"full tolerance":     func(c *Config) { c.Horizon.TolerancePercent = 100 },
		"no checks":          func(c *Config) { c.Checks = nil },
	}
	for name, mutate := range cases {
		c := base()
		mutate(&c)
		if err := c.Validate(); !errors.IsConfiguration(err) {
			t.Errorf("%s: err = %v, want configuration error", name, err)
		}
	}
	c := base()
	if err := c.Validate(); err != nil {
		t.Errorf("valid config: %v", err)
	}
}
