package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"sigs.k8s.io/yaml"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// duration accepts "15s"-style strings in the config file.
type duration struct{ time.Duration }

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "duration must be a string like \"15s\"")
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

type Config struct {
	Addr         string   `json:"addr"`
	LogLevel     string   `json:"log_level"`
	MaxBodyBytes int64    `json:"max_body_bytes"`
	ReadTimeout  duration `json:"read_timeout"`
	WriteTimeout duration `json:"write_timeout"`
	IdleTimeout  duration `json:"idle_timeout"`
}

func defaultConfig() Config {
	return Config{
		Addr:         ":8080",
		LogLevel:     "info",
		MaxBodyBytes: maxBodyBytes,
		ReadTimeout:  duration{15 * time.Second},
		WriteTimeout: duration{15 * time.Second},
		IdleTimeout:  duration{60 * time.Second},
	}
}

// loadConfig reads a YAML config on top of the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs error
	if c.Addr == "" {
		errs = multierr.Append(errs, errors.New("addr must not be empty"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.MaxBodyBytes <= 0 {
		errs = multierr.Append(errs, errors.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes))
	}
	for _, t := range []struct {
		name string
		d    duration
	}{
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"idle_timeout", c.IdleTimeout},
	} {
		if t.d.Duration <= 0 {
			errs = multierr.Append(errs, errors.Errorf("%s must be positive", t.name))
		}
	}
	return errs
}
