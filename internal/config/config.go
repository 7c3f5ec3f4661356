package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the upstream test server the tool was written for.
const DefaultBaseURL = "https://thas.mohw.gov.tw/v/r4/fhir"

type Config struct {
	Env                string `mapstructure:"ENV"`
	BaseURL            string `mapstructure:"FHIR_BASE_URL"`
	FixtureDir         string `mapstructure:"FIXTURE_DIR"`
	PatientFile        string `mapstructure:"PATIENT_FILE"`
	ObservationsFile   string `mapstructure:"OBSERVATIONS_FILE"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	LaunchURL          string `mapstructure:"LAUNCH_URL"`
	StubPort           string `mapstructure:"STUB_PORT"`
	NoColor            bool   `mapstructure:"NO_COLOR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("FHIR_BASE_URL", DefaultBaseURL)
	v.SetDefault("FIXTURE_DIR", "./test-data")
	v.SetDefault("PATIENT_FILE", "patient-simple.json")
	v.SetDefault("OBSERVATIONS_FILE", "observations-simple.json")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("LAUNCH_URL", "https://tw-vital-signs-app.vercel.app/launch.html")
	v.SetDefault("STUB_PORT", "8090")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("FHIR_BASE_URL")
	v.BindEnv("FIXTURE_DIR")
	v.BindEnv("PATIENT_FILE")
	v.BindEnv("OBSERVATIONS_FILE")
	v.BindEnv("HTTP_TIMEOUT_SECONDS")
	v.BindEnv("LAUNCH_URL")
	v.BindEnv("STUB_PORT")
	v.BindEnv("NO_COLOR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HTTPTimeout returns the per-request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Validate checks that the configuration is usable: a well-formed http(s)
// base URL, a fixture directory, and a positive timeout.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("FHIR_BASE_URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("FHIR_BASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("FHIR_BASE_URL scheme must be http or https, got %q", u.Scheme)
	}
	if c.FixtureDir == "" {
		return fmt.Errorf("FIXTURE_DIR is required")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTPTimeoutSeconds)
	}
	return nil
}

// PatientPath returns the full path of the patient fixture.
func (c *Config) PatientPath() string {
	return filepath.Join(c.FixtureDir, c.PatientFile)
}

// ObservationsPath returns the full path of the observations fixture.
func (c *Config) ObservationsPath() string {
	return filepath.Join(c.FixtureDir, c.ObservationsFile)
}
