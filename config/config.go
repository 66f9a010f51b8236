// Package config loads the refresh tool's configuration: a YAML file for
// addresses, directories, and timeouts, with ${VAR} environment resolution
// for string values, and the account credentials strictly from the
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/toanujgoel/Naukri-Profile-Refresh/engine"
)

const (
	EnvEmail    = "NAUKRI_EMAIL"
	EnvPassword = "NAUKRI_PASSWORD"
)

// Package-level validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// url_format validates URL structure
	validate.RegisterValidation("url_format", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && u.Scheme != "" && u.Host != ""
	})
}

type Config struct {
	Target   TargetConfig   `yaml:"target"`
	Resume   ResumeConfig   `yaml:"resume"`
	Browser  BrowserConfig  `yaml:"browser"`
	Server   ServerConfig   `yaml:"server"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

type TargetConfig struct {
	LoginURL   string `yaml:"login_url" default:"https://www.naukri.com/nlogin/login" validate:"required,url_format"`
	ProfileURL string `yaml:"profile_url" default:"https://www.naukri.com/mnjuser/profile" validate:"required,url_format"`
}

type ResumeConfig struct {
	Dir        string   `yaml:"dir" default:"resume" validate:"required"`
	Extensions []string `yaml:"extensions" default:"[\".pdf\",\".doc\",\".docx\",\".rtf\"]" validate:"min=1"`
}

type BrowserConfig struct {
	Headless      bool   `yaml:"headless" default:"true"`
	ScreenshotDir string `yaml:"screenshot_dir" default:"diagnostics" validate:"required"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080" validate:"required"`
}

type TimeoutsConfig struct {
	Navigation    time.Duration `yaml:"navigation" default:"30s" validate:"gte=1s"`
	Step          time.Duration `yaml:"step" default:"15s" validate:"gte=1s"`
	Postcondition time.Duration `yaml:"postcondition" default:"10s" validate:"gte=1s"`
	Preflight     time.Duration `yaml:"preflight" default:"5s" validate:"gte=1s"`
}

// Load builds the configuration: struct-tag defaults first, then the YAML
// file's values (with environment references resolved) merged on top, then
// validation of the final result. An empty path yields the pure defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if path != "" {
		raw, err := readValues(path)
		if err != nil {
			return nil, err
		}
		if err := mapToStruct(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to apply config values: %w", err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

func readValues(path string) (map[string]any, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(yamlFile, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshalling YAML: %w", err)
	}

	resolved, err := resolveEnvValues(raw)
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]any), nil
}

// Credentials reads the two mandatory account secrets from the environment.
// Absence of either is a precondition failure distinct from any in-run
// error; it aborts before a single step is attempted.
func Credentials() (engine.Credentials, *engine.RunError) {
	email, emailSet := os.LookupEnv(EnvEmail)
	password, passwordSet := os.LookupEnv(EnvPassword)

	switch {
	case !emailSet && !passwordSet:
		return engine.Credentials{}, engine.Preconditionf(nil,
			"credentials not configured: set %s and %s", EnvEmail, EnvPassword)
	case !emailSet:
		return engine.Credentials{}, engine.Preconditionf(nil,
			"credential missing: set %s", EnvEmail)
	case !passwordSet:
		return engine.Credentials{}, engine.Preconditionf(nil,
			"credential missing: set %s", EnvPassword)
	}

	return engine.Credentials{Email: email, Password: password}, nil
}
