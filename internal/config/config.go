// Package config loads server configuration from an optional YAML file and
// the environment. Precedence: environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	pdfmailer "github.com/alnah/go-pdfmailer"
	"github.com/alnah/go-pdfmailer/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// DefaultPort matches the original deployment default.
const DefaultPort = 5001

// Config holds all configuration for the server.
type Config struct {
	Server    Server              `yaml:"server"`
	Mongo     Mongo               `yaml:"mongo"`
	Mail      pdfmailer.SMTPConfig `yaml:"mail"`
	Render    Render              `yaml:"render"`
	Templates Templates           `yaml:"templates"`
	CORS      CORS                `yaml:"cors"`
}

// Server defines the HTTP listener options.
type Server struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
}

// Addr returns the listen address in host:port form.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Mongo defines submission persistence options. An empty URI disables
// persistence entirely; it is not an error.
type Mongo struct {
	URI      string `yaml:"uri" env:"MONGO_URI"`
	Database string `yaml:"database" env:"MONGO_DB"`
}

// Render defines PDF rendering options.
type Render struct {
	Timeout time.Duration `yaml:"timeout" env:"RENDER_TIMEOUT"`
	Workers int           `yaml:"workers" env:"RENDER_WORKERS"` // 0 = auto-size from CPU count
}

// Templates defines template loading options.
type Templates struct {
	Dir string `yaml:"dir" env:"TEMPLATES_DIR"` // empty = embedded defaults
}

// CORS defines cross-origin options for the submit endpoint.
type CORS struct {
	AllowedOrigins []string `yaml:"allowedOrigins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Default returns the configuration used when neither file nor environment
// overrides a value.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute, // a slow render must not sever the response
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: Mongo{
			Database: "pdfmailer",
		},
		Mail: pdfmailer.SMTPConfig{
			Port:    587,
			TLSMode: "starttls",
		},
		Render: Render{
			Timeout: 30 * time.Second,
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file at path (when non-empty), overlaid by environment variables.
// The file is parsed strictly so unknown keys fail loudly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
		if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	return cfg, nil
}
