package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Version is the workoutflat release.
const Version = "0.1.0"

const envPrefix = "WORKOUTFLAT_"

// Config holds all workoutflat configuration.
type Config struct {
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`
	Engine          EngineConfig  `yaml:"engine"`
	Output          OutputConfig  `yaml:"output"`
}

// EngineConfig holds flattening engine and pipeline settings.
type EngineConfig struct {
	TaxonomyDir  string        `yaml:"taxonomy_dir" validate:"omitempty,dir"` // empty uses the built-in catalogs
	Workers      int           `yaml:"workers" validate:"min=0"`              // 0 means GOMAXPROCS
	BatchSize    int           `yaml:"batch_size" validate:"min=0"`
	FlushWindow  time.Duration `yaml:"flush_window" validate:"min=0"`
	MemoCapacity int           `yaml:"memo_capacity" validate:"min=0"` // 0 disables the memo
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Format    string `yaml:"format" validate:"oneof=stdout file"`
	Path      string `yaml:"path" validate:"required_if=Format file"`
	Verbosity string `yaml:"verbosity" validate:"oneof=full compact"`
	Pretty    bool   `yaml:"pretty"`
	MaxSize   int64  `yaml:"max_size" validate:"min=0"`
	Metrics   bool   `yaml:"metrics"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		Engine: EngineConfig{
			BatchSize:    256,
			FlushWindow:  200 * time.Millisecond,
			MemoCapacity: 1024,
		},
		Output: OutputConfig{
			Format:    "stdout",
			Verbosity: "full",
		},
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile reads a YAML configuration file over the defaults. Environment
// variables still take precedence over values from the file.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.ShutdownTimeout = getenvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.Engine.TaxonomyDir = getenv("TAXONOMY_DIR", cfg.Engine.TaxonomyDir)
	cfg.Engine.Workers = getenvInt("WORKERS", cfg.Engine.Workers)
	cfg.Engine.BatchSize = getenvInt("BATCH_SIZE", cfg.Engine.BatchSize)
	cfg.Engine.FlushWindow = getenvDuration("FLUSH_WINDOW", cfg.Engine.FlushWindow)
	cfg.Engine.MemoCapacity = getenvInt("MEMO_CAPACITY", cfg.Engine.MemoCapacity)

	cfg.Output.Format = getenv("OUTPUT", cfg.Output.Format)
	cfg.Output.Path = getenv("OUTPUT_PATH", cfg.Output.Path)
	cfg.Output.Verbosity = getenv("VERBOSITY", cfg.Output.Verbosity)
	cfg.Output.Pretty = getenvBool("OUTPUT_PRETTY", cfg.Output.Pretty)
	cfg.Output.MaxSize = int64(getenvInt("OUTPUT_MAX_SIZE", int(cfg.Output.MaxSize)))
	cfg.Output.Metrics = getenvBool("METRICS", cfg.Output.Metrics)

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	cfg.Output.Verbosity = strings.ToLower(cfg.Output.Verbosity)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks all config fields and returns every problem found,
// joined into one error.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fieldError(fe))
	}
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	// Drop the root struct name: "Config.output.verbosity" -> "output.verbosity".
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	env := envPrefix + strings.ToUpper(strings.ReplaceAll(strings.TrimPrefix(field, "engine."), ".", "_"))

	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("config: %s %q must be one of [%s]", field, fe.Value(), fe.Param())
	case "min":
		return fmt.Errorf("config: %s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "required_if":
		return fmt.Errorf("config: %s is required when output format is %q (set %s)", field, "file", env)
	case "dir":
		return fmt.Errorf("config: %s %q is not a directory", field, fe.Value())
	default:
		return fmt.Errorf("config: %s failed %q validation", field, fe.Tag())
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
