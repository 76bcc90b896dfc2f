package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/talepnlp/internal/engine/loader"
)

// Config holds all talepnlp configuration.
type Config struct {
	Models   ModelsConfig `yaml:"models"`
	Engine   EngineConfig `yaml:"engine"`
	Output   OutputConfig `yaml:"output"`
	Server   ServerConfig `yaml:"server"`
	LogLevel string       `yaml:"log_level"`
}

// ModelsConfig locates the model artifacts. Relative artifact paths are
// resolved against Dir.
type ModelsConfig struct {
	Dir        string `yaml:"dir"`
	Lexicon    string `yaml:"lexicon"`
	Topic      string `yaml:"topic"`
	Severity   string `yaml:"severity"`
	Multilabel string `yaml:"multilabel"`
	Sentiment  string `yaml:"sentiment"`
	ORTLibPath string `yaml:"ort_lib_path"`
	Threads    int    `yaml:"threads"`
}

// EngineConfig holds aggregator settings.
type EngineConfig struct {
	Parallel  bool `yaml:"parallel"`
	CacheSize int  `yaml:"cache_size"` // records remembered by input text, 0 = off
}

// Sink kinds.
const (
	SinkCSV    = "csv"
	SinkSQLite = "sqlite"
	SinkBoth   = "both" // csv and sqlite
	SinkNone   = "none"
)

// OutputConfig holds display and log settings.
type OutputConfig struct {
	Sink       string `yaml:"sink"`    // csv | sqlite | both | none
	Path       string `yaml:"path"`    // CSV log
	SQLitePath string `yaml:"sqlite"`  // SQLite database
	Display    string `yaml:"display"` // "text", "json", or "none"
	Pretty     bool   `yaml:"pretty"`
	MaxSize    int64  `yaml:"max_size"` // CSV rotation threshold in bytes, 0 = never
}

// ServerConfig holds serve-mode settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	QueueSize int    `yaml:"queue_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Models: ModelsConfig{
			Dir:        "data/models",
			Lexicon:    loader.LexiconFile,
			Topic:      loader.TopicFile,
			Severity:   loader.SeverityFile,
			Multilabel: loader.MultilabelFile,
			Sentiment:  loader.SentimentDir,
		},
		Output: OutputConfig{
			Sink:       SinkCSV,
			Path:       "data/test/test.csv",
			SQLitePath: "data/test/predictions.db",
			Display:    "text",
		},
		Server: ServerConfig{
			Addr:      ":8080",
			QueueSize: 256,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $TALEP_CONFIG when path is empty), then environment variables.
// Environment variables win.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TALEP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	m := &cfg.Models
	m.Dir = getenv("TALEP_MODEL_DIR", m.Dir)
	m.Lexicon = getenv("TALEP_LEXICON", m.Lexicon)
	m.Topic = getenv("TALEP_TOPIC_MODEL", m.Topic)
	m.Severity = getenv("TALEP_SEVERITY_MODEL", m.Severity)
	m.Multilabel = getenv("TALEP_MULTILABEL_MODEL", m.Multilabel)
	m.Sentiment = getenv("TALEP_SENTIMENT_DIR", m.Sentiment)
	m.ORTLibPath = getenv("TALEP_ORT_LIB", m.ORTLibPath)
	m.Threads = getenvInt("TALEP_ORT_THREADS", m.Threads)

	cfg.Engine.Parallel = getenvBool("TALEP_PARALLEL", cfg.Engine.Parallel)
	cfg.Engine.CacheSize = getenvInt("TALEP_CACHE_SIZE", cfg.Engine.CacheSize)

	o := &cfg.Output
	o.Sink = getenv("TALEP_SINK", o.Sink)
	o.Path = getenv("TALEP_LOG_FILE", o.Path)
	o.SQLitePath = getenv("TALEP_SQLITE_PATH", o.SQLitePath)
	o.Display = getenv("TALEP_DISPLAY", o.Display)
	o.Pretty = getenvBool("TALEP_OUTPUT_PRETTY", o.Pretty)
	o.MaxSize = int64(getenvInt("TALEP_LOG_MAX_SIZE", int(o.MaxSize)))

	cfg.Server.Addr = getenv("TALEP_SERVE_ADDR", cfg.Server.Addr)
	cfg.Server.QueueSize = getenvInt("TALEP_QUEUE_SIZE", cfg.Server.QueueSize)
	cfg.LogLevel = getenv("TALEP_LOG_LEVEL", cfg.LogLevel)
}

// Validate checks for settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	switch c.Output.Sink {
	case SinkCSV:
		if c.Output.Path == "" {
			errs = append(errs, errors.New("output.path is required for the csv sink"))
		}
	case SinkSQLite:
		if c.Output.SQLitePath == "" {
			errs = append(errs, errors.New("output.sqlite is required for the sqlite sink"))
		}
	case SinkBoth:
		if c.Output.Path == "" || c.Output.SQLitePath == "" {
			errs = append(errs, errors.New("output.path and output.sqlite are required for the both sink"))
		}
	case SinkNone:
	default:
		errs = append(errs, fmt.Errorf("unknown output.sink %q", c.Output.Sink))
	}
	switch c.Output.Display {
	case "text", "json", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown output.display %q", c.Output.Display))
	}
	if c.Output.MaxSize < 0 {
		errs = append(errs, errors.New("output.max_size must be >= 0"))
	}
	if c.Engine.CacheSize < 0 {
		errs = append(errs, errors.New("engine.cache_size must be >= 0"))
	}
	if c.Models.Threads < 0 {
		errs = append(errs, errors.New("models.threads must be >= 0"))
	}
	if c.Server.QueueSize <= 0 {
		errs = append(errs, errors.New("server.queue_size must be > 0"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Paths resolves the artifact locations for the loader.
func (m ModelsConfig) Paths() loader.Paths {
	return loader.Paths{
		Lexicon:    m.resolve(m.Lexicon),
		Topic:      m.resolve(m.Topic),
		Severity:   m.resolve(m.Severity),
		Multilabel: m.resolve(m.Multilabel),
		Sentiment:  m.resolve(m.Sentiment),
		ORTLibPath: m.ORTLibPath,
		Threads:    m.Threads,
	}
}

func (m ModelsConfig) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
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
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
