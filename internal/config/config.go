package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/classify-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	HuggingFace HuggingFaceConfig `yaml:"huggingface" mapstructure:"huggingface"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// HuggingFaceConfig configures the inference API client.
type HuggingFaceConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	BartModel    string `yaml:"bart_model" mapstructure:"bart_model"`
	DebertaModel string `yaml:"deberta_model" mapstructure:"deberta_model"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ResolveModel maps a model alias to a hub model ID. The aliases "bart"
// and "deberta" select the configured checkpoints; a value containing a
// slash is taken as a literal model ID.
func (h HuggingFaceConfig) ResolveModel(alias string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(alias)) {
	case "bart":
		return h.BartModel, nil
	case "deberta":
		return h.DebertaModel, nil
	}
	if strings.Contains(alias, "/") {
		return alias, nil
	}
	return "", eris.Errorf("config: unknown model %q (want bart, deberta, or a full model ID)", alias)
}

// ExtractConfig configures article text extraction.
type ExtractConfig struct {
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent          string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes       int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// PipelineConfig configures row processing.
type PipelineConfig struct {
	NormalizeHeaders bool `yaml:"normalize_headers" mapstructure:"normalize_headers"`
}

// ServerConfig configures the web UI server.
type ServerConfig struct {
	Port              int    `yaml:"port" mapstructure:"port"`
	MaxUploadMB       int64  `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	MaxConcurrentRuns int64  `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
	DefaultCategories string `yaml:"default_categories" mapstructure:"default_categories"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "console"
}

// Load reads configuration from config.yaml (optional) and environment
// variables prefixed with CLASSIFY_.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CLASSIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one, even if empty: viper only surfaces
	// env-only values through Unmarshal for keys it already knows about.
	v.SetDefault("huggingface.key", "")
	v.SetDefault("huggingface.base_url", "https://api-inference.huggingface.co")
	v.SetDefault("huggingface.bart_model", "facebook/bart-large-mnli")
	v.SetDefault("huggingface.deberta_model", "MoritzLaurer/DeBERTa-v3-base-mnli-fever-anli")
	v.SetDefault("huggingface.timeout_secs", 60)

	v.SetDefault("extract.timeout_secs", 10)
	v.SetDefault("extract.user_agent", "Mozilla/5.0 (compatible; classify-cli/1.0)")
	v.SetDefault("extract.max_body_bytes", 512*1024)
	v.SetDefault("extract.insecure_skip_verify", false)

	v.SetDefault("pipeline.normalize_headers", true)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.max_concurrent_runs", 1)
	v.SetDefault("server.default_categories", model.DefaultCategories)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required for the given mode. Mode is "run"
// for one-shot classification and "serve" for the web UI.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.HuggingFace.TimeoutSecs <= 0 {
		problems = append(problems, "huggingface.timeout_secs must be > 0")
	}
	if c.Extract.TimeoutSecs <= 0 {
		problems = append(problems, "extract.timeout_secs must be > 0")
	}
	if c.Extract.MaxBodyBytes <= 0 {
		problems = append(problems, "extract.max_body_bytes must be > 0")
	}

	switch mode {
	case "run":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.MaxUploadMB <= 0 {
			problems = append(problems, "server.max_upload_mb must be > 0")
		}
		if c.Server.MaxConcurrentRuns < 1 || c.Server.MaxConcurrentRuns > 64 {
			problems = append(problems, "server.max_concurrent_runs must be between 1 and 64")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
