package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Doubao    DoubaoConfig    `mapstructure:"doubao"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Focus     FocusConfig     `mapstructure:"focus"`
	Events    EventsConfig    `mapstructure:"events"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type UploadsConfig struct {
	Dir string `mapstructure:"dir"`
}

// DoubaoConfig holds the Ark (Doubao) chat-completion credentials.
// All three values are optional; an empty key or model means the chat
// capability is unavailable and the assistant degrades to templates.
type DoubaoConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

func (c DoubaoConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.Model) != ""
}

type AssistantConfig struct {
	PlanTimeoutMS   int    `mapstructure:"plan_timeout_ms"`
	AnswerTimeoutMS int    `mapstructure:"answer_timeout_ms"`
	LLMWorkers      int    `mapstructure:"llm_workers"`
	ProfileFile     string `mapstructure:"profile"`
}

type FocusConfig struct {
	WindowDays    int `mapstructure:"window_days"`
	BackfillLimit int `mapstructure:"backfill_limit"`
}

type EventsConfig struct {
	NATSURL string `mapstructure:"nats_url"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ZJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDoubaoEnvAliases(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("doubao_configured", cfg.Doubao.Configured()),
	)

	return cfg, nil
}

// bindDoubaoEnvAliases keeps the Ark-native variable names working alongside
// the ZJ_DOUBAO_* forms. Environment always beats file values in viper.
func bindDoubaoEnvAliases(v *viper.Viper) {
	_ = v.BindEnv("doubao.api_key", "ZJ_DOUBAO_API_KEY", "ARK_API_KEY", "DOUBAO_API_KEY")
	_ = v.BindEnv("doubao.model", "ZJ_DOUBAO_MODEL", "ARK_MODEL", "DOUBAO_MODEL", "DOUBAO_ENDPOINT_ID")
	_ = v.BindEnv("doubao.base_url", "ZJ_DOUBAO_BASE_URL", "ARK_BASE_URL", "DOUBAO_BASE_URL")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "zhujian")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/zhujian.sqlite")
	v.SetDefault("http.addr", ":8000")
	v.SetDefault("uploads.dir", "data/uploads")
	v.SetDefault("assistant.plan_timeout_ms", 1800)
	v.SetDefault("assistant.answer_timeout_ms", 5500)
	v.SetDefault("assistant.llm_workers", 4)
	v.SetDefault("focus.window_days", 14)
	v.SetDefault("focus.backfill_limit", 200)
	v.SetDefault("events.nats_url", "")
}
