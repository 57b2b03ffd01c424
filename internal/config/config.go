package config

import (
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Camunda struct {
		BaseURL        string `mapstructure:"base_url"`
		TenantID       string `mapstructure:"tenant_id"`
		MaxTasks       int    `mapstructure:"max_tasks"`
		LockDurationMs int    `mapstructure:"lock_duration_ms"`
		LongPollMs     int    `mapstructure:"long_poll_ms"`
		TimeoutSec     int    `mapstructure:"timeout_sec"`
	} `mapstructure:"camunda"`

	Webhooks struct {
		MatchingURL string `mapstructure:"matching_url"`
		CartsURL    string `mapstructure:"carts_url"`
		TimeoutSec  int    `mapstructure:"timeout_sec"`
	} `mapstructure:"webhooks"`

	Notify struct {
		Mode     string `mapstructure:"mode"` // relay | telegram | off
		RelayURL string `mapstructure:"relay_url"`
		Telegram struct {
			Token       string `mapstructure:"token"`
			AdminChatID int64  `mapstructure:"admin_chat_id"`
		} `mapstructure:"telegram"`
	} `mapstructure:"notify"`
}

func Load(path string) (Config, error) {
	// .env (если есть) подхватываем до viper, чтобы ENV-переопределения работали
	_ = gotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("camunda.max_tasks", 1)
	v.SetDefault("camunda.lock_duration_ms", 30000)
	v.SetDefault("camunda.long_poll_ms", 20000)
	v.SetDefault("camunda.timeout_sec", 35)
	v.SetDefault("webhooks.timeout_sec", 30)
	v.SetDefault("notify.mode", "relay")

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
