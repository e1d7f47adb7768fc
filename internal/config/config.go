package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Duolingo struct {
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		ItemName    string `yaml:"item_name"`
		SessionFile string `yaml:"session_file"`
	} `yaml:"duolingo"`
	Thresholds struct {
		PurchaseCost int `yaml:"purchase_cost"`
		LowBalance   int `yaml:"low_balance"`
	} `yaml:"thresholds"`
	HTTP struct {
		TimeoutSeconds    int `yaml:"timeout_seconds"`
		MaxRetries        int `yaml:"max_retries"`
		RetryDelaySeconds int `yaml:"retry_delay_seconds"`
	} `yaml:"http"`
	SMTP struct {
		Host      string `yaml:"host"`
		Port      int    `yaml:"port"`
		Username  string `yaml:"username"`
		Password  string `yaml:"password"`
		Recipient string `yaml:"recipient"`
	} `yaml:"smtp"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DUOLINGO_USERNAME"); v != "" {
		cfg.Duolingo.Username = v
	}
	if v := os.Getenv("DUOLINGO_PASSWORD"); v != "" {
		cfg.Duolingo.Password = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = p
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("NOTIFICATION_EMAIL"); v != "" {
		cfg.SMTP.Recipient = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("LOW_GEMS_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Thresholds.LowBalance = n
		}
	}
	if v := os.Getenv("MIN_GEMS_REQUIRED"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Thresholds.PurchaseCost = n
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}

	// Defaults
	if cfg.Duolingo.ItemName == "" {
		cfg.Duolingo.ItemName = "streak_freeze"
	}
	if cfg.Thresholds.PurchaseCost == 0 {
		cfg.Thresholds.PurchaseCost = 200
	}
	if cfg.Thresholds.LowBalance == 0 {
		cfg.Thresholds.LowBalance = 600
	}
	if cfg.HTTP.TimeoutSeconds == 0 {
		cfg.HTTP.TimeoutSeconds = 30
	}
	if cfg.HTTP.MaxRetries == 0 {
		cfg.HTTP.MaxRetries = 3
	}
	if cfg.HTTP.RetryDelaySeconds == 0 {
		cfg.HTTP.RetryDelaySeconds = 5
	}
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = "smtp.gmail.com"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 6 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Duolingo.Username == "" {
		return fmt.Errorf("duolingo.username is required")
	}
	if c.Duolingo.Password == "" {
		return fmt.Errorf("duolingo.password is required")
	}
	if c.Thresholds.PurchaseCost <= 0 {
		return fmt.Errorf("thresholds.purchase_cost must be positive")
	}
	if c.Thresholds.LowBalance < c.Thresholds.PurchaseCost {
		return fmt.Errorf("thresholds.low_balance must be at least the purchase cost")
	}
	return nil
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RetryDelay returns the fixed backoff between retry attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.HTTP.RetryDelaySeconds) * time.Second
}

// EmailConfigured reports whether the SMTP sink has enough settings to send.
func (c *Config) EmailConfigured() bool {
	return c.SMTP.Username != "" && c.SMTP.Recipient != ""
}

// TelegramConfigured reports whether the Telegram sink is set up.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
