package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider  string `yaml:"provider" default:"yahoo" validate:"oneof=yahoo rest binance csv"`
		Symbol    string `yaml:"symbol" default:"MSTR" validate:"required"`
		Lookback  string `yaml:"lookback" default:"1mo" validate:"required"`
		Interval  string `yaml:"interval" default:"1d" validate:"required"`
		BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		File      string `yaml:"file"`
	} `yaml:"data_source"`
	RSI struct {
		Period    int     `yaml:"period" default:"14" validate:"gte=1"`
		Threshold float64 `yaml:"threshold" default:"70" validate:"gt=0,lte=100"`
	} `yaml:"rsi"`
	Notifier struct {
		Channel string `yaml:"channel" default:"email" validate:"oneof=email telegram log"`
		Email   struct {
			SMTPHost    string `yaml:"smtp_host" default:"smtp.gmail.com" validate:"required"`
			SMTPPort    int    `yaml:"smtp_port" default:"587" validate:"gte=1,lte=65535"`
			Username    string `yaml:"username"`
			From        string `yaml:"from" validate:"omitempty,email"`
			PasswordEnv string `yaml:"password_env" default:"SMTP_PASSWORD"`
			Recipient   string `yaml:"recipient" validate:"omitempty,email"`
		} `yaml:"email"`
		Telegram struct {
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
	} `yaml:"notifier"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Metrics struct {
		PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
		Job            string `yaml:"job" default:"rsi_monitor"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load applies defaults, then the YAML file, then environment variable
// overrides. Values set explicitly, including zero, win over defaults and are
// left to Validate. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"RSI_PROVIDER":       &c.DataSource.Provider,
		"RSI_TICKER":         &c.DataSource.Symbol,
		"RSI_LOOKBACK":       &c.DataSource.Lookback,
		"RSI_DATA_BASE_URL":  &c.DataSource.BaseURL,
		"RSI_DATA_API_KEY":   &c.DataSource.APIKey,
		"RSI_NOTIFIER":       &c.Notifier.Channel,
		"SMTP_HOST":          &c.Notifier.Email.SMTPHost,
		"SMTP_USERNAME":      &c.Notifier.Email.Username,
		"SMTP_FROM":          &c.Notifier.Email.From,
		"ALERT_RECIPIENT":    &c.Notifier.Email.Recipient,
		"TELEGRAM_BOT_TOKEN": &c.Notifier.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Notifier.Telegram.ChatID,
		"HTTPS_PROXY":        &c.Proxy,
		"LOG_LEVEL":          &c.Log.Level,
		"PUSHGATEWAY_URL":    &c.Metrics.PushgatewayURL,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("RSI_PERIOD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RSI_PERIOD: %w", err)
		}
		c.RSI.Period = n
	}
	if v := os.Getenv("RSI_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RSI_THRESHOLD: %w", err)
		}
		c.RSI.Threshold = f
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Notifier.Email.SMTPPort = n
	}
	return nil
}

// SMTPPassword resolves the SMTP password from the environment variable named
// by notifier.email.password_env.
func (c *Config) SMTPPassword() string {
	if c.Notifier.Email.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.Notifier.Email.PasswordEnv)
}

// Recipient returns the destination for the selected channel.
func (c *Config) Recipient() string {
	switch c.Notifier.Channel {
	case "telegram":
		return c.Notifier.Telegram.ChatID
	default:
		return c.Notifier.Email.Recipient
	}
}

var validate = validator.New()

// Validate checks field constraints and the credentials of the selected
// notification channel. Channel credentials are not required for a dry run.
func (c *Config) Validate(dryRun bool) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q constraint (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	switch c.DataSource.Provider {
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	case "csv":
		if c.DataSource.File == "" {
			return fmt.Errorf("data_source.file is required for the csv provider")
		}
	}
	if dryRun {
		return nil
	}

	switch c.Notifier.Channel {
	case "email":
		if c.Notifier.Email.Recipient == "" {
			return fmt.Errorf("notifier.email.recipient is required")
		}
		if c.Notifier.Email.Username == "" {
			return fmt.Errorf("notifier.email.username is required")
		}
		if c.SMTPPassword() == "" {
			return fmt.Errorf("smtp password env %q is empty", c.Notifier.Email.PasswordEnv)
		}
	case "telegram":
		if c.Notifier.Telegram.BotToken == "" {
			return fmt.Errorf("notifier.telegram.bot_token is required")
		}
		if c.Notifier.Telegram.ChatID == "" {
			return fmt.Errorf("notifier.telegram.chat_id is required")
		}
	}
	return nil
}
