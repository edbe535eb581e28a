package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobherald/internal/domain"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Source     SourceConfig     `yaml:"source"`
	Harvest    HarvestConfig    `yaml:"harvest"`
	Filters    FiltersConfig    `yaml:"filters"`
	Categories []CategoryConfig `yaml:"categories"`
	LogLevel   string           `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type TelegramConfig struct {
	Token string `yaml:"token"`
	// StatusChatID receives the heartbeat status line. Zero disables it.
	StatusChatID int64 `yaml:"status_chat_id"`
}

// AMQPConfig configures the optional fan-out feed of announced postings.
// An empty URL disables it.
type AMQPConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type OracleConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type SourceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type HarvestConfig struct {
	Location        string        `yaml:"location"`
	Cooldown        time.Duration `yaml:"cooldown"`
	CategoryTimeout time.Duration `yaml:"category_timeout"`
	ResultCap       int           `yaml:"result_cap"`
	RecencyHours    int           `yaml:"recency_hours"`
}

// FiltersConfig holds the rules that apply identically to every category.
type FiltersConfig struct {
	DeniedCompanies []string `yaml:"denied_companies"`
	DeniedRoleTerms []string `yaml:"denied_role_terms"`
}

type CategoryConfig struct {
	Name             string   `yaml:"name"`
	ChatID           int64    `yaml:"chat_id"`
	CommitMode       string   `yaml:"commit_mode"`
	UseOracle        bool     `yaml:"use_oracle"`
	SearchTerms      []string `yaml:"search_terms"`
	RequiredTerms    []string `yaml:"required_terms"`
	QuarantinedTerms []string `yaml:"quarantined_terms"`
	ResultCap        int      `yaml:"result_cap"`
	RecencyHours     int      `yaml:"recency_hours"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.AMQP.URL != "" {
		if c.AMQP.Exchange == "" {
			c.AMQP.Exchange = "jobherald"
		}
		if c.AMQP.RoutingKey == "" {
			c.AMQP.RoutingKey = "postings"
		}
		if c.AMQP.QueueName == "" {
			c.AMQP.QueueName = "announced_postings"
		}
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "gemini-2.5-flash"
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 30 * time.Second
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 30 * time.Second
	}
	if c.Source.Retry.MaxAttempts == 0 {
		c.Source.Retry.MaxAttempts = 3
	}
	if c.Source.Retry.InitialBackoff == 0 {
		c.Source.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Source.Retry.MaxBackoff == 0 {
		c.Source.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Harvest.Location == "" {
		c.Harvest.Location = "United States"
	}
	if c.Harvest.Cooldown == 0 {
		c.Harvest.Cooldown = 10 * time.Second
	}
	if c.Harvest.CategoryTimeout == 0 {
		c.Harvest.CategoryTimeout = 2 * time.Minute
	}
	if c.Harvest.ResultCap == 0 {
		c.Harvest.ResultCap = 15
	}
	if c.Harvest.RecencyHours == 0 {
		c.Harvest.RecencyHours = 10
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	for i := range c.Categories {
		cat := &c.Categories[i]
		if cat.ResultCap == 0 {
			cat.ResultCap = c.Harvest.ResultCap
		}
		if cat.RecencyHours == 0 {
			cat.RecencyHours = c.Harvest.RecencyHours
		}
		if cat.CommitMode == "" {
			if cat.UseOracle {
				cat.CommitMode = string(domain.RecordThenPublish)
			} else {
				cat.CommitMode = string(domain.PublishThenRecord)
			}
		}
	}
}

// validate covers the credentials and collaborator endpoints the process
// cannot run without. Per-category structural checks live in the router.
func (c *Config) validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host and dbname are required")
	}
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source base_url is required")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	for _, cat := range c.Categories {
		if cat.UseOracle && c.Oracle.APIKey == "" {
			return fmt.Errorf("category %q requires the oracle but oracle api_key is empty", cat.Name)
		}
	}
	return nil
}
