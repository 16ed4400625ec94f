package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EmailAccount holds the IMAP credentials for one mailbox to scan.
type EmailAccount struct {
	Name     string `mapstructure:"name"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	IMAPHost string `mapstructure:"imap_host"`
	IMAPPort int    `mapstructure:"imap_port"`
}

// Addr returns host:port for dialing.
func (a EmailAccount) Addr() string {
	port := a.IMAPPort
	if port == 0 {
		port = 993
	}
	return fmt.Sprintf("%s:%d", a.IMAPHost, port)
}

// SMTPConfig configures outgoing digest mail.
type SMTPConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	Recipient string `mapstructure:"recipient"`
}

// LLMConfig points at the local Ollama instance used for extraction,
// relevance classification, and embeddings.
type LLMConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	GenModel          string  `mapstructure:"gen_model"`
	EmbedModel        string  `mapstructure:"embed_model"`
	SemanticThreshold float64 `mapstructure:"semantic_threshold"`
}

// APIConfig configures the HTTP server. Admin endpoints stay disabled
// until a bcrypt password hash is set.
type APIConfig struct {
	Port              int    `mapstructure:"port"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
	JWTSecret         string `mapstructure:"jwt_secret"`
}

// StorageConfig configures the Postgres store.
type StorageConfig struct {
	DatabaseURL   string `mapstructure:"database_url"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config is the application configuration, loaded via viper from
// sentinel.yaml plus SENTINEL_* environment overrides.
type Config struct {
	Accounts    []EmailAccount `mapstructure:"accounts"`
	SMTP        SMTPConfig     `mapstructure:"smtp"`
	LLM         LLMConfig      `mapstructure:"llm"`
	Storage     StorageConfig  `mapstructure:"storage"`
	ProfilePath string         `mapstructure:"profile"`
	ScanDays    int            `mapstructure:"scan_days"`
	MaxEmails   int            `mapstructure:"max_emails"`
	SendDigest  bool           `mapstructure:"send_digest"`
	API         APIConfig      `mapstructure:"api"`
}

// Load reads the configuration bound by the root command and applies
// defaults for anything left unset.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ProfilePath == "" {
		cfg.ProfilePath = "profile.yaml"
	}
	if cfg.ScanDays == 0 {
		cfg.ScanDays = 1
	}
	if cfg.MaxEmails == 0 {
		cfg.MaxEmails = 200
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8081
	}
	if cfg.LLM.SemanticThreshold == 0 {
		cfg.LLM.SemanticThreshold = 0.25
	}
	if cfg.Storage.RetentionDays == 0 {
		cfg.Storage.RetentionDays = 30
	}

	return &cfg, nil
}

// Validate checks the parts of the config needed for a full pipeline run.
func (c *Config) Validate() error {
	var problems []string
	for i, acct := range c.Accounts {
		if acct.Username == "" || acct.Password == "" || acct.IMAPHost == "" {
			problems = append(problems, fmt.Sprintf("accounts[%d]: username, password and imap_host are required", i))
		}
	}
	if c.SendDigest {
		if c.SMTP.Host == "" || c.SMTP.Recipient == "" {
			problems = append(problems, "smtp.host and smtp.recipient are required when send_digest is enabled")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
