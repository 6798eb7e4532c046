package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type       string `envconfig:"FRAG_DB_TYPE" default:"pgsql"`
	Hostname   string `envconfig:"FRAG_DB_HOST" default:"localhost"`
	Port       string `envconfig:"FRAG_DB_PORT" default:"5432"`
	Name       string `envconfig:"FRAG_DB_NAME" default:"frag"`
	User       string `envconfig:"FRAG_DB_USER" default:""`
	Password   string `envconfig:"FRAG_DB_PASS" default:""`
	SearchPath string `envconfig:"FRAG_DB_SEARCH_PATH" default:"frag"`
}

type svcConfig struct {
	LogLevel       string `envconfig:"FRAG_POLL_LOG_LEVEL" default:"info"`
	MetricsAddress string `envconfig:"FRAG_POLL_METRICS_ADDRESS" default:""`
	Smtp           smtpConfig
	Gitlab         gitlabConfig
	S3             s3Config
}

type smtpConfig struct {
	Host     string `envconfig:"FRAG_POLL_SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"FRAG_POLL_SMTP_PORT" default:"25"`
	Username string `envconfig:"FRAG_POLL_SMTP_USER" default:""`
	Password string `envconfig:"FRAG_POLL_SMTP_PASS" default:""`
}

type gitlabConfig struct {
	Url   string `envconfig:"FRAG_POLL_GITLAB_URL" default:"https://gitlab.com"`
	Token string `envconfig:"FRAG_POLL_GITLAB_TOKEN" default:""`
}

type s3Config struct {
	Endpoint  string `envconfig:"FRAG_POLL_S3_ENDPOINT" default:"localhost:9000"`
	Bucket    string `envconfig:"FRAG_POLL_S3_BUCKET" default:"submissions"`
	AccessKey string `envconfig:"FRAG_POLL_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"FRAG_POLL_S3_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"FRAG_POLL_S3_USE_SSL" default:"true"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a configuration backed by an in-memory sqlite database.
func NewDefault() *Config {
	cfg := new(Config)
	_ = envconfig.Process("", cfg)
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "file::memory:?cache=shared"
	return cfg
}
