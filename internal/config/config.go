// Package config reads configs/config.yaml and lets environment variables override it.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// BackendConfig points at the SimpleGest REST API
type BackendConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PushConfig is the backend's websocket channel. Empty disables live updates.
type PushConfig struct {
	URL string `mapstructure:"url"`
}

type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	// Store is one of memory, mongo or postgres
	Store  string `mapstructure:"store"`
	Secure bool   `mapstructure:"secure"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

// PostgresConfig backs the activity log and, optionally, sessions
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// Enabled reports whether reports can be archived
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Push     PushConfig     `mapstructure:"push"`
	Session  SessionConfig  `mapstructure:"session"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	S3       S3Config       `mapstructure:"s3"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

var envBindings = map[string]string{
	"server.port":         "PORT",
	"backend.baseURL":     "BACKEND_URL",
	"backend.timeout":     "BACKEND_TIMEOUT",
	"push.url":            "PUSH_URL",
	"session.secret":      "SESSION_SECRET",
	"session.ttl":         "SESSION_TTL",
	"session.store":       "SESSION_STORE",
	"session.secure":      "SESSION_SECURE",
	"mongo.uri":           "MONGO_URI",
	"mongo.dbName":        "MONGO_DBNAME",
	"postgres.dsn":        "DATABASE_URL",
	"s3.bucket":           "S3_BUCKET",
	"s3.region":           "S3_REGION",
	"s3.accessKeyID":      "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":  "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain": "S3_CLOUDFRONT_DOMAIN",
	"cors.origins":        "CORS_ORIGINS",
}

// LoadConfig reads config.yaml from path and applies environment overrides.
// A missing file is not an error; defaults and the environment are used instead.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("backend.baseURL", "http://localhost:4000")
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("mongo.dbName", "simplegest")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
