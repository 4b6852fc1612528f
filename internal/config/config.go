package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Jenkins JenkinsConfig `mapstructure:"jenkins"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type JenkinsConfig struct {
	URL             string `mapstructure:"url"`
	User            string `mapstructure:"user"`
	Token           string `mapstructure:"token"`
	Job             string `mapstructure:"job"`
	Parameter       string `mapstructure:"parameter"`
	ConnectAttempts int    `mapstructure:"connect_attempts"`
}

type WebhookConfig struct {
	Route       string `mapstructure:"route"`
	ContentType string `mapstructure:"content_type"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// env names kept short for parity with the deployments that set PORT directly
var envBindings = map[string]string{
	"server.host":              "HOST",
	"server.port":              "PORT",
	"server.shutdown_timeout":  "SHUTDOWN_TIMEOUT",
	"jenkins.url":              "JENKINS_URL",
	"jenkins.user":             "JENKINS_USER",
	"jenkins.token":            "JENKINS_TOKEN",
	"jenkins.job":              "JENKINS_JOB",
	"jenkins.parameter":        "JENKINS_PARAMETER",
	"jenkins.connect_attempts": "JENKINS_CONNECT_ATTEMPTS",
	"webhook.route":            "WEBHOOK_ROUTE",
	"webhook.content_type":     "WEBHOOK_CONTENT_TYPE",
	"logging.level":            "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "3123")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("jenkins.url", "http://localhost:8080")
	v.SetDefault("jenkins.user", "dotnet")
	v.SetDefault("jenkins.token", "")
	v.SetDefault("jenkins.job", "manage_myget/manage_tizen_nupkgs")
	v.SetDefault("jenkins.parameter", "PUSH_METADATA")
	v.SetDefault("jenkins.connect_attempts", 5)
	v.SetDefault("webhook.route", "dotnet-core")
	v.SetDefault("webhook.content_type", "application/vnd.myget.webhooks.v1+json")
	v.SetDefault("logging.level", "info")
}

// Load reads defaults, an optional yaml file and the environment, in that order
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Webhook.Route = strings.Trim(cfg.Webhook.Route, "/")

	return &cfg, nil
}

// Validate reports every missing required value at once
func (c *Config) Validate() error {
	var missing []string

	require := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}

	require("server.port", c.Server.Port)
	require("jenkins.url", c.Jenkins.URL)
	require("jenkins.token", c.Jenkins.Token)
	require("jenkins.job", c.Jenkins.Job)
	require("jenkins.parameter", c.Jenkins.Parameter)
	require("webhook.route", c.Webhook.Route)
	require("webhook.content_type", c.Webhook.ContentType)

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}

// Address returns the listen address for the HTTP server
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// WebhookPath returns the path both webhook endpoints are mounted on
func (c *WebhookConfig) WebhookPath() string {
	return "/webhook/" + c.Route
}
