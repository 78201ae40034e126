// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultOracleModel is the model used for classification when
// TRIAGE_MODEL is not set.
const DefaultOracleModel = "claude-sonnet-4-5-20250929"

// DefaultOracleTimeout bounds a single classification call so one
// unresponsive invocation cannot stall a whole batch.
const DefaultOracleTimeout = 120 * time.Second

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub GitHubConfig
	Oracle OracleConfig
	Jira   JiraConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// OracleConfig holds configuration for the classification oracle.
type OracleConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL      string
	Username string
	Token    string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("oracle.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("oracle.model", "TRIAGE_MODEL")
	v.BindEnv("oracle.timeout_seconds", "TRIAGE_ORACLE_TIMEOUT")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")

	v.SetDefault("github.domain", "github.com")
	v.SetDefault("oracle.model", DefaultOracleModel)

	timeout := DefaultOracleTimeout
	if secs := v.GetInt("oracle.timeout_seconds"); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	config := &Config{
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
		Oracle: OracleConfig{
			APIKey:  v.GetString("oracle.api_key"),
			Model:   v.GetString("oracle.model"),
			Timeout: timeout,
		},
		Jira: JiraConfig{
			URL:      v.GetString("jira.url"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
		},
	}

	return config, nil
}

// ValidateGitHubConfig ensures the configuration needed for online GitHub
// fetching is present. Loading issues from a file export does not need it.
func ValidateGitHubConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateOracleConfig ensures the classification oracle can be invoked.
func ValidateOracleConfig(config *Config) error {
	var missingVars []string

	if config.Oracle.APIKey == "" {
		missingVars = append(missingVars, "ANTHROPIC_API_KEY")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
