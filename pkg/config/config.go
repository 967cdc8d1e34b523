// Package config loads runtime configuration from the environment with
// a DEEP_RESEARCH_ prefix. Provider credentials also honor their
// conventional unprefixed names (TAVILY_API_KEY, GEMINI_API_KEY).
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration.
type Config struct {
	TavilyAPIKey string
	GeminiAPIKey string
	GeminiModel  string

	// Concurrency bounds simultaneous external calls inside one depth
	// level.
	Concurrency    int
	SessionTimeout time.Duration

	// Optional GCP integrations. Empty project disables both.
	GCPProject         string
	GCPCredentialsFile string
	ReportCollection   string
	ProgressTopic      string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEEP_RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("concurrency", 3)
	v.SetDefault("session_timeout", "10m")
	v.SetDefault("report_collection", "research_reports")
	v.SetDefault("progress_topic", "")

	if err := v.BindEnv("tavily_api_key", "DEEP_RESEARCH_TAVILY_API_KEY", "TAVILY_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("gemini_api_key", "DEEP_RESEARCH_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("gcp_project", "DEEP_RESEARCH_GCP_PROJECT", "GOOGLE_CLOUD_PROJECT"); err != nil {
		return nil, err
	}

	return &Config{
		TavilyAPIKey:       v.GetString("tavily_api_key"),
		GeminiAPIKey:       v.GetString("gemini_api_key"),
		GeminiModel:        v.GetString("gemini_model"),
		Concurrency:        v.GetInt("concurrency"),
		SessionTimeout:     v.GetDuration("session_timeout"),
		GCPProject:         v.GetString("gcp_project"),
		GCPCredentialsFile: v.GetString("gcp_credentials_file"),
		ReportCollection:   v.GetString("report_collection"),
		ProgressTopic:      v.GetString("progress_topic"),
	}, nil
}
