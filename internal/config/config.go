package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"jira-feedback/internal/feedback"
	"jira-feedback/internal/jira"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProjectKey    = "FEEDBACK"
	DefaultPriority      = "Medium"
	DefaultBannerMessage = "This app is in beta testing and may not work as expected. Please help us by reporting any issues or suggesting improvements"
	DefaultButtonLabel   = "Submit Feedback"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultCacheTTL      = "1h"
	DefaultTimeout       = "30s"
)

type Config struct {
	Enabled               bool        `json:"enabled" yaml:"enabled"`
	Jira                  JiraConfig  `json:"jira" yaml:"jira"`
	Issue                 IssueConfig `json:"issue" yaml:"issue"`
	Banner                Banner      `json:"banner" yaml:"banner"`
	RequireAuthentication bool        `json:"require_authentication" yaml:"require_authentication"`
	Validation            Validation  `json:"validation" yaml:"validation"`
	UserContext           UserContext `json:"user_context" yaml:"user_context"`
	Cache                 CacheConfig `json:"cache" yaml:"cache"`
	Timeout               string      `json:"timeout" yaml:"timeout"`
	Gemini                Gemini      `json:"gemini" yaml:"gemini"`
}

type JiraConfig struct {
	URL        string `json:"url" yaml:"url"`
	Email      string `json:"email" yaml:"email"`
	APIToken   string `json:"api_token" yaml:"api_token"`
	ProjectKey string `json:"project_key" yaml:"project_key"`
}

// IssueType is one choice offered in the feedback form.
type IssueType struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
}

type IssueConfig struct {
	Types           []IssueType `json:"types" yaml:"types"`
	DefaultPriority string      `json:"default_priority" yaml:"default_priority"`
}

type Banner struct {
	Message     string `json:"message" yaml:"message"`
	ButtonLabel string `json:"button_label" yaml:"button_label"`
}

type Validation struct {
	SummaryMaxLength     int `json:"summary_max_length" yaml:"summary_max_length"`
	DescriptionMaxLength int `json:"description_max_length" yaml:"description_max_length"`
}

// UserContext identifies the person running the tool. Leaving Name and
// Email empty submits anonymously.
type UserContext struct {
	IncludeProjectKey bool   `json:"include_project_key" yaml:"include_project_key"`
	ID                string `json:"id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	Email             string `json:"email" yaml:"email"`
	ProjectKey        string `json:"project_key" yaml:"project_key"`
}

type CacheConfig struct {
	TTL      string `json:"ttl" yaml:"ttl"`
	RedisURL string `json:"redis_url" yaml:"redis_url"`
}

type Gemini struct {
	APIKey string `json:"api_key" yaml:"api_key"`
	Model  string `json:"model" yaml:"model"`
}

func DefaultIssueTypes() []IssueType {
	return []IssueType{
		{Name: "Bug", Label: "Bug - Report a software defect"},
		{Name: "Task", Label: "Task - Request a general task"},
		{Name: "Story", Label: "Story - Request a new feature or enhancement"},
		{Name: "Ask a question", Label: "Ask a question - Get help or ask for information"},
	}
}

// Default returns a configuration with every optional field filled in and
// no Jira credentials.
func Default() *Config {
	cfg := &Config{Enabled: true}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Jira.ProjectKey == "" {
		c.Jira.ProjectKey = DefaultProjectKey
	}
	c.Jira.URL = strings.TrimRight(c.Jira.URL, "/")
	if len(c.Issue.Types) == 0 {
		c.Issue.Types = DefaultIssueTypes()
	}
	if c.Issue.DefaultPriority == "" {
		c.Issue.DefaultPriority = DefaultPriority
	}
	if c.Banner.Message == "" {
		c.Banner.Message = DefaultBannerMessage
	}
	if c.Banner.ButtonLabel == "" {
		c.Banner.ButtonLabel = DefaultButtonLabel
	}
	if c.Validation.SummaryMaxLength <= 0 {
		c.Validation.SummaryMaxLength = feedback.DefaultSummaryMaxLength
	}
	if c.Validation.DescriptionMaxLength <= 0 {
		c.Validation.DescriptionMaxLength = feedback.DefaultDescriptionMaxLength
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".jira-feedback")
}

// DefaultPath is where the config lives unless --config says otherwise.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.json")
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFromFile reads path (JSON, or YAML by extension), then applies
// FEEDBACK_* environment overrides and defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// readFile decodes path as-is, without environment overrides or defaults.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Config{Enabled: true}
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}

// loadForSetup returns the saved file contents with defaults filled in.
// Environment overrides are left out so they never get written back.
func loadForSetup(path string) *Config {
	cfg, err := readFile(path)
	if err != nil {
		return Default()
	}
	cfg.applyDefaults()
	return cfg
}

// Load is LoadFromFile that tolerates a missing file, so the tool can run
// from environment variables alone.
func Load(path string) (*Config, error) {
	if Exists(path) {
		return LoadFromFile(path)
	}
	cfg := Config{Enabled: true}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
		return nil
	}

	str("FEEDBACK_JIRA_URL", &c.Jira.URL)
	str("FEEDBACK_JIRA_EMAIL", &c.Jira.Email)
	str("FEEDBACK_JIRA_API_TOKEN", &c.Jira.APIToken)
	str("FEEDBACK_JIRA_PROJECT_KEY", &c.Jira.ProjectKey)
	str("FEEDBACK_DEFAULT_PRIORITY", &c.Issue.DefaultPriority)
	str("FEEDBACK_BANNER_MESSAGE", &c.Banner.Message)
	str("FEEDBACK_REDIS_URL", &c.Cache.RedisURL)
	str("FEEDBACK_GEMINI_API_KEY", &c.Gemini.APIKey)

	if err := boolean("FEEDBACK_ENABLED", &c.Enabled); err != nil {
		return err
	}
	return boolean("FEEDBACK_REQUIRE_AUTH", &c.RequireAuthentication)
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Credentials() jira.Credentials {
	return jira.Credentials{
		BaseURL:    c.Jira.URL,
		Email:      c.Jira.Email,
		APIToken:   c.Jira.APIToken,
		ProjectKey: c.Jira.ProjectKey,
	}
}

func (c *Config) IssueTypeNames() []string {
	names := make([]string, len(c.Issue.Types))
	for i, t := range c.Issue.Types {
		names[i] = t.Name
	}
	return names
}

func (c *Config) Limits() feedback.Limits {
	return feedback.Limits{
		SummaryMaxLength:     c.Validation.SummaryMaxLength,
		DescriptionMaxLength: c.Validation.DescriptionMaxLength,
		IssueTypes:           c.IssueTypeNames(),
	}
}

func (c *Config) FeedbackOptions() feedback.Options {
	return feedback.Options{
		Enabled:               c.Enabled,
		RequireAuthentication: c.RequireAuthentication,
		IncludeProjectKey:     c.UserContext.IncludeProjectKey,
		DefaultPriority:       c.Issue.DefaultPriority,
		Limits:                c.Limits(),
	}
}

// User returns the configured reporter, or nil when anonymous.
func (c *Config) User() *feedback.User {
	uc := c.UserContext
	if uc.Name == "" && uc.Email == "" && uc.ID == "" {
		return nil
	}
	return &feedback.User{ID: uc.ID, Name: uc.Name, Email: uc.Email, ProjectKey: uc.ProjectKey}
}

func (c *Config) CacheTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache ttl %q: %w", c.Cache.TTL, err)
	}
	return d, nil
}

func (c *Config) HTTPTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}
