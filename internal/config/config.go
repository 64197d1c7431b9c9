package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv    = "READWISE_DIGEST_CONFIG"
	readwiseTokenEnv = "READWISE_ACCESS_TOKEN"
	githubTokenEnv   = "GITHUB_TOKEN"
	githubOwnerEnv   = "GITHUB_REPO_OWNER"
	githubRepoEnv    = "GITHUB_REPO_NAME"
	githubBranchEnv  = "GITHUB_TARGET_BRANCH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Readwise  ReadwiseConfig  `yaml:"readwise"`
	GitHub    GitHubConfig    `yaml:"github"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ReadwiseConfig wires access to the two Readwise APIs.
type ReadwiseConfig struct {
	AccessToken   string `yaml:"accessToken"`
	ReaderBaseURL string `yaml:"readerBaseUrl"`
	BaseURL       string `yaml:"baseUrl"`
}

// GitHubConfig describes the repository the digest is committed to.
type GitHubConfig struct {
	APIBaseURL   string `yaml:"apiBaseUrl"`
	Token        string `yaml:"token"`
	RepoOwner    string `yaml:"repoOwner"`
	RepoName     string `yaml:"repoName"`
	TargetBranch string `yaml:"targetBranch"`
}

// SchedulerConfig defines when the digest pipeline should run.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// A local .env file is honored before the environment is consulted.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate reports missing credentials before any network call is attempted.
func (c Config) Validate() error {
	var missing []string
	if c.Readwise.AccessToken == "" {
		missing = append(missing, readwiseTokenEnv)
	}
	if c.GitHub.Token == "" {
		missing = append(missing, githubTokenEnv)
	}
	if c.GitHub.RepoOwner == "" {
		missing = append(missing, githubOwnerEnv)
	}
	if c.GitHub.RepoName == "" {
		missing = append(missing, githubRepoEnv)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(readwiseTokenEnv); v != "" {
		c.Readwise.AccessToken = v
	}

	if v := os.Getenv(githubTokenEnv); v != "" {
		c.GitHub.Token = v
	}

	if v := os.Getenv(githubOwnerEnv); v != "" {
		c.GitHub.RepoOwner = v
	}

	if v := os.Getenv(githubRepoEnv); v != "" {
		c.GitHub.RepoName = v
	}

	if v := os.Getenv(githubBranchEnv); v != "" {
		c.GitHub.TargetBranch = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Readwise.AccessToken != "" {
		base.Readwise.AccessToken = override.Readwise.AccessToken
	}
	if override.Readwise.ReaderBaseURL != "" {
		base.Readwise.ReaderBaseURL = override.Readwise.ReaderBaseURL
	}
	if override.Readwise.BaseURL != "" {
		base.Readwise.BaseURL = override.Readwise.BaseURL
	}

	if override.GitHub.APIBaseURL != "" {
		base.GitHub.APIBaseURL = override.GitHub.APIBaseURL
	}
	if override.GitHub.Token != "" {
		base.GitHub.Token = override.GitHub.Token
	}
	if override.GitHub.RepoOwner != "" {
		base.GitHub.RepoOwner = override.GitHub.RepoOwner
	}
	if override.GitHub.RepoName != "" {
		base.GitHub.RepoName = override.GitHub.RepoName
	}
	if override.GitHub.TargetBranch != "" {
		base.GitHub.TargetBranch = override.GitHub.TargetBranch
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Readwise: ReadwiseConfig{
			ReaderBaseURL: "https://readwise.io/api/v3/",
			BaseURL:       "https://readwise.io/api/v2/",
		},
		GitHub: GitHubConfig{
			APIBaseURL:   "https://api.github.com",
			TargetBranch: "main",
		},
		Scheduler: SchedulerConfig{
			Enabled:        false,
			CronExpression: "0 8 * * 1",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
