// Package config loads newsagent settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "NEWSAGENT"

// Agent drivers.
const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
	DriverFeed       = "feed"
	DriverDemo       = "demo"
)

type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Registry RegistryConfig `mapstructure:"registry"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // "openai" or "gemini"
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type AgentConfig struct {
	Driver         string        `mapstructure:"driver"` // playwright, chromedp, feed or demo
	Headless       bool          `mapstructure:"headless"`
	MaxSteps       int           `mapstructure:"max_steps"`
	StepsPerSource int           `mapstructure:"steps_per_source"`
	LoopThreshold  int           `mapstructure:"loop_threshold"`
	StepDelay      time.Duration `mapstructure:"step_delay"`
	Concurrency    int           `mapstructure:"concurrency"`
	// Timeout bounds one agent run; zero means no limit.
	Timeout        time.Duration `mapstructure:"timeout"`
	TranscriptPath string        `mapstructure:"transcript_path"`
	UserDataDir    string        `mapstructure:"user_data_dir"`
}

type RegistryConfig struct {
	// Path overrides the built-in source registry.
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load reads configuration from path, or from the first newsagent.yaml
// found in ./config, ~/.newsagent and /etc/newsagent when path is empty.
// A missing default file is not an error. NEWSAGENT_<SECTION>_<KEY>
// variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("newsagent")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(filepath.Join(homeDir(), ".newsagent"))
		v.AddConfigPath("/etc/newsagent")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyKeyFallback(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 2048)

	v.SetDefault("agent.driver", DriverPlaywright)
	v.SetDefault("agent.headless", true)
	v.SetDefault("agent.max_steps", 30)
	v.SetDefault("agent.steps_per_source", 6)
	v.SetDefault("agent.loop_threshold", 3)
	v.SetDefault("agent.step_delay", time.Second)
	v.SetDefault("agent.concurrency", 4)
	v.SetDefault("agent.timeout", time.Duration(0))
	v.SetDefault("agent.transcript_path", "")
	v.SetDefault("agent.user_data_dir", ".playwright_data")

	v.SetDefault("registry.path", "")

	v.SetDefault("server.addr", ":8501")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// applyKeyFallback picks up the provider's conventional key variable when no
// key was configured.
func applyKeyFallback(cfg *Config) {
	if cfg.LLM.APIKey != "" {
		return
	}
	switch strings.ToLower(cfg.LLM.Provider) {
	case "gemini":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	default:
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate rejects values no component can work with. Missing API keys are
// reported later, by the component that needs one.
func (c *Config) Validate() error {
	switch c.Agent.Driver {
	case DriverPlaywright, DriverChromedp, DriverFeed, DriverDemo:
	default:
		return fmt.Errorf("agent.driver: unknown driver %q", c.Agent.Driver)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider)
	}
	if c.Agent.Timeout < 0 {
		return fmt.Errorf("agent.timeout must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is empty")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
