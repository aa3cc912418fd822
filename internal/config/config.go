// Package config loads slotwise settings from defaults, an optional YAML
// file, SLOTWISE_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alexanderramin/slotwise/internal/habits"
	"github.com/alexanderramin/slotwise/internal/llm"
	"github.com/alexanderramin/slotwise/internal/scheduler"
	"github.com/alexanderramin/slotwise/internal/sentiment"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// EnvPrefix namespaces environment overrides, e.g. SLOTWISE_LLM_MODEL.
const EnvPrefix = "SLOTWISE"

type Config struct {
	Timezone   string           `mapstructure:"timezone"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Breaks     BreaksConfig     `mapstructure:"breaks"`
	Habits     HabitsConfig     `mapstructure:"habits"`
	Sentiment  SentimentConfig  `mapstructure:"sentiment"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	DB         DBConfig         `mapstructure:"db"`
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
}

type SchedulingConfig struct {
	MeetingBufferMinutes int `mapstructure:"meeting_buffer_minutes"`
}

type BreaksConfig struct {
	LongAfterMinutes  int `mapstructure:"long_after_minutes"`
	LongMinutes       int `mapstructure:"long_minutes"`
	ShortAfterMinutes int `mapstructure:"short_after_minutes"`
	ShortMinutes      int `mapstructure:"short_minutes"`
}

type HabitsConfig struct {
	MaxActive        int `mapstructure:"max_active"`
	NotificationHour int `mapstructure:"notification_hour"`
}

// SentimentConfig points at the remote sentiment endpoint. An empty
// endpoint keeps scoring local.
type SentimentConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	CacheSize  int           `mapstructure:"cache_size"`
}

type LLMConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	Endpoint        string  `mapstructure:"endpoint"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	TimeoutMs       int     `mapstructure:"timeout_ms"`
	MaxRetries      int     `mapstructure:"max_retries"`
	RetryDelayMs    int     `mapstructure:"retry_delay_ms"`
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec"`
	RateBurst       int     `mapstructure:"rate_burst"`
	LogCalls        bool    `mapstructure:"log_calls"`
}

type CalendarConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
	CalendarID      string `mapstructure:"calendar_id"`
	WorkdayStart    int    `mapstructure:"workday_start"`
	WorkdayEnd      int    `mapstructure:"workday_end"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	llmDefaults := llm.DefaultConfig()
	breaks := scheduler.DefaultBreakPolicy()
	sent := sentiment.DefaultConfig()
	return &Config{
		Timezone:   timeutil.DefaultZone,
		Scheduling: SchedulingConfig{MeetingBufferMinutes: scheduler.DefaultMeetingBufferMin},
		Breaks: BreaksConfig{
			LongAfterMinutes:  breaks.LongAfterMin,
			LongMinutes:       breaks.LongBreakMin,
			ShortAfterMinutes: breaks.ShortAfterMin,
			ShortMinutes:      breaks.ShortBreakMin,
		},
		Habits: HabitsConfig{
			MaxActive:        habits.DefaultMaxActive,
			NotificationHour: habits.DefaultNotificationHour,
		},
		Sentiment: SentimentConfig{
			Timeout:    sent.Timeout,
			MaxRetries: int(sent.MaxRetries),
			CacheSize:  sent.CacheSize,
		},
		LLM: LLMConfig{
			Enabled:         llmDefaults.Enabled,
			Endpoint:        llmDefaults.Endpoint,
			Model:           llmDefaults.Model,
			TimeoutMs:       llmDefaults.TimeoutMs,
			MaxRetries:      llmDefaults.MaxRetries,
			RetryDelayMs:    llmDefaults.RetryDelayMs,
			RateLimitPerSec: llmDefaults.RateLimitPerSec,
			RateBurst:       llmDefaults.RateBurst,
		},
		Calendar: CalendarConfig{
			CredentialsFile: filepath.Join(Dir(), "credentials.json"),
			TokenFile:       filepath.Join(Dir(), "token.json"),
			CalendarID:      "primary",
			WorkdayStart:    9,
			WorkdayEnd:      17,
		},
		DB:     DBConfig{Path: filepath.Join(Dir(), "slotwise.db")},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// legacyEnv maps the unprefixed variables older deployments set.
var legacyEnv = map[string]string{
	"llm.api_key":        "OPENAI_API_KEY",
	"sentiment.endpoint": "SENTIMENT_API_ENDPOINT",
	"sentiment.api_key":  "SENTIMENT_API_KEY",
	"timezone":           "TIMEZONE",
}

// New returns a viper instance carrying defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy)
	}
	return v
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("timezone", d.Timezone)

	v.SetDefault("scheduling.meeting_buffer_minutes", d.Scheduling.MeetingBufferMinutes)

	v.SetDefault("breaks.long_after_minutes", d.Breaks.LongAfterMinutes)
	v.SetDefault("breaks.long_minutes", d.Breaks.LongMinutes)
	v.SetDefault("breaks.short_after_minutes", d.Breaks.ShortAfterMinutes)
	v.SetDefault("breaks.short_minutes", d.Breaks.ShortMinutes)

	v.SetDefault("habits.max_active", d.Habits.MaxActive)
	v.SetDefault("habits.notification_hour", d.Habits.NotificationHour)

	v.SetDefault("sentiment.endpoint", d.Sentiment.Endpoint)
	v.SetDefault("sentiment.api_key", d.Sentiment.APIKey)
	v.SetDefault("sentiment.timeout", d.Sentiment.Timeout)
	v.SetDefault("sentiment.max_retries", d.Sentiment.MaxRetries)
	v.SetDefault("sentiment.cache_size", d.Sentiment.CacheSize)

	v.SetDefault("llm.enabled", d.LLM.Enabled)
	v.SetDefault("llm.endpoint", d.LLM.Endpoint)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.timeout_ms", d.LLM.TimeoutMs)
	v.SetDefault("llm.max_retries", d.LLM.MaxRetries)
	v.SetDefault("llm.retry_delay_ms", d.LLM.RetryDelayMs)
	v.SetDefault("llm.rate_limit_per_sec", d.LLM.RateLimitPerSec)
	v.SetDefault("llm.rate_burst", d.LLM.RateBurst)
	v.SetDefault("llm.log_calls", d.LLM.LogCalls)

	v.SetDefault("calendar.credentials_file", d.Calendar.CredentialsFile)
	v.SetDefault("calendar.token_file", d.Calendar.TokenFile)
	v.SetDefault("calendar.calendar_id", d.Calendar.CalendarID)
	v.SetDefault("calendar.workday_start", d.Calendar.WorkdayStart)
	v.SetDefault("calendar.workday_end", d.Calendar.WorkdayEnd)

	v.SetDefault("db.path", d.DB.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
}

// BindFlags lets command-line flags override file and environment values.
// keys maps config keys to flag names.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file (when present) and decodes the merged result.
// An explicitly named file must exist; the default location is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = File()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Habits.NotificationHour < 0 || c.Habits.NotificationHour > 23 {
		problems = append(problems, fmt.Sprintf("habits.notification_hour must be 0-23, got %d", c.Habits.NotificationHour))
	}
	if c.Habits.MaxActive < 0 {
		problems = append(problems, "habits.max_active must not be negative")
	}
	if c.Scheduling.MeetingBufferMinutes < 0 {
		problems = append(problems, "scheduling.meeting_buffer_minutes must not be negative")
	}
	if c.Calendar.WorkdayStart < 0 || c.Calendar.WorkdayEnd > 24 || c.Calendar.WorkdayStart >= c.Calendar.WorkdayEnd {
		problems = append(problems, fmt.Sprintf("calendar workday %d-%d is not a valid range",
			c.Calendar.WorkdayStart, c.Calendar.WorkdayEnd))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Dir returns the user's slotwise config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "slotwise")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slotwise"
	}
	return filepath.Join(home, ".config", "slotwise")
}

// File returns the default config file path.
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}

// SchedulerOptions converts the scheduling and break settings.
func (c *Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		MeetingBufferMin: c.Scheduling.MeetingBufferMinutes,
		Breaks: scheduler.BreakPolicy{
			LongAfterMin:  c.Breaks.LongAfterMinutes,
			LongBreakMin:  c.Breaks.LongMinutes,
			ShortAfterMin: c.Breaks.ShortAfterMinutes,
			ShortBreakMin: c.Breaks.ShortMinutes,
		},
	}
}

func (c *Config) HabitOptions() habits.Options {
	return habits.Options{MaxActive: c.Habits.MaxActive, NotificationHour: c.Habits.NotificationHour}
}

func (c *Config) SentimentClientConfig() sentiment.Config {
	d := sentiment.DefaultConfig()
	d.Endpoint = c.Sentiment.Endpoint
	d.APIKey = c.Sentiment.APIKey
	if c.Sentiment.Timeout > 0 {
		d.Timeout = c.Sentiment.Timeout
	}
	if c.Sentiment.MaxRetries >= 0 {
		d.MaxRetries = uint64(c.Sentiment.MaxRetries)
	}
	if c.Sentiment.CacheSize > 0 {
		d.CacheSize = c.Sentiment.CacheSize
	}
	return d
}

// LLMClientConfig converts the completion settings, keeping per-task
// parameters from the llm defaults.
func (c *Config) LLMClientConfig() llm.LLMConfig {
	d := llm.DefaultConfig()
	d.Enabled = c.LLM.Enabled
	d.Endpoint = strings.TrimRight(c.LLM.Endpoint, "/")
	d.APIKey = c.LLM.APIKey
	d.Model = c.LLM.Model
	d.TimeoutMs = c.LLM.TimeoutMs
	d.MaxRetries = c.LLM.MaxRetries
	d.RetryDelayMs = c.LLM.RetryDelayMs
	d.RateLimitPerSec = c.LLM.RateLimitPerSec
	d.RateBurst = c.LLM.RateBurst
	d.LogCalls = c.LLM.LogCalls
	return d.WithTaskTimeout(llm.TaskChat, c.LLM.TimeoutMs)
}

// Location resolves the configured default zone.
func (c *Config) Location() *time.Location {
	loc, _ := timeutil.LoadLocation(c.Timezone, timeutil.MustDefaultLocation())
	return loc
}
