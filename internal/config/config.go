// Package config loads settings from defaults, an optional JSON file, a .env
// file and the environment, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultPath         = "~/.clima/config.json"
	DefaultICropBaseURL = "https://performance.icrop.online/homologacao/rest/v1/data"
	DefaultDebugLog     = "bin/middleware.debug.jsonl"
)

// Duration is a time.Duration written as "30s" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type LLMConfig struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider" validate:"oneof=openrouter openai ollama anthropic gemini"`
	Model    string `json:"model,omitempty"`
	BaseURL  string `json:"base_url,omitempty" validate:"omitempty,url"`
	APIKey   string `json:"api_key,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" validate:"oneof=text json"`
	// File, when set, receives the log instead of stderr.
	File string `json:"file,omitempty"`
	// DebugFile receives the middleware JSONL debug log; empty disables it.
	DebugFile string `json:"debug_file,omitempty"`
}

type Config struct {
	ICropBaseURL string   `json:"icrop_base_url" validate:"required,url"`
	ICropAPIKey  string   `json:"icrop_api_key,omitempty" validate:"required"`
	HTTPTimeout  Duration `json:"http_timeout" validate:"gt=0"`

	LLM LLMConfig `json:"llm"`
	Log LogConfig `json:"log"`

	WebAddr       string `json:"web_addr" validate:"required"`
	TelegramToken string `json:"telegram_token,omitempty"`

	SessionMax     int      `json:"session_max" validate:"gt=0"`
	SessionTTL     Duration `json:"session_ttl" validate:"gt=0"`
	StatusInterval Duration `json:"status_interval" validate:"gt=0"`

	// InputLimit caps the question length in characters; 0 keeps the
	// input_limit middleware default.
	InputLimit int `json:"input_limit,omitempty" validate:"gte=0"`

	CarryPartialContext bool     `json:"carry_partial_context"`
	Stations            []string `json:"stations,omitempty"`
	DisabledMiddlewares []string `json:"disabled_middlewares,omitempty"`
}

func Default() *Config {
	return &Config{
		ICropBaseURL: DefaultICropBaseURL,
		HTTPTimeout:  Duration(30 * time.Second),
		LLM: LLMConfig{
			Enabled:  true,
			Provider: "openrouter",
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			DebugFile: DefaultDebugLog,
		},
		WebAddr:        ":8080",
		SessionMax:     256,
		SessionTTL:     Duration(2 * time.Hour),
		StatusInterval: Duration(5 * time.Minute),
	}
}

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a JSON configuration on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) mergeFile(path string) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func (cfg *Config) SaveToFile(path string) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// may hold API keys
	return os.WriteFile(path, data, 0600)
}

var validate = validator.New()

// Validate checks the settings needed to serve questions.
func (cfg *Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading "~/" to the home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}

type lookupFunc func(string) (string, bool)

func (cfg *Config) applyEnv(lookup lookupFunc) error {
	setString(lookup, "CLIMA_ICROP_BASE_URL", &cfg.ICropBaseURL)
	setString(lookup, "CLIMA_ICROP_API_KEY", &cfg.ICropAPIKey)
	setString(lookup, "CLIMA_LLM_PROVIDER", &cfg.LLM.Provider)
	setString(lookup, "CLIMA_LLM_MODEL", &cfg.LLM.Model)
	setString(lookup, "CLIMA_LLM_BASE_URL", &cfg.LLM.BaseURL)
	setString(lookup, "CLIMA_LLM_API_KEY", &cfg.LLM.APIKey)
	setString(lookup, "CLIMA_LOG_LEVEL", &cfg.Log.Level)
	setString(lookup, "CLIMA_LOG_FORMAT", &cfg.Log.Format)
	setString(lookup, "CLIMA_LOG_FILE", &cfg.Log.File)
	setString(lookup, "CLIMA_DEBUG_LOG", &cfg.Log.DebugFile)
	setString(lookup, "CLIMA_WEB_ADDR", &cfg.WebAddr)
	setString(lookup, "TELEGRAM_BOT_TOKEN", &cfg.TelegramToken)
	setList(lookup, "CLIMA_STATIONS", &cfg.Stations)
	setList(lookup, "CLIMA_DISABLED_MIDDLEWARES", &cfg.DisabledMiddlewares)

	if cfg.LLM.APIKey == "" && cfg.LLM.Provider == "openrouter" {
		setString(lookup, "OPENROUTER_API_KEY", &cfg.LLM.APIKey)
	}
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := setBool(lookup, "CLIMA_LLM_ENABLED", &cfg.LLM.Enabled); err != nil {
		return err
	}
	if err := setBool(lookup, "CLIMA_CARRY_PARTIAL_CONTEXT", &cfg.CarryPartialContext); err != nil {
		return err
	}
	if err := setInt(lookup, "CLIMA_SESSION_MAX", &cfg.SessionMax); err != nil {
		return err
	}
	if err := setInt(lookup, "CLIMA_INPUT_LIMIT", &cfg.InputLimit); err != nil {
		return err
	}
	for key, dst := range map[string]*Duration{
		"CLIMA_HTTP_TIMEOUT":    &cfg.HTTPTimeout,
		"CLIMA_SESSION_TTL":     &cfg.SessionTTL,
		"CLIMA_STATUS_INTERVAL": &cfg.StatusInterval,
	} {
		if err := setDuration(lookup, key, dst); err != nil {
			return err
		}
	}
	return nil
}

func setString(lookup lookupFunc, key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func setList(lookup lookupFunc, key string, dst *[]string) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func setBool(lookup lookupFunc, key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(lookup lookupFunc, key string, dst *int) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(lookup lookupFunc, key string, dst *Duration) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = Duration(d)
	return nil
}
