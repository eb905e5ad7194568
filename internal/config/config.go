// Package config loads the relay configuration from defaults, an optional
// YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	relayllm "github.com/HerbHall/notebookrelay/internal/llm"
	"github.com/HerbHall/notebookrelay/internal/runner"
	"github.com/HerbHall/notebookrelay/internal/server"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the
// environment: RELAY_SERVER_PORT=9090 sets server.port.
const EnvPrefix = "RELAY"

// Config is the fully decoded relay configuration.
type Config struct {
	Server   server.Config         `mapstructure:"server"`
	CORS     server.CORSConfig     `mapstructure:"cors"`
	Logging  LoggingConfig         `mapstructure:"logging"`
	Provider relayllm.ModuleConfig `mapstructure:"provider"`
	Runner   runner.Config         `mapstructure:"runner"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// conventionalEnv maps the variables most provider tooling already uses onto
// their configuration keys.
var conventionalEnv = map[string]string{
	"provider.openai.api_key":    "OPENAI_API_KEY",
	"provider.openai.base_url":   "OPENAI_BASE_URL",
	"provider.anthropic.api_key": "ANTHROPIC_API_KEY",
	"provider.gemini.api_key":    "GEMINI_API_KEY",
	"provider.ollama.url":        "OLLAMA_HOST",
	"provider.ollama.model":      "OLLAMA_MODEL",
}

// Load reads configuration from file and environment variables. envFile
// defaults to ".env"; a missing env file or config file is not an error.
func Load(configPath, envFile string) (*viper.Viper, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("notebookrelay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/notebookrelay")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range conventionalEnv {
		// The prefixed variable wins when both are set.
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	srv := server.DefaultConfig()
	v.SetDefault("server.host", srv.Host)
	v.SetDefault("server.port", srv.Port)
	v.SetDefault("server.read_timeout", srv.ReadTimeout)
	v.SetDefault("server.write_timeout", srv.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", srv.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", srv.MaxBodyBytes)

	cors := server.DefaultCORSConfig()
	v.SetDefault("cors.allowed_origins", cors.AllowedOrigins)
	v.SetDefault("cors.allowed_methods", cors.AllowedMethods)
	v.SetDefault("cors.allowed_headers", cors.AllowedHeaders)
	v.SetDefault("cors.allow_credentials", cors.AllowCredentials)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	p := relayllm.DefaultModuleConfig()
	v.SetDefault("provider.name", p.Name)
	v.SetDefault("provider.probe_timeout", p.ProbeTimeout)
	v.SetDefault("provider.health_timeout", p.HealthTimeout)
	v.SetDefault("provider.temperature", p.Temperature)
	v.SetDefault("provider.top_p", p.TopP)
	v.SetDefault("provider.context_window", p.ContextWindow)

	v.SetDefault("provider.ollama.url", p.Ollama.URL)
	v.SetDefault("provider.ollama.model", p.Ollama.Model)
	v.SetDefault("provider.ollama.timeout", p.Ollama.Timeout)
	v.SetDefault("provider.ollama.docker_host", p.Ollama.DockerHost)
	v.SetDefault("provider.ollama.fallback_models", p.Ollama.FallbackModels)

	v.SetDefault("provider.openai.base_url", p.OpenAI.BaseURL)
	v.SetDefault("provider.openai.api_key", "")
	v.SetDefault("provider.openai.model", p.OpenAI.Model)
	v.SetDefault("provider.openai.timeout", p.OpenAI.Timeout)
	v.SetDefault("provider.openai.fallback_models", p.OpenAI.FallbackModels)

	v.SetDefault("provider.anthropic.base_url", p.Anthropic.BaseURL)
	v.SetDefault("provider.anthropic.api_key", "")
	v.SetDefault("provider.anthropic.model", p.Anthropic.Model)
	v.SetDefault("provider.anthropic.timeout", p.Anthropic.Timeout)
	v.SetDefault("provider.anthropic.max_tokens", p.Anthropic.MaxTokens)
	v.SetDefault("provider.anthropic.fallback_models", p.Anthropic.FallbackModels)

	v.SetDefault("provider.gemini.api_key", "")
	v.SetDefault("provider.gemini.model", p.Gemini.Model)
	v.SetDefault("provider.gemini.timeout", p.Gemini.Timeout)
	v.SetDefault("provider.gemini.fallback_models", p.Gemini.FallbackModels)

	r := runner.DefaultConfig()
	v.SetDefault("runner.name", r.Name)
	v.SetDefault("runner.subprocess.command", r.Subprocess.Command)
	v.SetDefault("runner.subprocess.timeout", r.Subprocess.Timeout)
	v.SetDefault("runner.subprocess.epilogue", r.Subprocess.Epilogue)
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the relay cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("server.max_body_bytes must not be negative"))
	}
	switch c.Provider.Name {
	case "", relayllm.ProviderOllama, relayllm.ProviderOpenAI, relayllm.ProviderAnthropic, relayllm.ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown provider.name %q", c.Provider.Name))
	}
	switch c.Runner.Name {
	case "", runner.NameStarlark, runner.NameJavaScript, runner.NameSubprocess:
	default:
		errs = append(errs, fmt.Errorf("unknown runner.name %q", c.Runner.Name))
	}
	if c.Runner.Name == runner.NameSubprocess && len(c.Runner.Subprocess.Command) == 0 {
		errs = append(errs, errors.New("runner.subprocess.command must not be empty"))
	}
	return errors.Join(errs...)
}
