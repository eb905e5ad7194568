package ollama

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the Ollama provider configuration.
type Config struct {
	URL            string        `mapstructure:"url"`
	Model          string        `mapstructure:"model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	DockerHost     string        `mapstructure:"docker_host"`
	FallbackModels []string      `mapstructure:"fallback_models"`
}

// DefaultConfig returns sensible defaults for local Ollama.
func DefaultConfig() Config {
	return Config{
		URL:            "http://localhost:11434",
		Model:          "llama3.2",
		Timeout:        30 * time.Second,
		DockerHost:     "host.docker.internal",
		FallbackModels: []string{"llama3.2", "mistral", "codellama"},
	}
}

// inContainer reports whether the process runs inside a Docker container.
// Replaced in tests.
var inContainer = func() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// ResolveURL returns the base URL the provider should dial. A bare host:port
// (the OLLAMA_HOST convention) gets an http scheme, and loopback hosts are
// rewritten to DockerHost when running inside a container, where localhost
// is the container itself rather than the machine running Ollama.
func (c Config) ResolveURL() (*url.URL, error) {
	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		raw = DefaultConfig().URL
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", c.URL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse ollama url %q: missing host", c.URL)
	}

	if c.DockerHost != "" && isLoopback(u.Hostname()) && inContainer() {
		if port := u.Port(); port != "" {
			u.Host = net.JoinHostPort(c.DockerHost, port)
		} else {
			u.Host = c.DockerHost
		}
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
