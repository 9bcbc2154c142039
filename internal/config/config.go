package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// DefaultContextPrompt es la guía que se adjunta a cada respuesta si no se configura otra.
const DefaultContextPrompt = `
These are the user attributes and organization attributes.
If the user or organization is a subscriber to the Enterprise plan, it is important to note that in the response to the support agent.
`

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"8080"`
	GinMode            string        `env:"GIN_MODE" envDefault:"release"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	ContextPrompt      string        `env:"CONTEXT_PROMPT"`
	DisablePrompt      bool          `env:"CONTEXT_PROMPT_DISABLED" envDefault:"false"`
	ResolveTimeout     time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"0"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	// CIDRs o IPs cuyos X-Forwarded-For se aceptan. Vacío: ninguno.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, err
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("invalid GIN_MODE %q: expected debug, release or test", cfg.GinMode)
	}
	return &cfg, nil
}

// Prompt devuelve la guía a adjuntar, o nil si está deshabilitada.
func (c *Config) Prompt() *string {
	if c.DisablePrompt {
		return nil
	}
	prompt := c.ContextPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultContextPrompt
	}
	return &prompt
}
