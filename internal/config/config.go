// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds everything the server reads at startup. Values come from
// flags, SPELLRUSH_* environment variables, or a .env file.
type Config struct {
	Bind           string
	Port           int
	SettleDelay    time.Duration
	AvatarUpstream string
	RedisAddr      string
	RedisDB        int
	WordsFile      string
	WordSeed       int64
	Verbose        bool
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Bind:           "0.0.0.0",
		Port:           8080,
		SettleDelay:    3 * time.Second,
		AvatarUpstream: "https://api.dicebear.com/9.x",
		WordSeed:       time.Now().UnixNano(),
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.SettleDelay <= 0 {
		return errors.New("settle delay must be positive")
	}
	if c.AvatarUpstream == "" {
		return errors.New("avatar upstream must not be empty")
	}
	return nil
}

// ListenAddr is the bind address handed to the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
