package tui

import "time"

// Config holds chat configuration.
type Config struct {
	Theme     Theme
	SessionID string
	Timeout   time.Duration
	Width     int
	Height    int
}

// Option is a functional option for configuring the chat.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:   DefaultTheme,
		Timeout: 2 * time.Minute,
		Width:   80,
		Height:  24,
	}
}

// WithTheme sets the theme.
func WithTheme(theme Theme) Option {
	return func(c *Config) { c.Theme = theme }
}

// WithSession resumes an existing session.
func WithSession(id string) Option {
	return func(c *Config) { c.SessionID = id }
}

// WithTurnTimeout bounds how long one classification turn may take.
func WithTurnTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithSize sets the initial size used before the terminal reports one.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
