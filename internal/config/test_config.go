package config

import "time"

// TestConfig returns a config suitable for testing: no splash, no
// logging, short timeouts. Database.Path is left for the test to set.
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.Timeout = 5 * time.Second
	cfg.API.UserAgent = "cinematch-test/1.0"
	cfg.Database = DatabaseConfig{Timeout: 1 * time.Second}
	cfg.UI.Splash = SplashConfig{
		Enabled:   false,
		Duration:  20 * time.Millisecond,
		Tick:      10 * time.Millisecond,
		PostDelay: 10 * time.Millisecond,
	}
	cfg.Log = LogConfig{Level: "off"}
	return cfg
}
