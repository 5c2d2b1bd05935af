package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidateDriver validates the database driver name
func ValidateDriver(driver string) error {
	switch driver {
	case "postgres", "sqlite":
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q (expected postgres or sqlite)", driver)
	}
}

// Validate fails fast on configuration the server cannot start without.
func (c Config) Validate() error {
	var missing []string
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.GitHub.ClientID == "" {
		missing = append(missing, "GITHUB_CLIENT_ID")
	}
	if c.GitHub.ClientSecret == "" {
		missing = append(missing, "GITHUB_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if err := ValidateDriver(c.Database.Driver); err != nil {
		return err
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if err := ValidateTimeout(c.OpenAI.STTTimeout, "speech-to-text"); err != nil {
		return err
	}
	if err := ValidateTimeout(c.OpenAI.EnhanceTimeout, "enhancement"); err != nil {
		return err
	}
	return nil
}
