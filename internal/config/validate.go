package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.JWTSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/innario/config.toml"
		}
		return fmt.Errorf("auth.jwt_secret is required. Set INNARIO_JWT_SECRET env var or edit %s (create with 'innario config init')", defaultPath)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("auth.token_ttl_minutes must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return errors.New("auth.bcrypt_cost must be between 4 and 31")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Path == "" {
		return errors.New("catalog.path must be set")
	}
	if c.Catalog.BaseURL == "" {
		return errors.New("catalog.base_url must be set")
	}
	if c.Catalog.Language == "" {
		return errors.New("catalog.language must be set")
	}
	if c.Catalog.FetchTimeout <= 0 {
		return errors.New("catalog.fetch_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateSelection() error {
	if c.Selection.LookbackWeeks <= 0 {
		return errors.New("selection.lookback_weeks must be positive")
	}
	if c.Selection.RelaxedWeeks <= 0 {
		return errors.New("selection.relaxed_weeks must be positive")
	}
	if c.Selection.RelaxedWeeks >= c.Selection.LookbackWeeks {
		return errors.New("selection.relaxed_weeks must be less than selection.lookback_weeks")
	}
	return nil
}
