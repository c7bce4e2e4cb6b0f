package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Users       []UserConfig
}

// UserConfig is one tenant's static configuration, loaded from the
// USER_CONFIGS JSON document at process start.
type UserConfig struct {
	Slug                 string `json:"slug"`
	CompanyName          string `json:"companyName"`
	ShopifyStoreSlug     string `json:"shopifyStoreSlug"`
	ShopifyAPIKey        string `json:"shopifyAPIKey"`
	ShopifyAPISecret     string `json:"shopifyAPISecret"`
	ShopifyLocationID    string `json:"shopifyLocationID"`
	ShopifyWritesEnabled bool   `json:"shopifyWritesEnabled"`
}

type userConfigsDocument struct {
	Users []UserConfig `json:"users"`
}

func Load() (*Config, error) {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
	}

	rawUsers := getEnvOrViper("USER_CONFIGS", "")
	if rawUsers == "" {
		return nil, fmt.Errorf("USER_CONFIGS is required")
	}
	users, err := ParseUserConfigs(rawUsers)
	if err != nil {
		return nil, err
	}
	cfg.Users = users

	return cfg, nil
}

// ParseUserConfigs parses the USER_CONFIGS JSON document and validates the
// fields each tenant needs before any request is served.
func ParseUserConfigs(raw string) ([]UserConfig, error) {
	var doc userConfigsDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("error parsing USER_CONFIGS: %w", err)
	}
	if len(doc.Users) == 0 {
		return nil, fmt.Errorf("USER_CONFIGS contains no users")
	}
	for i, u := range doc.Users {
		if u.Slug == "" {
			return nil, fmt.Errorf("USER_CONFIGS user %d: slug is required", i)
		}
		if u.ShopifyStoreSlug == "" {
			return nil, fmt.Errorf("USER_CONFIGS user %q: shopifyStoreSlug is required", u.Slug)
		}
		if u.ShopifyAPISecret == "" {
			return nil, fmt.Errorf("USER_CONFIGS user %q: shopifyAPISecret is required", u.Slug)
		}
	}
	return doc.Users, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
