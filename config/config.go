// Package config loads the transformer's configuration from the environment
// and an optional .env file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// API environment names selectable through API_MODE.
const (
	ModeABN  = "ABN"
	ModeProd = "PROD"
)

// Config carries every tunable of the transformer suite. Values come from
// environment variables, hydrated from a .env file when one exists.
type Config struct {
	// Publisher information
	PublisherIdentifier string `mapstructure:"PUBLISHER_IDENTIFIER"`
	PublisherName       string `mapstructure:"PUBLISHER_NAME"`

	// Default concept values. The publication level is accepted from the
	// environment but not emitted in the concept document.
	DefaultVersion          string `mapstructure:"DEFAULT_VERSION"`
	DefaultPublicationLevel string `mapstructure:"DEFAULT_PUBLICATION_LEVEL"`
	DefaultConceptType      string `mapstructure:"DEFAULT_CONCEPT_TYPE"`
	DefaultValueType        string `mapstructure:"DEFAULT_VALUE_TYPE"`
	DefaultValueMaxLength   int    `mapstructure:"DEFAULT_VALUE_MAX_LENGTH"`

	// Period defaults applied to every codelist entry
	DefaultPeriodStart string `mapstructure:"DEFAULT_PERIOD_START"`
	DefaultPeriodEnd   string `mapstructure:"DEFAULT_PERIOD_END"`

	// Publisher persons resolvable by their short names
	ResponsibleShortName string `mapstructure:"DEFAULT_RESPONSIBLE_SHORT_NAME"`
	ResponsibleEmail     string `mapstructure:"DEFAULT_RESPONSIBLE_EMAIL"`
	DeputyShortName      string `mapstructure:"DEFAULT_DEPUTY_SHORT_NAME"`
	DeputyEmail          string `mapstructure:"DEFAULT_DEPUTY_EMAIL"`

	// I14Y API access, one credential set per environment
	APIMode          string `mapstructure:"API_MODE"`
	ABNClientID      string `mapstructure:"ABN_CLIENT_ID"`
	ABNClientSecret  string `mapstructure:"ABN_CLIENT_SECRET"`
	ABNTokenURL      string `mapstructure:"ABN_TOKEN_URL"`
	ABNBaseURL       string `mapstructure:"ABN_BASE_API_URL"`
	ProdClientID     string `mapstructure:"PROD_CLIENT_ID"`
	ProdClientSecret string `mapstructure:"PROD_CLIENT_SECRET"`
	ProdTokenURL     string `mapstructure:"PROD_TOKEN_URL"`
	ProdBaseURL      string `mapstructure:"PROD_BASE_API_URL"`

	// Codelist name to registry id mapping file, empty for the built-in table
	CodelistMappingFile string `mapstructure:"CODELIST_MAPPING_FILE"`

	// Web front end
	ServerPort   string `mapstructure:"SERVER_PORT"`
	UploadFolder string `mapstructure:"UPLOAD_FOLDER"`
	OutputFolder string `mapstructure:"OUTPUT_FOLDER"`
}

// Credentials is the API credential set selected by API_MODE.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
}

// Load reads configuration from a .env file (when present) and the process
// environment. Environment variables win over file entries.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PUBLISHER_IDENTIFIER", "CH_eHealth")
	v.SetDefault("PUBLISHER_NAME", "eHealth Suisse")
	v.SetDefault("DEFAULT_VERSION", "2.0.0")
	v.SetDefault("DEFAULT_PUBLICATION_LEVEL", "Internal")
	v.SetDefault("DEFAULT_CONCEPT_TYPE", "CodeList")
	v.SetDefault("DEFAULT_VALUE_TYPE", "String")
	v.SetDefault("DEFAULT_VALUE_MAX_LENGTH", 30)
	v.SetDefault("DEFAULT_PERIOD_START", "2024-06-01")
	v.SetDefault("DEFAULT_PERIOD_END", "2100-06-01")
	v.SetDefault("API_MODE", ModeABN)
	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("UPLOAD_FOLDER", "uploads")
	v.SetDefault("OUTPUT_FOLDER", "AD_VS/Transformed")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PUBLISHER_IDENTIFIER")
	v.BindEnv("PUBLISHER_NAME")
	v.BindEnv("DEFAULT_VERSION")
	v.BindEnv("DEFAULT_PUBLICATION_LEVEL")
	v.BindEnv("DEFAULT_CONCEPT_TYPE")
	v.BindEnv("DEFAULT_VALUE_TYPE")
	v.BindEnv("DEFAULT_VALUE_MAX_LENGTH")
	v.BindEnv("DEFAULT_PERIOD_START")
	v.BindEnv("DEFAULT_PERIOD_END")
	v.BindEnv("DEFAULT_RESPONSIBLE_SHORT_NAME")
	v.BindEnv("DEFAULT_RESPONSIBLE_EMAIL")
	v.BindEnv("DEFAULT_DEPUTY_SHORT_NAME")
	v.BindEnv("DEFAULT_DEPUTY_EMAIL")
	v.BindEnv("API_MODE")
	v.BindEnv("ABN_CLIENT_ID")
	v.BindEnv("ABN_CLIENT_SECRET")
	v.BindEnv("ABN_TOKEN_URL")
	v.BindEnv("ABN_BASE_API_URL")
	v.BindEnv("PROD_CLIENT_ID")
	v.BindEnv("PROD_CLIENT_SECRET")
	v.BindEnv("PROD_TOKEN_URL")
	v.BindEnv("PROD_BASE_API_URL")
	v.BindEnv("CODELIST_MAPPING_FILE")
	v.BindEnv("SERVER_PORT")
	v.BindEnv("UPLOAD_FOLDER")
	v.BindEnv("OUTPUT_FOLDER")

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.APIMode != ModeABN && cfg.APIMode != ModeProd {
		return nil, fmt.Errorf("API_MODE must be %q or %q, got %q", ModeABN, ModeProd, cfg.APIMode)
	}

	return cfg, nil
}

// APICredentials returns the credential set selected by API_MODE.
func (c *Config) APICredentials() Credentials {
	if c.APIMode == ModeProd {
		return Credentials{
			ClientID:     c.ProdClientID,
			ClientSecret: c.ProdClientSecret,
			TokenURL:     c.ProdTokenURL,
			BaseURL:      c.ProdBaseURL,
		}
	}
	return Credentials{
		ClientID:     c.ABNClientID,
		ClientSecret: c.ABNClientSecret,
		TokenURL:     c.ABNTokenURL,
		BaseURL:      c.ABNBaseURL,
	}
}

// Persons returns the short-name to email pairs configured for the person
// directory. Unset pairs are left out.
func (c *Config) Persons() map[string]string {
	persons := make(map[string]string)
	if c.ResponsibleShortName != "" {
		persons[c.ResponsibleShortName] = c.ResponsibleEmail
	}
	if c.DeputyShortName != "" {
		persons[c.DeputyShortName] = c.DeputyEmail
	}
	return persons
}
