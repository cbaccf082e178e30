package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"roster/internal/pkg/roster"
)

// Config holds all configuration for the application
type Config struct {
	SourceURL    string
	UserAgent    string
	FetchTimeout time.Duration

	DatabasePath string
	TableName    string
	// KeyColumn is the schema column the API looks single companies up by.
	KeyColumn string

	Locator     roster.LocatorOptions
	FieldSpec   roster.FieldSpec
	Rules       roster.Rules
	FinalSchema roster.Schema

	RedisURL string
	Schedule string
	Port     string
	LogLevel string
}

// LoadConfig reads configuration from environment variables (.env file)
func LoadConfig() (*Config, error) {
	// Don't fail if .env is not present, env variables are often set directly.
	_ = godotenv.Load()

	timeout, err := strconv.Atoi(getEnv("ROSTER_FETCH_TIMEOUT", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROSTER_FETCH_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid ROSTER_FETCH_TIMEOUT: %d, must be a positive number of seconds", timeout)
	}

	return &Config{
		SourceURL:    getEnv("ROSTER_SOURCE_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
		UserAgent:    getEnv("ROSTER_USER_AGENT", "roster/1.0 (company roster pipeline)"),
		FetchTimeout: time.Duration(timeout) * time.Second,
		DatabasePath: getEnv("ROSTER_DB_PATH", "data/sp500_companies.db"),
		TableName:    getEnv("ROSTER_TABLE_NAME", "companies"),
		KeyColumn:    getEnv("ROSTER_KEY_COLUMN", "Symbol"),
		Locator: roster.LocatorOptions{
			TableID:       getEnv("ROSTER_TABLE_ID", "constituents"),
			Classes:       strings.Fields(getEnv("ROSTER_TABLE_CLASSES", "wikitable sortable")),
			Discriminator: getEnv("ROSTER_DISCRIMINATOR", "GICS Sector"),
		},
		FieldSpec:   DefaultFieldSpec(),
		Rules:       DefaultRules(),
		FinalSchema: DefaultSchema(),
		RedisURL:    getEnv("REDIS_URL", ""),
		Schedule:    getEnv("ROSTER_SCHEDULE", "0 6 * * *"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
	}, nil
}

// DefaultFieldSpec maps field names to the header text of the S&P 500 constituents table.
func DefaultFieldSpec() roster.FieldSpec {
	return roster.FieldSpec{
		{Field: "Symbol", Header: "Symbol"},
		{Field: "Security", Header: "Security"},
		{Field: "GICS_Sector", Header: "GICS Sector"},
		{Field: "GICS_Sub_Industry", Header: "GICS Sub-Industry"},
		{Field: "Headquarters_Location", Header: "Headquarters Location"},
		{Field: "Date_Added", Header: "Date added"},
		{Field: "CIK", Header: "CIK"},
		{Field: "Founded", Header: "Founded"},
	}
}

func DefaultRules() roster.Rules {
	return roster.Rules{
		{Kind: roster.RuleDate, Source: "Date_Added"},
		{Kind: roster.RuleYear, Source: "Founded", Targets: []string{"Founded_Year"}},
		{Kind: roster.RuleLocation, Source: "Headquarters_Location", Targets: []string{"Headquarters_City", "Headquarters_State"}},
		{Kind: roster.RuleIdentifier, Source: "CIK"},
	}
}

func DefaultSchema() roster.Schema {
	return roster.Schema{
		{Name: "Symbol", Kind: roster.KindText},
		{Name: "Security", Kind: roster.KindText},
		{Name: "GICS_Sector", Kind: roster.KindText},
		{Name: "GICS_Sub_Industry", Kind: roster.KindText},
		{Name: "Headquarters_City", Kind: roster.KindText},
		{Name: "Headquarters_State", Kind: roster.KindText},
		{Name: "Date_Added", Kind: roster.KindDate},
		{Name: "CIK", Kind: roster.KindInteger},
		{Name: "Founded_Year", Kind: roster.KindInteger},
	}
}

// Helper function to get env var or return default
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
