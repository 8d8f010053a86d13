package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// SMTP
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	OwnerEmail string

	// Google Sheets
	SheetID           string
	GoogleClientEmail string
	GooglePrivateKey  string

	// Groq
	GroqAPIKey string
	GroqModel  string

	// Lead archive
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPass:          getEnv("SMTP_PASS", ""),
		FromEmail:         getEnv("FROM_EMAIL", ""),
		OwnerEmail:        getEnv("OWNER_EMAIL", ""),
		SheetID:           getEnv("GOOGLE_SHEET_ID", ""),
		GoogleClientEmail: getEnv("GOOGLE_CLIENT_EMAIL", ""),
		GooglePrivateKey:  NormalizePrivateKey(getEnv("GOOGLE_PRIVATE_KEY", "")),
		GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
		GroqModel:         getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
		DBPath:            getEnv("DB_PATH", "./leads.db"),
		DBHost:            getEnv("DB_HOST", ""),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", ""),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
	}

	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}

	return cfg
}

// NormalizePrivateKey converts literal \n sequences into real newlines.
// Hosting panels often store the PEM key on a single line.
func NormalizePrivateKey(key string) string {
	if strings.Contains(key, `\n`) {
		return strings.ReplaceAll(key, `\n`, "\n")
	}
	return key
}

// LogEnvCheck prints which configuration groups are usable. Values are never
// logged, only presence.
func (c *Config) LogEnvCheck() {
	log.Println("=== ENV CHECK AT STARTUP ===")
	log.Printf("GROQ_API_KEY set: %v", c.GroqAPIKey != "")
	log.Printf("GOOGLE_SHEET_ID: %s", presence(c.SheetID != ""))
	log.Printf("GOOGLE_CLIENT_EMAIL: %s", presence(c.GoogleClientEmail != ""))
	log.Printf("GOOGLE_PRIVATE_KEY looks like PEM: %v", c.PrivateKeyLooksValid())
	log.Printf("OWNER_EMAIL: %s", presence(c.OwnerEmail != ""))
	log.Printf("SMTP_HOST: %s", presence(c.SMTPHost != ""))
	log.Printf("SMTP_USER set: %v", c.SMTPUser != "")
	log.Println("============================")
}

func (c *Config) PrivateKeyLooksValid() bool {
	return strings.Contains(c.GooglePrivateKey, "BEGIN PRIVATE KEY")
}

func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func (c *Config) SheetsConfigured() bool {
	return c.SheetID != "" && c.GoogleClientEmail != "" && c.GooglePrivateKey != ""
}

// DebugReport is the payload for GET /debug: presence or absence of each
// required value, never the value itself.
func (c *Config) DebugReport() map[string]interface{} {
	privateKey := "invalid_or_missing"
	if c.PrivateKeyLooksValid() {
		privateKey = "looks_ok"
	}
	return map[string]interface{}{
		"GROQ_API_KEY":        c.GroqAPIKey != "",
		"GOOGLE_SHEET_ID":     presence(c.SheetID != ""),
		"GOOGLE_CLIENT_EMAIL": c.GoogleClientEmail != "",
		"GOOGLE_PRIVATE_KEY":  privateKey,
		"OWNER_EMAIL":         c.OwnerEmail != "",
		"SMTP_HOST":           presence(c.SMTPHost != ""),
		"SMTP_PORT":           presence(c.SMTPPort != ""),
		"SMTP_USER":           c.SMTPUser != "",
	}
}

func presence(set bool) string {
	if set {
		return "present"
	}
	return "MISSING"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
