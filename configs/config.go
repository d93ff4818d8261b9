package configs

import (
	"os"
	"strconv"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Email     EmailConfig
	SMS       SMSConfig
	Webhook   WebhookConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration for the operator API
type JWTConfig struct {
	Secret string
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

// SMSConfig holds SMS gateway configuration
type SMSConfig struct {
	GatewayURL string
	Sender     string
}

// WebhookConfig holds payment callback authentication configuration.
// IntrospectionURL points at the external token verification service; when it
// is empty the bearer token is checked against TokenDigest (a bcrypt hash).
type WebhookConfig struct {
	IntrospectionURL string
	TokenDigest      string
}

// SchedulerConfig holds periodic job configuration
type SchedulerConfig struct {
	NPLScanHours int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, err
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, err
	}

	scanHours, err := strconv.Atoi(getEnv("NPL_SCAN_HOURS", "24"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port: port,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "lending_service"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "super_secret_key"),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.example.com"),
			SMTPPort:     smtpPort,
			SMTPUser:     getEnv("SMTP_USER", "user"),
			SMTPPassword: getEnv("SMTP_PASSWORD", "password"),
			SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@lending-service.com"),
		},
		SMS: SMSConfig{
			GatewayURL: getEnv("SMS_GATEWAY_URL", ""),
			Sender:     getEnv("SMS_SENDER", "LENDER"),
		},
		Webhook: WebhookConfig{
			IntrospectionURL: getEnv("WEBHOOK_INTROSPECTION_URL", ""),
			TokenDigest:      getEnv("WEBHOOK_TOKEN_DIGEST", ""),
		},
		Scheduler: SchedulerConfig{
			NPLScanHours: scanHours,
		},
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
