package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, production

	// SMTP
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	// Envelope
	SenderEmail    string
	SenderName     string
	RecipientEmail string
	RecipientName  string

	// Subjects
	RegistrationSubject string
	ContactSubject      string

	// Uploads
	UploadDir      string
	MaxUploadBytes int64
	AllowedTypes   []string
	StripMetadata  bool
	JanitorEvery   time.Duration
	JanitorMaxAge  time.Duration

	// Limits
	SendTimeout        time.Duration
	RateLimitPerMinute int

	// Optional PGP/MIME encryption of outgoing mail
	PGPPublicKeyPath string
}

// Load reads configuration from the environment. A .env file is honored if
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),

		SenderEmail:    getEnv("SENDER_EMAIL", "noreply@example.org"),
		SenderName:     getEnv("SENDER_NAME", "Driver License Registration System"),
		RecipientEmail: getEnv("RECIPIENT_EMAIL", ""),
		RecipientName:  getEnv("RECIPIENT_NAME", "Contact Form Handler"),

		RegistrationSubject: getEnv("REGISTRATION_SUBJECT", "New Driver License Registration"),
		ContactSubject:      getEnv("CONTACT_SUBJECT", "New Contact Form Submission"),

		UploadDir:      getEnv("UPLOAD_DIR", "temp_uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
		AllowedTypes: []string{
			"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp",
		},
		StripMetadata: getEnvBool("STRIP_METADATA", true),
		JanitorEvery:  getEnvDuration("JANITOR_EVERY", time.Hour),
		JanitorMaxAge: getEnvDuration("JANITOR_MAX_AGE", 24*time.Hour),

		SendTimeout:        getEnvDuration("SEND_TIMEOUT", 15*time.Second),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		PGPPublicKeyPath: getEnv("PGP_PUBLIC_KEY_PATH", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	// SMTP settings stay optional so the service can run in development
	// without a relay; the sender logs messages instead of delivering them.
	if c.SMTPHost != "" && c.RecipientEmail == "" {
		return fmt.Errorf("RECIPIENT_EMAIL is required when SMTP_HOST is set")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
