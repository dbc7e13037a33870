package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DefaultContactEmailTo receives submissions when CONTACT_EMAIL_TO is unset.
	DefaultContactEmailTo = "hello@agency.dev"
	DefaultEmailFrom      = "Website Contact Form <onboarding@resend.dev>"
)

// placeholderKeys are copy-pasted sample values that must never reach a browser.
var placeholderKeys = map[string]bool{
	"your_site_key_here":   true,
	"your_secret_key_here": true,
	"changeme":             true,
	"placeholder":          true,
	"xxx":                  true,
}

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	// Email delivery
	EmailProvider    string // resend, ses, smtp, console
	ResendAPIKey     string
	AWSRegion        string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFrom        string // fixed sender identity
	ContactEmailTo   string
	EmailSendTimeout time.Duration
	// Bot mitigation (reCAPTCHA)
	RecaptchaSiteKey   string
	RecaptchaSecretKey string
	RecaptchaMinScore  float64
	RecaptchaRequired  bool
	// Redis/Upstash Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitEnabled       bool
	RateLimitLimit         int
	RateLimitWindowSeconds int
	// Failed delivery archive
	DBUrl                 string
	FailedDeliveryArchive bool
	AdminJWTSecret        string
	// Client behaviour published through GET /api/config
	BannerDisplaySeconds int

	// Degraded is set when the service runs without a real email provider
	// or without bot protection it was asked for.
	Degraded bool
	// Warnings collected while validating, logged once the logger exists.
	Warnings []string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),
		// Email
		EmailProvider:    strings.ToLower(getEnv("EMAIL_PROVIDER", "resend")),
		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		AWSRegion:        getEnv("AWS_REGION", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFrom:        getEnv("EMAIL_FROM", DefaultEmailFrom),
		ContactEmailTo:   getEnv("CONTACT_EMAIL_TO", ""),
		EmailSendTimeout: getEnvDuration("EMAIL_SEND_TIMEOUT", 15*time.Second),
		// Bot mitigation
		RecaptchaSiteKey:   strings.TrimSpace(getEnv("RECAPTCHA_SITE_KEY", "")),
		RecaptchaSecretKey: strings.TrimSpace(getEnv("RECAPTCHA_SECRET_KEY", "")),
		RecaptchaMinScore:  getEnvFloat("RECAPTCHA_MIN_SCORE", 0.5),
		RecaptchaRequired:  getEnvBool("RECAPTCHA_REQUIRED", false),
		// Redis
		RedisURL:      getEnv("REDIS_URL", getEnv("UPSTASH_REDIS_URL", "")),
		RedisPassword: getEnv("REDIS_PASSWORD", getEnv("UPSTASH_REDIS_PASSWORD", "")),
		// Rate limiting is off unless asked for
		RateLimitEnabled:       getEnvBool("RATE_LIMIT_ENABLED", false),
		RateLimitLimit:         getEnvInt("RATE_LIMIT_LIMIT", 5),
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 600),
		// Archive
		DBUrl:                 getEnv("DATABASE_URL", ""),
		FailedDeliveryArchive: getEnvBool("FAILED_DELIVERY_ARCHIVE", false),
		AdminJWTSecret:        getEnv("ADMIN_JWT_SECRET", ""),
		BannerDisplaySeconds:  getEnvInt("BANNER_DISPLAY_SECONDS", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// BotProtectionEnabled reports whether submissions are verified server-side
func (c *Config) BotProtectionEnabled() bool {
	return c.RecaptchaSecretKey != ""
}

// Validate rejects configurations that would silently run on sample or
// missing credentials. In development a missing email credential falls back
// to the console provider and marks the config degraded.
func (c *Config) Validate() error {
	var errs []error

	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}

	if c.ContactEmailTo == "" {
		c.ContactEmailTo = DefaultContactEmailTo
		c.warn("CONTACT_EMAIL_TO not set, submissions go to " + DefaultContactEmailTo)
	}
	if c.EmailFrom == "" {
		errs = append(errs, errors.New("EMAIL_FROM must not be empty"))
	} else if c.EmailFrom == DefaultEmailFrom && c.IsProduction() {
		c.warn("EMAIL_FROM is the Resend sandbox sender; providers reject it for unverified domains, set a verified address")
	}

	if missing := c.missingProviderSetting(); missing != "" {
		if c.IsProduction() {
			errs = append(errs, fmt.Errorf("EMAIL_PROVIDER=%s requires %s", c.EmailProvider, missing))
		} else {
			c.warn(fmt.Sprintf("%s not set, falling back to console email provider (degraded mode)", missing))
			c.EmailProvider = "console"
			c.Degraded = true
		}
	}
	if c.EmailProvider == "console" && c.IsProduction() {
		errs = append(errs, errors.New("EMAIL_PROVIDER=console is not allowed in production"))
	}

	if isPlaceholder(c.RecaptchaSiteKey) {
		c.warn("RECAPTCHA_SITE_KEY holds a placeholder value, ignoring it")
		c.RecaptchaSiteKey = ""
	}
	if isPlaceholder(c.RecaptchaSecretKey) {
		c.warn("RECAPTCHA_SECRET_KEY holds a placeholder value, ignoring it")
		c.RecaptchaSecretKey = ""
	}
	if (c.RecaptchaSiteKey == "") != (c.RecaptchaSecretKey == "") {
		errs = append(errs, errors.New("RECAPTCHA_SITE_KEY and RECAPTCHA_SECRET_KEY must be set together"))
	}
	if c.RecaptchaRequired && c.RecaptchaSecretKey == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("RECAPTCHA_REQUIRED=true but no reCAPTCHA keys are configured"))
		} else {
			c.warn("RECAPTCHA_REQUIRED=true but no reCAPTCHA keys are configured, bot protection disabled (degraded mode)")
			c.Degraded = true
		}
	}
	if c.RecaptchaMinScore < 0 || c.RecaptchaMinScore > 1 {
		errs = append(errs, fmt.Errorf("RECAPTCHA_MIN_SCORE must be within [0, 1], got %v", c.RecaptchaMinScore))
	}

	if c.RateLimitEnabled {
		if c.RateLimitLimit <= 0 || c.RateLimitWindowSeconds <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_LIMIT and RATE_LIMIT_WINDOW_SECONDS must be positive"))
		}
		if c.RedisURL == "" {
			c.warn("REDIS_URL not configured, rate limiting will use in-memory fallback")
		}
	}

	if c.FailedDeliveryArchive && c.DBUrl == "" {
		errs = append(errs, errors.New("FAILED_DELIVERY_ARCHIVE=true requires DATABASE_URL"))
	}
	if c.AdminJWTSecret != "" && len(c.AdminJWTSecret) < 32 {
		errs = append(errs, errors.New("ADMIN_JWT_SECRET must be at least 32 characters"))
	}

	if c.BannerDisplaySeconds <= 0 {
		c.BannerDisplaySeconds = 5
	}

	return errors.Join(errs...)
}

// missingProviderSetting names the env var the selected provider still needs.
func (c *Config) missingProviderSetting() string {
	switch c.EmailProvider {
	case "resend":
		if c.ResendAPIKey == "" {
			return "RESEND_API_KEY"
		}
	case "ses":
		if c.AWSRegion == "" {
			return "AWS_REGION"
		}
	case "smtp":
		if c.SMTPHost == "" {
			return "SMTP_HOST"
		}
	case "console":
	default:
		return "a supported EMAIL_PROVIDER (resend, ses, smtp, console)"
	}
	return ""
}

func (c *Config) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

func isPlaceholder(key string) bool {
	return key != "" && placeholderKeys[strings.ToLower(key)]
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimRight(strings.TrimSpace(part), "/"); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
