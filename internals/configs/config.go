package configs

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the portal backend.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string
	DBTimeout  time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	MidtransServerKey string
	MidtransUseProd   bool
	GatewayCurrencies []string

	RedisAddr      string
	RedisPassword  string
	WebhookDedupTT time.Duration

	SendgridAPIKey string
	MailFrom       string

	RequestTimeout   time.Duration
	SchoolTimezone   string
	CorsOrigins      string
	BlacklistCleanup time.Duration
	AutoMigrate      bool
}

// =======================
// ENV LOADER
// =======================

// LoadEnv reads .env (outside Railway) and binds environment variables with defaults.
func LoadEnv() *Config {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found, using system environment")
		}
	}
	return Load(viper.New())
}

// Load builds a Config from v. Tests pass a fresh viper with Set overrides.
func Load(v *viper.Viper) *Config {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_STATEMENT_TIMEOUT", 3*time.Second)
	v.SetDefault("JWT_TTL", 12*time.Hour)
	v.SetDefault("MIDTRANS_USE_PROD", false)
	v.SetDefault("GATEWAY_CURRENCIES", "IDR")
	v.SetDefault("WEBHOOK_DEDUP_TTL", 24*time.Hour)
	v.SetDefault("MAIL_FROM", "noreply@localhost")
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("SCHOOL_TIMEZONE", "UTC")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("BLACKLIST_CLEANUP_INTERVAL", 24*time.Hour)
	v.SetDefault("AUTO_MIGRATE", false)
	v.AutomaticEnv()

	cfg := &Config{
		AppEnv:   v.GetString("APP_ENV"),
		Port:     v.GetString("PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		DBTimeout:  v.GetDuration("DB_STATEMENT_TIMEOUT"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		MidtransServerKey: strings.TrimSpace(v.GetString("MIDTRANS_SERVER_KEY")),
		MidtransUseProd:   v.GetBool("MIDTRANS_USE_PROD"),
		GatewayCurrencies: splitList(v.GetString("GATEWAY_CURRENCIES")),

		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		WebhookDedupTT: v.GetDuration("WEBHOOK_DEDUP_TTL"),

		SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
		MailFrom:       v.GetString("MAIL_FROM"),

		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		SchoolTimezone:   v.GetString("SCHOOL_TIMEZONE"),
		CorsOrigins:      v.GetString("CORS_ORIGINS"),
		BlacklistCleanup: v.GetDuration("BLACKLIST_CLEANUP_INTERVAL"),
		AutoMigrate:      v.GetBool("AUTO_MIGRATE"),
	}
	return cfg
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
