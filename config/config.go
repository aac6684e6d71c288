package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`
	TrustedProxies    string `mapstructure:"TRUSTED_PROXIES"`
	Timezone          string `mapstructure:"TIMEZONE"`

	// Storage. STORE_DRIVER is one of "mongo", "postgres" or "sqlite".
	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	PostgresDSN   string `mapstructure:"POSTGRES_DSN"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisRateLimitDB int    `mapstructure:"REDIS_RATE_LIMIT_DB"`
	RedisEventsDB    int    `mapstructure:"REDIS_EVENTS_DB"`
	RedisQueueDB     int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking admission and timeouts.
	BookingRateLimitMax       int `mapstructure:"BOOKING_RATE_LIMIT_MAX"`
	BookingRateLimitWindowMin int `mapstructure:"BOOKING_RATE_LIMIT_WINDOW_MIN"`
	RateLimitTimeoutMS        int `mapstructure:"RATE_LIMIT_TIMEOUT_MS"`
	ReservationTimeoutMS      int `mapstructure:"RESERVATION_TIMEOUT_MS"`
	NotesMaxLength            int `mapstructure:"NOTES_MAX_LENGTH"`

	// Pricing.
	HomeServiceFee float64 `mapstructure:"HOME_SERVICE_FEE"`

	// Notifications. NOTIFIER is one of "queue", "pubsub" or "none".
	Notifier          string `mapstructure:"NOTIFIER"`
	NotifyTimeoutMS   int    `mapstructure:"NOTIFY_TIMEOUT_MS"`
	RealtimeChannel   string `mapstructure:"REALTIME_CHANNEL"`
	ReminderLeadHours int    `mapstructure:"REMINDER_LEAD_HOURS"`
	RunWorker         bool   `mapstructure:"RUN_WORKER"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("TIMEZONE", "Europe/Lisbon")

	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("MONGO_DATABASE", "tuwi")
	v.SetDefault("POSTGRES_DSN", "host=localhost user=tuwi password=tuwi dbname=tuwi port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("SQLITE_PATH", "tuwi.db")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_RATE_LIMIT_DB", 0)
	v.SetDefault("REDIS_EVENTS_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)

	v.SetDefault("BOOKING_RATE_LIMIT_MAX", 5)
	v.SetDefault("BOOKING_RATE_LIMIT_WINDOW_MIN", 60)
	v.SetDefault("RATE_LIMIT_TIMEOUT_MS", 2000)
	v.SetDefault("RESERVATION_TIMEOUT_MS", 10000)
	v.SetDefault("NOTES_MAX_LENGTH", 500)

	v.SetDefault("HOME_SERVICE_FEE", 10.0)

	v.SetDefault("NOTIFIER", "queue")
	v.SetDefault("NOTIFY_TIMEOUT_MS", 3000)
	v.SetDefault("REALTIME_CHANNEL", "tuwi:bookings")
	v.SetDefault("REMINDER_LEAD_HOURS", 24)
	v.SetDefault("RUN_WORKER", true)
}

// LoadConfig reads .env (if present), config.yaml (if present) and the environment.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	cfg, err := unmarshal(v)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Defaults returns a Config populated only from defaults. Tests start from it.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := unmarshal(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.Notifier = strings.ToLower(strings.TrimSpace(cfg.Notifier))
	return cfg, nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SplitList turns a comma-separated setting into its non-empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
