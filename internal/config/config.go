package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Google       GoogleConfig
	SMTP         SMTPConfig
	Verification VerificationConfig
	Session      SessionConfig
	Dormancy     DormancyConfig
	StateSecret  string `mapstructure:"statesecret"`
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RedirectURL  string `mapstructure:"redirecturl"`
}

type SMTPConfig struct {
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
	Username string `mapstructure:"username"`
	Port     int    `mapstructure:"port"`
	Host     string `mapstructure:"host"`
}

// VerificationConfig controls the verification code engine.
type VerificationConfig struct {
	TTLMinutes  int `mapstructure:"ttlminutes"`
	MaxAttempts int `mapstructure:"maxattempts"`
	DailyCap    int `mapstructure:"dailycap"`
}

// SessionConfig controls session lifetimes, in hours.
type SessionConfig struct {
	SlidingHours          int `mapstructure:"slidinghours"`
	AbsoluteHours         int `mapstructure:"absolutehours"`
	RememberSlidingHours  int `mapstructure:"rememberslidinghours"`
	RememberAbsoluteHours int `mapstructure:"rememberabsolutehours"`
}

// DormancyConfig controls the inactivity sweep.
type DormancyConfig struct {
	ThresholdDays int `mapstructure:"thresholddays"`
	SweepHours    int `mapstructure:"sweephours"`
}

// Load creates a new Config object from environment variables.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Load .env into process environment for BindEnv to work with file-based envs
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ godotenv could not load .env: %v", err)
	}

	// Bind structured keys to environment variables
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("redis.url", "REDIS_URL")
	_ = viper.BindEnv("statesecret", "STATE_SECRET")
	_ = viper.BindEnv("google.clientid", "GOOGLE_CLIENT_ID")
	_ = viper.BindEnv("google.clientsecret", "GOOGLE_CLIENT_SECRET")
	_ = viper.BindEnv("google.redirecturl", "GOOGLE_REDIRECT_URL")
	_ = viper.BindEnv("smtp.from", "SMTP_FROM")
	_ = viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	_ = viper.BindEnv("smtp.username", "SMTP_USERNAME")
	_ = viper.BindEnv("smtp.port", "SMTP_PORT")
	_ = viper.BindEnv("smtp.host", "SMTP_HOST")
	_ = viper.BindEnv("verification.ttlminutes", "VERIFICATION_TTL_MINUTES")
	_ = viper.BindEnv("verification.maxattempts", "VERIFICATION_MAX_ATTEMPTS")
	_ = viper.BindEnv("verification.dailycap", "VERIFICATION_DAILY_CAP")
	_ = viper.BindEnv("session.slidinghours", "SESSION_SLIDING_HOURS")
	_ = viper.BindEnv("session.absolutehours", "SESSION_ABSOLUTE_HOURS")
	_ = viper.BindEnv("session.rememberslidinghours", "SESSION_REMEMBER_SLIDING_HOURS")
	_ = viper.BindEnv("session.rememberabsolutehours", "SESSION_REMEMBER_ABSOLUTE_HOURS")
	_ = viper.BindEnv("dormancy.thresholddays", "DORMANCY_THRESHOLD_DAYS")
	_ = viper.BindEnv("dormancy.sweephours", "DORMANCY_SWEEP_HOURS")

	if err := viper.ReadInConfig(); err != nil {
		// Only log a warning if the .env file is not found.
		// We can still proceed if all config is set via environment variables.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("❌ Error reading config file: %s", err)
		} else {
			log.Printf("⚠️ .env file not found, relying on environment variables")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("❌ Unable to decode config into struct: %v", err)
	}

	// --- Set default values ---
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Verification.TTLMinutes <= 0 {
		cfg.Verification.TTLMinutes = 15
	}
	if cfg.Verification.MaxAttempts <= 0 {
		cfg.Verification.MaxAttempts = 5
	}
	if cfg.Verification.DailyCap <= 0 {
		cfg.Verification.DailyCap = 5
	}
	if cfg.Session.SlidingHours <= 0 {
		cfg.Session.SlidingHours = 7 * 24
	}
	if cfg.Session.AbsoluteHours <= 0 {
		cfg.Session.AbsoluteHours = 30 * 24
	}
	if cfg.Session.RememberSlidingHours <= 0 {
		cfg.Session.RememberSlidingHours = 30 * 24
	}
	if cfg.Session.RememberAbsoluteHours <= 0 {
		cfg.Session.RememberAbsoluteHours = 90 * 24
	}
	if cfg.Dormancy.ThresholdDays <= 0 {
		cfg.Dormancy.ThresholdDays = 90
	}
	if cfg.Dormancy.SweepHours <= 0 {
		cfg.Dormancy.SweepHours = 24
	}

	log.Println("✅ Configuration loaded successfully")
	return &cfg
}
