// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config holds every setting the commands read.
type Config struct {
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	Database Database

	OrderIDMaxAttempts int           `envconfig:"ORDER_ID_MAX_ATTEMPTS" default:"32"`
	RestockOnCancel    bool          `envconfig:"RESTOCK_ON_CANCEL" default:"false"`
	AuthTokenTTL       time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"12h"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"8h"`

	Storage Storage

	ChromePath     string `envconfig:"CHROME_PATH"`
	PrinterAddress string `envconfig:"PRINTER_ADDRESS"`

	Proxy Proxy
}

// Database selects the Postgres connection.
type Database struct {
	URL          string `envconfig:"DATABASE_URL"`
	Host         string `envconfig:"DB_HOST"`
	Port         string `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER"`
	Password     string `envconfig:"DB_PASSWORD"`
	Name         string `envconfig:"DB_NAME"`
	SSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
}

// Storage selects where item images go.
type Storage struct {
	Driver          string `envconfig:"STORAGE_DRIVER" default:"local"`
	LocalDir        string `envconfig:"STORAGE_LOCAL_DIR" default:"uploads"`
	PublicURLPrefix string `envconfig:"STORAGE_PUBLIC_URL_PREFIX" default:"/uploads"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Region        string `envconfig:"S3_REGION" default:"ap-south-1"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
	DriveFolderID   string `envconfig:"DRIVE_FOLDER_ID"`
	DriveCredsPath  string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// Proxy configures the payment gateway relay.
type Proxy struct {
	Port       string `envconfig:"PROXY_PORT" default:"3002"`
	Host       string `envconfig:"PHONEPE_HOST" default:"https://mercury-t2.phonepe.com"`
	MerchantID string `envconfig:"PHONEPE_MERCHANT_ID" default:"MERCHANTUAT"`
	StoreID    string `envconfig:"PHONEPE_STORE_ID"`
	SaltKey    string `envconfig:"PHONEPE_SALT_KEY"`
	SaltIndex  int    `envconfig:"PHONEPE_SALT_INDEX" default:"1"`
}

// DSN returns DATABASE_URL or a key/value string built from the DB_* settings.
func (d Database) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return "", errors.New("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode), nil
}

// Load reads .env outside production and then the process environment.
func Load() (*Config, error) {
	if os.Getenv("ENV") != "production" {
		// Overload so .env wins over stale shell exports during development.
		if err := godotenv.Overload(".env"); err != nil {
			log.Printf("⚠️  .env file not found, using system environment variables")
		} else {
			log.Printf("✓ Loaded environment variables from .env")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process environment")
	}
	return &cfg, nil
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the global logger.
func (c *Config) ConfigureLogging() {
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Printf("⚠️  Unknown LOG_LEVEL %q, defaulting to info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
