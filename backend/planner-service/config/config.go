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
	DriverSharePoint = "sharepoint"
	DriverMongo      = "mongo"
	DriverMemory     = "memory"
	DriverCassandra  = "cassandra"
	DriverSMTP       = "smtp"
	DriverNone       = "none"
)

type SharePointConfig struct {
	SiteURL      string
	AccessToken  string
	TaskList     string
	ActivityList string
	Timeout      time.Duration
	// Consecutive failures before the circuit breaker opens.
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

type CassandraConfig struct {
	Hosts    []string
	Keyspace string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type LogConfig struct {
	File  string
	Level string
}

// Config is built once at startup and passed to every constructor.
type Config struct {
	ServerPort     string
	StoreDriver    string
	ActivityDriver string
	MailDriver     string
	SearchLimit    int
	JWTSecret      string
	CORSOrigin     string
	SharePoint     SharePointConfig
	Mongo          MongoConfig
	Cassandra      CassandraConfig
	SMTP           SMTPConfig
	Log            LogConfig
}

// Load reads envFile when it exists, then the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	timeout, err := getDuration("SHAREPOINT_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	openTimeout, err := getDuration("SHAREPOINT_BREAKER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	maxFailures, err := getInt("SHAREPOINT_BREAKER_MAX_FAILURES", 3)
	if err != nil {
		return nil, err
	}
	searchLimit, err := getInt("USER_SEARCH_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8005"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverSharePoint)),
		ActivityDriver: strings.ToLower(getEnv("ACTIVITY_DRIVER", "")),
		MailDriver:     strings.ToLower(getEnv("MAIL_DRIVER", DriverSharePoint)),
		SearchLimit:    searchLimit,
		JWTSecret:      getEnv("JWT_SECRET", ""),
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
		SharePoint: SharePointConfig{
			SiteURL:            strings.TrimRight(getEnv("SHAREPOINT_SITE_URL", ""), "/"),
			AccessToken:        getEnv("SHAREPOINT_ACCESS_TOKEN", ""),
			TaskList:           getEnv("SHAREPOINT_TASK_LIST", "TaskManager"),
			ActivityList:       getEnv("SHAREPOINT_ACTIVITY_LIST", "TaskActivity"),
			Timeout:            timeout,
			BreakerMaxFailures: uint32(maxFailures),
			BreakerOpenTimeout: openTimeout,
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB_NAME", "planner"),
		},
		Cassandra: CassandraConfig{
			Hosts:    splitList(getEnv("CASS_DB", "127.0.0.1")),
			Keyspace: getEnv("CASS_KEYSPACE", "planner"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("EMAIL_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Log: LogConfig{
			File:  getEnv("LOG_FILE", ""),
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
	if cfg.ActivityDriver == "" {
		cfg.ActivityDriver = cfg.StoreDriver
	}
	return cfg, nil
}

// Validate reports settings that cannot produce a working service.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverSharePoint:
		if c.SharePoint.SiteURL == "" {
			return errors.New("SHAREPOINT_SITE_URL is required for the sharepoint store")
		}
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}

	switch c.ActivityDriver {
	case c.StoreDriver:
	case DriverCassandra:
		if len(c.Cassandra.Hosts) == 0 {
			return errors.New("CASS_DB is required for the cassandra activity log")
		}
	default:
		return fmt.Errorf("unsupported activity driver %q for store %q", c.ActivityDriver, c.StoreDriver)
	}

	switch c.MailDriver {
	case DriverSharePoint:
		if c.SharePoint.SiteURL == "" {
			return errors.New("SHAREPOINT_SITE_URL is required for sharepoint mail")
		}
	case DriverSMTP:
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return errors.New("SMTP_HOST and SMTP_FROM are required for smtp mail")
		}
	case DriverNone:
	default:
		return fmt.Errorf("unsupported mail driver %q", c.MailDriver)
	}

	if c.SearchLimit <= 0 {
		return fmt.Errorf("USER_SEARCH_LIMIT must be positive, got %d", c.SearchLimit)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
