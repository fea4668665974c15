package config

import "time"

// Store drivers accepted by database.driver.
const (
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverNeo4j     = "neo4j"
)

// Notification delivery modes accepted by notify.mode.
const (
	NotifyModeSync  = "sync"
	NotifyModeAsync = "async"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Notify   NotifyConfig   `mapstructure:"notify" validate:"required"`
	Job      JobConfig      `mapstructure:"job" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig selects and configures the store backend.
//
// URL is required for every driver except firestore, which is addressed by
// ProjectID. Name is the Mongo database name; Username and Password are the
// Neo4j basic-auth credentials.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"required,oneof=postgres sqlite mongo firestore neo4j"`
	URL             string `mapstructure:"url" validate:"required_unless=Driver firestore"`
	Name            string `mapstructure:"name" validate:"required_if=Driver mongo"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	ProjectID       string `mapstructure:"project_id" validate:"required_if=Driver firestore"`
	CredentialsFile string `mapstructure:"credentials_file"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// NotifyConfig controls how assignees are notified.
type NotifyConfig struct {
	Mode     string         `mapstructure:"mode" validate:"required,oneof=sync async"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	FCM      FCMConfig      `mapstructure:"fcm"`
}

// TelegramConfig enables the Telegram notifier when BotToken is set.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// FCMConfig enables Firebase Cloud Messaging pushes.
type FCMConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// JobConfig configures the background job runner used in async notify mode.
type JobConfig struct {
	WorkerCount int           `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int           `mapstructure:"queue_size" validate:"gt=0"`
	StuckJobAge time.Duration `mapstructure:"stuck_job_age" validate:"gt=0"`
}
