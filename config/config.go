package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"prizewheel/migrations"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Database DatabaseConfig `env:",prefix=DB_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	App      AppSettings    `env:",prefix=APP_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Sentry   SentryConfig   `env:",prefix=SENTRY_"`
	Play     PlayConfig     `env:",prefix=PLAY_"`
}

type ServerConfig struct {
	Port        string   `env:"PORT,default=5000"`
	Host        string   `env:"HOST,default=0.0.0.0"`
	CORSOrigins []string `env:"CORS_ORIGINS,default=http://localhost:3000"`
}

type DatabaseConfig struct {
	Host         string `env:"HOST,default=localhost"`
	Port         string `env:"PORT,default=5432"`
	User         string `env:"USER,default=postgres"`
	Password     string `env:"PASSWORD"`
	Name         string `env:"NAME,default=prizewheel"`
	SSLMode      string `env:"SSL_MODE,default=disable"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=10"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=100"`
}

type RedisConfig struct {
	Enabled  bool   `env:"ENABLED,default=false"`
	Address  string `env:"ADDRESS,default=localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB,default=0"`
}

// AppSettings holds application-level settings
type AppSettings struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

type JWTConfig struct {
	Secret string `env:"SECRET"`
}

type SentryConfig struct {
	DSN string `env:"DSN"`
}

// PlayConfig tunes the participant-facing engine
type PlayConfig struct {
	Timezone              string `env:"TIMEZONE,default=UTC"`
	DefaultRedemptionDays int    `env:"DEFAULT_REDEMPTION_DAYS,default=30"`
	RequestsPerMinute     int    `env:"REQUESTS_PER_MINUTE,default=30"`
	EventBuffer           int    `env:"EVENT_BUFFER,default=256"`
	EventsPerSecond       int    `env:"EVENTS_PER_SECOND,default=20"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

// LoadConfig populates AppConfig from the process environment
func LoadConfig(ctx context.Context) error {
	cfg, err := Load(ctx, envconfig.OsLookuper())
	if err != nil {
		return err
	}
	AppConfig = *cfg
	logConfig()
	return nil
}

// Load decodes and validates configuration from the given lookuper
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := time.LoadLocation(c.Play.Timezone); err != nil {
		return fmt.Errorf("PLAY_TIMEZONE is invalid: %w", err)
	}
	if c.Play.DefaultRedemptionDays <= 0 {
		return fmt.Errorf("PLAY_DEFAULT_REDEMPTION_DAYS must be positive")
	}
	if c.IsProduction() && c.Sentry.DSN == "" {
		return fmt.Errorf("SENTRY_DSN is required in production")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseURL returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the listen address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Location returns the calendar used for daily and weekly limits
func (c *PlayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ConnectDB opens the PostgreSQL pool and applies migrations
func ConnectDB() error {
	dsn := AppConfig.Database.GetDatabaseURL()
	logrus.WithField("dsn", maskPassword(dsn)).Info("Connecting to database")

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logrus.Info("Successfully connected to the database, running migrations")
	if err := migrations.Migrate(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	logrus.Info("Database migration completed")
	return nil
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	logrus.WithFields(logrus.Fields{
		"environment": AppConfig.App.Environment,
		"server_port": AppConfig.Server.Port,
		"database": fmt.Sprintf("%s@%s:%s/%s",
			AppConfig.Database.User,
			AppConfig.Database.Host,
			AppConfig.Database.Port,
			AppConfig.Database.Name),
		"redis":    AppConfig.Redis.Enabled,
		"timezone": AppConfig.Play.Timezone,
	}).Info("Loaded configuration")
}
