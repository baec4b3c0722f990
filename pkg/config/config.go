package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Port             string        `mapstructure:"PORT"`
	AppEnv           string        `mapstructure:"APP_ENV"`
	DatabaseDriver   string        `mapstructure:"DATABASE_DRIVER"`
	SQLitePath       string        `mapstructure:"SQLITE_PATH"`
	PostgresUsername string        `mapstructure:"POSTGRES_USERNAME"`
	PostgresPassword string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDatabase string        `mapstructure:"POSTGRES_DATABASE"`
	PostgresSSLMode  string        `mapstructure:"POSTGRES_SSLMODE"`
	PostgresHost     string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string        `mapstructure:"POSTGRES_PORT"`
	RabbitMQURL      string        `mapstructure:"RABBITMQ_URL"`
	ServiceName      string        `mapstructure:"SERVICE_NAME"`
	MediaDir         string        `mapstructure:"MEDIA_DIR"`
	StaticPrefix     string        `mapstructure:"STATIC_PREFIX"`
	ImageStorage     string        `mapstructure:"IMAGE_STORAGE"`
	MaxImageSizeMB   int           `mapstructure:"MAX_IMAGE_SIZE_MB"`
	AWSEndpoint      string        `mapstructure:"AWS_ENDPOINT"`
	AWSBucket        string        `mapstructure:"AWS_BUCKET"`
	AWSDefaultRegion string        `mapstructure:"AWS_DEFAULT_REGION"`
	AWSAccessKey     string        `mapstructure:"AWS_ACCESS_KEY"`
	AWSSecretKey     string        `mapstructure:"AWS_SECRET_KEY"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTTTL           time.Duration `mapstructure:"JWT_TTL"`
	GRPCPort         string        `mapstructure:"GRPC_PORT"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// Read loads .env (if present) and the process environment.
func Read() *AppConfig {
	cfg, err := Load(".env")
	if err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}
	return cfg
}

// Load reads the given env file, overlays environment variables and applies defaults.
func Load(envFile string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	// An explicitly empty variable overrides the default, so GRPC_PORT= disables gRPC.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	bindEnvVariables(v)
	setDefaults(v)

	var appConfig AppConfig
	if err := v.Unmarshal(&appConfig); err != nil {
		return nil, err
	}

	if err := appConfig.validate(); err != nil {
		return nil, err
	}

	return &appConfig, nil
}

func (c *AppConfig) IsProduction() bool {
	return c.AppEnv == "production"
}

// PostgresDSN builds a lib/pq connection string.
func (c *AppConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUsername, c.PostgresPassword, c.PostgresDatabase, c.PostgresSSLMode,
	)
}

func (c *AppConfig) MaxImageSize() int64 {
	return int64(c.MaxImageSizeMB) * 1024 * 1024
}

func (c *AppConfig) validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.ImageStorage {
	case StorageLocal, StorageS3:
	default:
		return fmt.Errorf("unsupported IMAGE_STORAGE %q", c.ImageStorage)
	}

	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	return nil
}

func bindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("PORT")
	_ = v.BindEnv("APP_ENV")
	_ = v.BindEnv("DATABASE_DRIVER")
	_ = v.BindEnv("SQLITE_PATH")
	_ = v.BindEnv("POSTGRES_USERNAME")
	_ = v.BindEnv("POSTGRES_PASSWORD")
	_ = v.BindEnv("POSTGRES_DATABASE")
	_ = v.BindEnv("POSTGRES_SSLMODE")
	_ = v.BindEnv("POSTGRES_HOST")
	_ = v.BindEnv("POSTGRES_PORT")
	_ = v.BindEnv("RABBITMQ_URL")
	_ = v.BindEnv("SERVICE_NAME")
	_ = v.BindEnv("MEDIA_DIR")
	_ = v.BindEnv("STATIC_PREFIX")
	_ = v.BindEnv("IMAGE_STORAGE")
	_ = v.BindEnv("MAX_IMAGE_SIZE_MB")
	_ = v.BindEnv("AWS_ENDPOINT")
	_ = v.BindEnv("AWS_BUCKET")
	_ = v.BindEnv("AWS_DEFAULT_REGION")
	_ = v.BindEnv("AWS_ACCESS_KEY")
	_ = v.BindEnv("AWS_SECRET_KEY")
	_ = v.BindEnv("JWT_SECRET")
	_ = v.BindEnv("JWT_TTL")
	_ = v.BindEnv("GRPC_PORT")
}

const defaultJWTSecret = "dev-secret-key"

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("SQLITE_PATH", "market.db")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("SERVICE_NAME", "market")
	v.SetDefault("MEDIA_DIR", "media")
	v.SetDefault("STATIC_PREFIX", "/static")
	v.SetDefault("IMAGE_STORAGE", StorageLocal)
	v.SetDefault("MAX_IMAGE_SIZE_MB", 5)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("GRPC_PORT", "9090")
}
