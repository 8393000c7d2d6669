package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Драйверы хранения данных.
const (
	PostgresDriver = "postgres"
	MemoryDriver   = "memory"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress   string        `mapstructure:"SERVER_ADDRESS"`
	PostgresConn    string        `mapstructure:"POSTGRES_CONN"`
	PostgresUser    string        `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass    string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost    string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort    string        `mapstructure:"POSTGRES_PORT"`
	PostgresDB      string        `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL    string        `mapstructure:"MIGRATION_URL"`
	StorageDriver   string        `mapstructure:"STORAGE_DRIVER"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	TokenTTL        time.Duration `mapstructure:"TOKEN_TTL"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BlobDir         string        `mapstructure:"BLOB_DIR"`
	MaxUploadBytes  int64         `mapstructure:"MAX_UPLOAD_BYTES"`
	ProfileCacheTTL time.Duration `mapstructure:"PROFILE_CACHE_TTL"`
}

// defaults задает значения, которых может не быть ни в файле, ни в окружении.
var defaults = map[string]any{
	"SERVER_ADDRESS":    "0.0.0.0:8080",
	"MIGRATION_URL":     "file://migrations",
	"STORAGE_DRIVER":    PostgresDriver,
	"TOKEN_TTL":         "24h",
	"REQUEST_TIMEOUT":   "5s",
	"BLOB_DIR":          "./data/deliverables",
	"MAX_UPLOAD_BYTES":  50 * 1024 * 1024,
	"PROFILE_CACHE_TTL": "1m",
}

// LoadConfig загружает конфигурацию из файла app.env в каталоге path.
// Переменные окружения имеют приоритет над файлом, сам файл необязателен.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// AutomaticEnv не видит ключи, которых нет ни в файле, ни в defaults.
	for _, key := range []string{"POSTGRES_CONN", "POSTGRES_USERNAME", "POSTGRES_PASSWORD", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DATABASE", "JWT_SECRET"} {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}
	err = v.Unmarshal(&cfg)
	return
}

// Validate проверяет обязательные параметры.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StorageDriver != PostgresDriver && c.StorageDriver != MemoryDriver {
		return errors.New("STORAGE_DRIVER must be postgres or memory")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
