package config

import (
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glebarez/sqlite"

	"cafe-api/models"
)

type Config struct {
	Port          string `mapstructure:"PORT"`
	DatabasePath  string `mapstructure:"DATABASE_PATH"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	GinMode       string `mapstructure:"GIN_MODE"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
}

var (
	C  *Config
	DB *gorm.DB

	// JWTSecret signs API tokens; filled in by Load
	JWTSecret []byte
)

func Load() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "cafe.db")
	viper.SetDefault("JWT_SECRET", "cafe_dev_secret_change_me")
	viper.SetDefault("SESSION_SECRET", "cafe_dev_session_change_me")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.BindEnv("PORT")
	viper.BindEnv("DATABASE_PATH")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("SESSION_SECRET")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("LOG_LEVEL")

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("unable to decode config", "error", err)
		os.Exit(1)
	}

	C = &cfg
	JWTSecret = []byte(cfg.JWTSecret)
	return C
}

func InitDB(path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		slog.Error("failed to connect to database", "path", path, "error", err)
		os.Exit(1)
	}

	if err := Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("database connected and migrated", "path", path)
	return db
}

// Migrate runs the automigrations for all entities. Split out so tests
// can run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Promo{},
		&models.MenuPromo{},
		&models.Booking{},
	)
}
