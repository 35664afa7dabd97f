package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Runtime modes. The mode selects the database and gates the test-only
// maintenance operations.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

type ServerConfig struct {
	Address string `json:"address"`
}

type JWTConfig struct {
	Secret string `json:"secret"`
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
}

type DatabaseConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DBName      string `json:"dbname"`
	TestDBName  string `json:"testDbname"` // used instead of DBName in test mode
	MinPoolSize int    `json:"minPoolSize"`
	MaxPoolSize int    `json:"maxPoolSize"`
	LogLevel    string `json:"logLevel"`
}

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	JWT      JWTConfig      `json:"jwt"`
	CORS     CORSConfig     `json:"cors"`
	Env      string         `json:"env"`
}

var defaultConfig = Config{
	Server: ServerConfig{
		Address: ":3002",
	},
	Database: DatabaseConfig{
		Host:        "localhost",
		Port:        3306,
		Username:    "root",
		Password:    "root",
		DBName:      "ballot_box",
		TestDBName:  "ballot_box_test",
		MinPoolSize: 5,
		MaxPoolSize: 50,
		LogLevel:    "warn",
	},
	JWT: JWTConfig{
		Secret: "dev-secret-change-me-in-production",
	},
	CORS: CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	},
	Env: EnvDevelopment,
}

// IsProd reports whether the current mode is production.
func (c *Config) IsProd() bool {
	return c.Env == EnvProduction
}

// IsTest reports whether the current mode is test.
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// Load builds the configuration once at startup. Priority: environment
// variables > config file > defaults. A .env file, if present, is folded
// into the environment first.
func Load() *Config {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		hlog.Info("Loaded environment from .env")
	}

	config := defaultConfig

	if configPath := getConfigPath(); configPath != "" {
		if err := loadFromFile(&config, configPath); err != nil {
			hlog.Warnf("Failed to load config file: %v", err)
		}
	}

	loadFromEnv(&config)

	return &config
}

func getConfigPath() string {
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	searchPaths := []string{
		"./config.json",
		"/etc/ballot-box/config.json",
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

func loadFromEnv(config *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}
	if v := os.Getenv("PORT"); v != "" {
		config.Server.Address = ":" + v
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = strings.ToLower(v)
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.JWT.Secret = v
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.CORS.AllowOrigins = splitEnvList(v)
	}

	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}
	if v := os.Getenv("TEST_DB_NAME"); v != "" {
		config.Database.TestDBName = v
	}
	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}
	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}
	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}
}

// splitEnvList supports comma-separated environment values.
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// DatabaseName returns the schema name for the current mode. Test mode gets
// its own database so resets can never touch development or production data.
func (c *Config) DatabaseName() string {
	if c.IsTest() && c.Database.TestDBName != "" {
		return c.Database.TestDBName
	}
	return c.Database.DBName
}

// DSN builds the MySQL connection string for the current mode.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.DatabaseName(),
	)
}

// InitDB opens the database connection and configures the pool.
// TranslateError lets GORM surface duplicate keys as gorm.ErrDuplicatedKey
// across driver versions.
func (c *Config) InitDB() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
	}
	switch c.Database.LogLevel {
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	case "error":
		gormConfig.Logger = logger.Default.LogMode(logger.Error)
	case "warn":
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(mysql.Open(c.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(c.Database.MinPoolSize)
	sqlDB.SetMaxOpenConns(c.Database.MaxPoolSize)

	return db, nil
}
