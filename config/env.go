package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Port      string
	JWTSecret string

	Auth    AuthConfig
	DB      DBConfig
	Redis   RedisConfig
	Store   StoreConfig
	Sheets  SheetsConfig
	Update  UpdateConfig
	Log     LogConfig
	Limiter LimiterConfig

	SweepInterval time.Duration
}

type DBConfig struct {
	Path string
}

type AuthConfig struct {
	Username string
	Password string
	TokenTTL time.Duration
}

type StoreConfig struct {
	Name              string
	ReceiptsDir       string
	LowStockThreshold int64
}

type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
}

type UpdateConfig struct {
	FeedURL        string
	CurrentVersion string
	HandoffScript  string
	StagingDir     string
}

type LogConfig struct {
	Level string
}

type LimiterConfig struct {
	Rate string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisEnabled, _ := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	lowStock, _ := strconv.ParseInt(getEnv("LOW_STOCK_THRESHOLD", "5"), 10, 64)

	tokenTTLHours, _ := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "12"))
	if tokenTTLHours <= 0 {
		tokenTTLHours = 12
	}

	sweepSeconds, _ := strconv.Atoi(getEnv("SWEEP_INTERVAL_SECONDS", "10"))
	if sweepSeconds <= 0 {
		sweepSeconds = 10
	}

	return Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "dev-only-secret"),
		Auth: AuthConfig{
			Username: getEnv("OPERATOR_USERNAME", "admin"),
			Password: getEnv("OPERATOR_PASSWORD", "admin"),
			TokenTTL: time.Duration(tokenTTLHours) * time.Hour,
		},
		DB: DBConfig{
			Path: getEnv("DB_PATH", "stockpos.db"),
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Store: StoreConfig{
			Name:              getEnv("STORE_NAME", "Mimee Shop"),
			ReceiptsDir:       getEnv("RECEIPTS_DIR", "receipts"),
			LowStockThreshold: lowStock,
		},
		Sheets: SheetsConfig{
			CredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
			SpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
			SheetName:       getEnv("SHEETS_SHEET_NAME", "orders"),
		},
		Update: UpdateConfig{
			FeedURL:        getEnv("UPDATE_FEED_URL", ""),
			CurrentVersion: getEnv("APP_VERSION", "0.0.0"),
			HandoffScript:  getEnv("UPDATE_HANDOFF_SCRIPT", ""),
			StagingDir:     getEnv("UPDATE_STAGING_DIR", os.TempDir()),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Limiter: LimiterConfig{
			Rate: getEnv("RATE_LIMIT", "60-M"),
		},
		SweepInterval: time.Duration(sweepSeconds) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
