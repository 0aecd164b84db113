// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Artifacts ArtifactsConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Forecast  ForecastConfig
	Recommend RecommendConfig
	Assistant AssistantConfig
}

type ServerConfig struct {
	Port           string
	ToolPort       string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// ArtifactsConfig describes where the model, product mapping and sales history come from.
type ArtifactsConfig struct {
	Source          string // local, s3 or drive
	HistorySource   string // csv or postgres
	Dir             string
	ModelFile       string
	ProductMapFile  string
	SalesHistoryCSV string
}

// StorageConfig is the S3-compatible bucket that artifacts are published to and fetched from.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
	FolderPath      string
}

type ForecastConfig struct {
	MaxPeriods     int
	DefaultPeriods int
	SeedUnits      float64
}

type RecommendConfig struct {
	PlanningDays       int
	DefaultSafetyRatio float64
	MaxSafetyRatio     float64
}

type AssistantConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	ServerURL    string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				log.Fatalf("Failed to read config file: %v", err)
			}
		}

		instance = newConfig(v)

		// Ensure the artifact directory exists
		ensureDir(instance.Artifacts.Dir)
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("TOOL_SERVER_PORT", "8081")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "merchant")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("ARTIFACT_SOURCE", "local")
	v.SetDefault("HISTORY_SOURCE", "csv")
	v.SetDefault("ARTIFACT_DIR", "./data/artifacts")
	v.SetDefault("MODEL_FILE", "demand_model.json")
	v.SetDefault("PRODUCT_MAP_FILE", "product_map.json")
	v.SetDefault("SALES_HISTORY_FILE", "sales_history.csv")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PREFIX", "artifacts")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("DRIVE_FOLDER_ID", "")
	v.SetDefault("DRIVE_FOLDER_PATH", "")
	v.SetDefault("FORECAST_MAX_PERIODS", 365)
	v.SetDefault("FORECAST_DEFAULT_PERIODS", 14)
	v.SetDefault("FORECAST_SEED_UNITS", 10.0)
	v.SetDefault("RECOMMEND_PLANNING_DAYS", 30)
	v.SetDefault("RECOMMEND_DEFAULT_SAFETY_RATIO", 0.2)
	v.SetDefault("RECOMMEND_MAX_SAFETY_RATIO", 10.0)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("TOOL_SERVER_URL", "http://localhost:8080/api/v1")
}

// newConfig builds a Config from v. It does not touch the filesystem.
func newConfig(v *viper.Viper) *Config {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			ToolPort:       v.GetString("TOOL_SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Artifacts: ArtifactsConfig{
			Source:          v.GetString("ARTIFACT_SOURCE"),
			HistorySource:   v.GetString("HISTORY_SOURCE"),
			Dir:             v.GetString("ARTIFACT_DIR"),
			ModelFile:       v.GetString("MODEL_FILE"),
			ProductMapFile:  v.GetString("PRODUCT_MAP_FILE"),
			SalesHistoryCSV: v.GetString("SALES_HISTORY_FILE"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Prefix:    v.GetString("S3_PREFIX"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        v.GetString("DRIVE_FOLDER_ID"),
			FolderPath:      v.GetString("DRIVE_FOLDER_PATH"),
		},
		Forecast: ForecastConfig{
			MaxPeriods:     v.GetInt("FORECAST_MAX_PERIODS"),
			DefaultPeriods: v.GetInt("FORECAST_DEFAULT_PERIODS"),
			SeedUnits:      v.GetFloat64("FORECAST_SEED_UNITS"),
		},
		Recommend: RecommendConfig{
			PlanningDays:       v.GetInt("RECOMMEND_PLANNING_DAYS"),
			DefaultSafetyRatio: v.GetFloat64("RECOMMEND_DEFAULT_SAFETY_RATIO"),
			MaxSafetyRatio:     v.GetFloat64("RECOMMEND_MAX_SAFETY_RATIO"),
		},
		Assistant: AssistantConfig{
			GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
			GeminiModel:  v.GetString("GEMINI_MODEL"),
			ServerURL:    v.GetString("TOOL_SERVER_URL"),
		},
	}
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
