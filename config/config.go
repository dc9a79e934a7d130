package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. It is built once at process
// start and passed by reference into every collaborator; nothing reads the
// environment after Load returns.
type Config struct {
	ServerPort string

	UploadDir      string // Directory for uploaded audio files
	AnalysisLogDir string // Transient landing spot for downloaded raw analysis documents

	// Dolby.io media analysis provider
	DolbyAppKey     string
	DolbyAppSecret  string
	DolbyAuthURL    string // Token endpoint (Basic-auth client-credentials grant)
	DolbyMediaURL   string // Base URL of the media API (input/output/analyze endpoints)
	DolbyNamespace  string // Logical namespace for provider-side objects, e.g. dlb://vibemesh
	PollInterval    time.Duration
	MaxPollAttempts int

	// MinIO object storage for shaped analysis records
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Redis hot cache
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	AnalysisCacheTTL time.Duration

	// MySQL track registry
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvSeconds reads an integer number of seconds into a time.Duration.
func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "5000"),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		AnalysisLogDir: getEnv("ANALYSIS_LOG_DIR", "logs"),

		DolbyAppKey:     os.Getenv("TRACK_ANALYZE_KEY"),
		DolbyAppSecret:  os.Getenv("TRACK_ANALYZE_SECRET"),
		DolbyAuthURL:    getEnv("DOLBY_AUTH_URL", "https://api.dolby.io/v1/auth/token"),
		DolbyMediaURL:   getEnv("DOLBY_MEDIA_URL", "https://api.dolby.com"),
		DolbyNamespace:  getEnv("DOLBY_NAMESPACE", "dlb://vibemesh"),
		PollInterval:    getEnvSeconds("ANALYSIS_POLL_INTERVAL", 10*time.Second),
		MaxPollAttempts: getEnvInt("ANALYSIS_MAX_POLL_ATTEMPTS", 90),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "vibemesh"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		RedisHost:        getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		AnalysisCacheTTL: getEnvSeconds("ANALYSIS_CACHE_TTL", 6*time.Hour),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "vibemesh"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
