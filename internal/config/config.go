package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	ServerPort string

	StoreBackend  string
	StoreFilePath string

	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSslMode   string
	DBBlobTable string

	AuthLatency time.Duration // độ trễ giả lập cho login/register

	AWSRegion          string
	SQSCatalogQueueURL string
	EnableTracing      bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	latencyMs, err := strconv.Atoi(getEnv("AUTH_LATENCY_MS", "800"))
	if err != nil || latencyMs < 0 {
		latencyMs = 800
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StoreBackend:  getEnv("STORE_BACKEND", BackendFile),
		StoreFilePath: getEnv("STORE_FILE_PATH", "data/store.json"),

		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      dbPort,
		DBUser:      getEnv("DB_USER", "parking"),
		DBPassword:  getEnv("DB_PASSWORD", "parking"),
		DBName:      getEnv("DB_NAME", "parking_marketplace"),
		DBSslMode:   getEnv("DB_SSLMODE", "disable"),
		DBBlobTable: getEnv("DB_BLOB_TABLE", "kv_blobs"),

		AuthLatency: time.Duration(latencyMs) * time.Millisecond,

		AWSRegion:          getEnv("AWS_REGION", "ap-southeast-1"),
		SQSCatalogQueueURL: getEnv("SQS_CATALOG_EVENT_QUEUE_URL", ""),
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendFile, BackendPostgres:
	default:
		log.Printf("Unknown STORE_BACKEND '%s', falling back to '%s'", cfg.StoreBackend, BackendFile)
		cfg.StoreBackend = BackendFile
	}

	// X-Ray chỉ bật khi ENABLE_TRACING=true và AWS_XRAY_SDK_DISABLED không ép tắt.
	enable := strings.ToLower(os.Getenv("ENABLE_TRACING"))
	if !xraySDKDisabled() && (enable == "true" || enable == "1") {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "FALSE")
		cfg.EnableTracing = true
	} else {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "TRUE")
	}

	return cfg
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable '%s' not set, using default: '%s'", key, fallback)
	return fallback
}

func xraySDKDisabled() bool {
	return strings.ToLower(os.Getenv("AWS_XRAY_SDK_DISABLED")) == "true"
}
