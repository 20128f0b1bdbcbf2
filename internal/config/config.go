package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          string
	AllowOrigins    []string
	LogstashTCPAddr string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOBucket    string
	MinIOPublicURL string

	RabbitMQURL string
	// QueueWorker runs the image consumer inside the API process. Turn it
	// off when a dedicated worker deployment owns the queue.
	QueueWorker bool

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	FrontendBaseURL string
	ImageMaxBytes   int64
	FFMPEGPath      string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	imageMax := int64(3 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("IMAGE_MAX_BYTES", "3145728"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		JWTTTL:          getenv("JWT_TTL", "24h"),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
		MinIOEndpoint:   must("MINIO_ENDPOINT"),
		MinIOAccessKey:  must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:  must("MINIO_SECRET_KEY"),
		MinIOUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucket:     getenv("MINIO_BUCKET", "travel-media"),
		MinIOPublicURL:  getenv("MINIO_PUBLIC_URL", ""),
		RabbitMQURL:     getenv("RABBITMQ_URL", ""),
		QueueWorker:     getenv("QUEUE_WORKER", "true") == "true",
		SMTPHost:        getenv("SMTP_HOST", ""),
		SMTPPort:        getenv("SMTP_PORT", ""),
		SMTPUsername:    getenv("SMTP_USERNAME", ""),
		SMTPPassword:    getenv("SMTP_PASSWORD", ""),
		SMTPFrom:        getenv("SMTP_FROM", ""),
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", "http://localhost:3000"),
		ImageMaxBytes:   imageMax,
		FFMPEGPath:      getenv("FFMPEG_PATH", "ffmpeg"),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
