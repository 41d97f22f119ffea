package Config

import (
	"os"
	"strconv"
	"strings"
)

// Settings is built once in main and handed to whoever needs it. Nothing in
// here is mutated after Load returns.
type Settings struct {
	ListenAddr  string
	DatabaseURL string

	SecretKey          string
	TokenExpiryMinutes int

	AllowedOrigins string

	UploadDirectory   string
	BaseURL           string
	MaxFileSize       int64
	AllowedImageTypes []string
	AllowedVideoTypes []string

	UseCloudStorage     bool
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Settings {
	return &Settings{
		ListenAddr:  getEnv("LISTEN_ADDR", ":3001"),
		DatabaseURL: getEnv("DATABASE_URL", "restro_manage.db"),

		SecretKey:          getEnv("SECRET_KEY", "change-me-in-production"),
		TokenExpiryMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		UploadDirectory:   getEnv("UPLOAD_DIR", "./uploads"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:3001"),
		MaxFileSize:       getEnvInt64("MAX_FILE_SIZE", 10*1024*1024),
		AllowedImageTypes: getEnvList("ALLOWED_IMAGE_TYPES", "image/jpeg,image/png,image/gif,image/webp"),
		AllowedVideoTypes: getEnvList("ALLOWED_VIDEO_TYPES", "video/mp4,video/webm,video/avi,video/mov"),

		UseCloudStorage:     getEnv("USE_CLOUD_STORAGE", "false") == "true",
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
