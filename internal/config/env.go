package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first if present; a missing file is not an
// error. Empty variables leave the current value untouched.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	overlay := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	overlay(&config.EndpointAddr, "ENDPOINT_ADDR")
	overlay(&config.AppOrigin, "APP_ORIGIN")
	overlay(&config.DatabaseDSN, "DATABASE_DSN")
	overlay(&config.JWTSecret, "JWT_SECRET")
	overlay(&config.S3AccessKey, "S3_ACCESS_KEY")
	overlay(&config.S3SecretKey, "S3_SECRET_KEY")
	overlay(&config.S3Bucket, "S3_BUCKET")
	overlay(&config.S3Region, "S3_REGION")
	overlay(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	overlay(&config.OpenAIKey, "OPENAI_KEY")
	overlay(&config.TranscriptionModel, "TRANSCRIPTION_MODEL")
}
