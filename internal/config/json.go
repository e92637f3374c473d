package config

import (
	"encoding/json"
	"os"

	"github.com/abdul977/voicenotes/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr       string `json:"endpoint_addr"`
	AppOrigin          string `json:"app_origin"`
	DatabaseDSN        string `json:"database_dsn"`
	JWTSecret          string `json:"jwt_secret"`
	S3AccessKey        string `json:"s3_access_key"`
	S3SecretKey        string `json:"s3_secret_key"`
	S3Bucket           string `json:"s3_bucket"`
	S3Region           string `json:"s3_region"`
	S3BaseEndpoint     string `json:"s3_base_endpoint"`
	OpenAIKey          string `json:"openai_key"`
	TranscriptionModel string `json:"transcription_model"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: a config file that was asked for must be usable.
// Empty fields leave the current value untouched.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	overlay(&config.EndpointAddr, c.EndpointAddr)
	overlay(&config.AppOrigin, c.AppOrigin)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.JWTSecret, c.JWTSecret)
	overlay(&config.S3AccessKey, c.S3AccessKey)
	overlay(&config.S3SecretKey, c.S3SecretKey)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.OpenAIKey, c.OpenAIKey)
	overlay(&config.TranscriptionModel, c.TranscriptionModel)
}
