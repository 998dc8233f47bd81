package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Map environment variables to Viper keys for the server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	viper.BindEnv("cors.origins", "CORS_ORIGINS")

	// Upload and pipeline settings
	viper.BindEnv("upload.max_file_size_mb", "MAX_FILE_SIZE_MB")
	viper.BindEnv("pipeline.max_dimension", "PIPELINE_MAX_DIMENSION")
	viper.BindEnv("pipeline.remove_background", "PIPELINE_REMOVE_BACKGROUND")
	viper.BindEnv("pipeline.keep_intermediates", "PIPELINE_KEEP_INTERMEDIATES")
	viper.BindEnv("pipeline.trace_timeout", "PIPELINE_TRACE_TIMEOUT")
	viper.BindEnv("pipeline.transcode_timeout", "PIPELINE_TRANSCODE_TIMEOUT")

	// External tool locations
	viper.BindEnv("tools.vtracer", "VTRACER_BIN")
	viper.BindEnv("tools.cairosvg", "CAIROSVG_BIN")
	viper.BindEnv("tools.rembg", "REMBG_BIN")
	viper.BindEnv("tools.heif_convert", "HEIF_CONVERT_BIN")

	// Storage backend
	viper.BindEnv("storage.backend", "STORAGE_BACKEND")
	viper.BindEnv("storage.path", "STORAGE_PATH")
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("minio.bucket", "MINIO_BUCKET")
	viper.BindEnv("minio.use_ssl", "MINIO_USE_SSL")

	// Queue and retention
	viper.BindEnv("queue.enabled", "QUEUE_ENABLED")
	viper.BindEnv("retention.max_age_hours", "RETENTION_MAX_AGE_HOURS")

	// Mailgun
	viper.BindEnv("mailgun.api_key", "MAILGUN_API_KEY")
	viper.BindEnv("mailgun.domain", "MAILGUN_DOMAIN")
	viper.BindEnv("mailgun.from", "MAILGUN_FROM_EMAIL")
	viper.BindEnv("mailgun.region", "MAILGUN_REGION")

	// Set default values for the server
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("cors.origins", "*")

	// Set default values for upload and pipeline
	viper.SetDefault("upload.max_file_size_mb", 10)
	viper.SetDefault("pipeline.max_dimension", 2000)
	viper.SetDefault("pipeline.remove_background", true)
	viper.SetDefault("pipeline.keep_intermediates", true)
	viper.SetDefault("pipeline.trace_timeout", "30s")
	viper.SetDefault("pipeline.transcode_timeout", "30s")

	// Set default values for external tools
	viper.SetDefault("tools.vtracer", "vtracer")
	viper.SetDefault("tools.cairosvg", "cairosvg")
	viper.SetDefault("tools.rembg", "rembg")
	viper.SetDefault("tools.heif_convert", "heif-convert")

	// Set default values for storage
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.path", "storage")
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.bucket", "govector-jobs")
	viper.SetDefault("minio.use_ssl", false)

	// Set default values for queue and retention
	viper.SetDefault("queue.enabled", false)
	viper.SetDefault("retention.max_age_hours", 24)

	// Set default values for Mailgun
	viper.SetDefault("mailgun.region", "us")
}
