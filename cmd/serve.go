/*
Copyright © 2024 Dean
*/
package cmd

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpHdlr "govector/handler/http"
	"govector/src/core/conversion"
	"govector/src/fsutil"
	"govector/src/imaging"
	"govector/src/infrastructure/queue"
	"govector/src/mailer"
	"govector/src/storage/jobfs"
	"govector/src/storage/miniostore"
	"govector/src/vector"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion API server",
	Long:  `The serve command starts an HTTP server that accepts image uploads, runs them through the vectorization pipeline, and exposes per-job progress and results.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	settingDefaultConfig()
}

func RunServer(cmd *cobra.Command, args []string) {
	// Initialize storage gateway from config
	storage, err := buildStorage()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Build the pipeline stages
	preprocessor := buildPreprocessor()
	vectorizer := vector.NewVectorizer(
		vector.NewVTracer(viper.GetString("tools.vtracer"), viper.GetDuration("pipeline.trace_timeout")),
		vector.NewCairoSVG(viper.GetString("tools.cairosvg"), viper.GetDuration("pipeline.transcode_timeout")),
	)

	orchOpts := []conversion.Option{}
	if !viper.GetBool("pipeline.keep_intermediates") {
		orchOpts = append(orchOpts, conversion.WithIntermediateCleanup())
	}
	orchestrator := conversion.NewOrchestrator(
		conversion.NewMemoryStore(),
		storage,
		preprocessor,
		vectorizer,
		orchOpts...,
	)

	// Optional queued execution: submission returns immediately and the
	// router drives the pipeline in the background.
	var jobQueue *queue.Queue
	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()
	if viper.GetBool("queue.enabled") {
		jobQueue, err = queue.New(orchestrator)
		if err != nil {
			log.Fatalf("Failed to initialize job queue: %v", err)
		}
		go func() {
			if err := jobQueue.Start(queueCtx); err != nil {
				log.Printf("Job queue stopped: %v", err)
			}
		}()
		<-jobQueue.Running()
	}

	maxFileSize := viper.GetInt64("upload.max_file_size_mb") * 1024 * 1024
	conversionHandler, err := httpHdlr.NewConversionHandler(orchestrator, jobQueue, maxFileSize, "")
	if err != nil {
		log.Fatalf("Failed to initialize conversion handler: %v", err)
	}
	fileHandler := httpHdlr.NewFileHandler(storage)
	emailHandler := httpHdlr.NewEmailHandler(orchestrator, storage, mailer.New(
		viper.GetString("mailgun.domain"),
		viper.GetString("mailgun.api_key"),
		viper.GetString("mailgun.from"),
		viper.GetString("mailgun.region"),
	))

	// Setup gin router
	r := gin.Default()
	r.Use(httpHdlr.CORS(viper.GetString("cors.origins")))

	// Register routes
	r.GET("/", httpHdlr.Root)
	api := r.Group("/api")
	{
		api.POST("/upload", conversionHandler.Upload)
		api.GET("/status/:job_id", conversionHandler.Status)
		api.GET("/result/:job_id", conversionHandler.Result)
		api.GET("/files/:job_id/:filename", fileHandler.Download)
		api.POST("/email", emailHandler.Send)
		api.GET("/health", httpHdlr.Health)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Printf("Invalid shutdown timeout: %v, using default 5s", err)
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	stopQueue()
	if jobQueue != nil {
		if err := jobQueue.Close(); err != nil {
			log.Printf("Failed to close job queue: %v", err)
		}
	}

	log.Println("Server exited")
}

func buildStorage() (conversion.Storage, error) {
	if viper.GetString("storage.backend") == "minio" {
		return miniostore.New(
			viper.GetString("minio.endpoint"),
			viper.GetString("minio.access_key"),
			viper.GetString("minio.secret_key"),
			viper.GetString("minio.bucket"),
			viper.GetBool("minio.use_ssl"),
		)
	}
	return jobfs.New(viper.GetString("storage.path"), fsutil.NewLocalFileStore())
}

func buildPreprocessor() *imaging.Preprocessor {
	opts := []imaging.PreprocessorOption{
		imaging.WithMaxDimension(viper.GetInt("pipeline.max_dimension")),
		imaging.WithBackgroundRemover(imaging.NewRembgRemover(viper.GetString("tools.rembg"), 0)),
		imaging.WithHeifConverter(imaging.NewHeifConverter(viper.GetString("tools.heif_convert"), 0)),
	}
	if !viper.GetBool("pipeline.remove_background") {
		opts = append(opts, imaging.WithBackgroundRemovalDisabled())
	}
	return imaging.NewPreprocessor(opts...)
}
