package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArtemDidyk-Dev/travel-api/internal/config"
	"github.com/ArtemDidyk-Dev/travel-api/internal/logging"
	"github.com/ArtemDidyk-Dev/travel-api/internal/media"
	"github.com/ArtemDidyk-Dev/travel-api/internal/queue"
	miniorepo "github.com/ArtemDidyk-Dev/travel-api/internal/repository/minio"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/postgres"
	"github.com/ArtemDidyk-Dev/travel-api/internal/service"
	transporthttp "github.com/ArtemDidyk-Dev/travel-api/internal/transport/http"
	"github.com/ArtemDidyk-Dev/travel-api/internal/transport/mail"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	minioClient, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect object storage: %v", err)
	}
	storage := miniorepo.NewStorage(minioClient, cfg.MinIOBucket, cfg.MinIOPublicURL)

	jwtTTL, err := time.ParseDuration(cfg.JWTTTL)
	if err != nil {
		jwtTTL = 24 * time.Hour
	}
	jwtManager := util.NewJWTManager(cfg.JWTSecret, jwtTTL)

	travelRepo := postgres.NewTravelRepo(db)
	tourRepo := postgres.NewTourRepo(db)
	commentRepo := postgres.NewCommentRepo(db)
	imageRepo := postgres.NewImageRepo(db)
	userRepo := postgres.NewUserRepo(db)
	roleRepo := postgres.NewRoleRepo(db)

	var dispatcher service.BatchDispatcher
	if cfg.RabbitMQURL != "" {
		dispatcher = queue.NewPublisher(cfg.RabbitMQURL)
	}

	optimizer := media.NewFFMPEGOptimizer(cfg.FFMPEGPath)
	imageService := service.NewImageService(imageRepo, storage, dispatcher, optimizer, service.ImageServiceConfig{
		MaxImageBytes: cfg.ImageMaxBytes,
	})

	mailer := mail.NewCommentPublishedMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	authService := service.NewAuthService(userRepo, roleRepo, jwtManager)
	travelService := service.NewTravelService(travelRepo)
	tourService := service.NewTourService(tourRepo, travelRepo, commentRepo, imageRepo, imageService)
	commentService := service.NewCommentService(commentRepo, tourRepo, travelRepo, imageRepo, imageService, mailer, cfg.FrontendBaseURL)
	userService := service.NewUserService(userRepo, roleRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RabbitMQURL != "" && cfg.QueueWorker {
		go func() {
			if err := queue.StartImageConsumer(ctx, cfg.RabbitMQURL, imageService.Handler()); err != nil && ctx.Err() == nil {
				log.Printf("image consumer stopped: %v", err)
			}
		}()
	}

	e := transporthttp.NewRouter(cfg.AllowOrigins)
	transporthttp.RegisterAuth(e, authService)
	transporthttp.RegisterTravels(e, authService, travelService)
	transporthttp.RegisterTours(e, authService, tourService, storage.URL)
	transporthttp.RegisterComments(e, authService, commentService, storage.URL)
	transporthttp.RegisterUsers(e, authService, userService)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
