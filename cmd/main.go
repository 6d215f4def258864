package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/config"
	"github.com/hieuit01/BTL-CCNLTHD/routes"
	"github.com/hieuit01/BTL-CCNLTHD/services"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := config.NewLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := utils.InitTracer(ctx, "healthmanager", cfg.OTLPEndpoint, cfg.Env)
		if err != nil {
			log.WithError(err).Fatal("init tracer")
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("init database")
	}

	deps := routes.Deps{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Hub:      services.NewRealtimeHub(),
		Registry: prometheus.NewRegistry(),
	}
	deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Optional integrations stay nil interfaces when unconfigured.
	if cfg.S3Bucket != "" {
		store, err := utils.NewS3Store(ctx, cfg.S3RegionOrDefault(), cfg.S3Bucket, cfg.CloudFrontURL)
		if err != nil {
			log.WithError(err).Fatal("init s3")
		}
		deps.Images = store
	}
	if cfg.SESEmail != "" {
		mailer, err := utils.NewSESMailer(ctx, cfg.AWSRegion, cfg.SESEmail)
		if err != nil {
			log.WithError(err).Fatal("init ses")
		}
		deps.Mailer = mailer
	}
	if cfg.SNSFCMArn != "" {
		push, err := services.NewPushService(ctx, db, cfg.AWSRegion, cfg.SNSFCMArn, log)
		if err != nil {
			log.WithError(err).Fatal("init sns")
		}
		deps.Push = push
	}
	if cfg.RabbitURL != "" {
		pub, err := utils.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.WithError(err).Fatal("init rabbitmq")
		}
		defer pub.Close()
		deps.Events = pub
	}

	var pusher services.Pusher
	if deps.Push != nil {
		pusher = deps.Push
	}
	dispatcher := services.NewReminderDispatcher(db, deps.Hub, pusher, log)
	scheduler, err := dispatcher.Start(cfg.ReminderSchedule)
	if err != nil {
		log.WithError(err).Fatal("start reminder dispatcher")
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
}
