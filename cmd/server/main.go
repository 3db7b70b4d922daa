package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/vogiaan1904/draftqueue/config"
	"github.com/vogiaan1904/draftqueue/internal/catalog"
	grpcSvc "github.com/vogiaan1904/draftqueue/internal/delivery/grpc"
	httpDelivery "github.com/vogiaan1904/draftqueue/internal/delivery/http"
	"github.com/vogiaan1904/draftqueue/internal/delivery/kafka/consumer"
	"github.com/vogiaan1904/draftqueue/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/draftqueue/internal/delivery/ws"
	"github.com/vogiaan1904/draftqueue/internal/dispatch"
	"github.com/vogiaan1904/draftqueue/internal/infra/redis"
	"github.com/vogiaan1904/draftqueue/internal/launcher"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/queue"
	"github.com/vogiaan1904/draftqueue/internal/readycheck"
	repo "github.com/vogiaan1904/draftqueue/internal/repository/redis"
	"github.com/vogiaan1904/draftqueue/internal/service"
	"github.com/vogiaan1904/draftqueue/internal/session"
	"github.com/vogiaan1904/draftqueue/internal/status"
	pkgKafka "github.com/vogiaan1904/draftqueue/pkg/kafka"
	pkgLog "github.com/vogiaan1904/draftqueue/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})
	defer l.Sync()

	cat, err := catalog.Load(cfg.Catalog.File, cfg.IsProduction())
	if err != nil {
		l.Fatalf(ctx, "Failed to load queue catalog: %v", err)
	}

	// Redis is optional: without it there are no status snapshots and no token revocation.
	var (
		redisCli   *goredis.Client
		statusRepo repo.StatusRepository
		tokenRepo  repo.TokenRepository
	)
	if cfg.Redis.Enabled {
		redisCli, err = redis.Connect(ctx, cfg.Redis, l)
		if err != nil {
			l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
		}
		defer redis.Disconnect(context.Background(), redisCli, l)

		statusRepo = repo.NewRedisStatusRepository(redisCli, cfg.Status.SnapshotTTL, l)
		tokenRepo = repo.NewRedisTokenRepository(redisCli, l)
	}

	// Kafka producer
	var (
		prod          producer.Producer
		queueEvents   queue.Events
		rcEvents      readycheck.Events
		sessionEvents launcher.Events
	)
	if cfg.Kafka.Enabled {
		kafkaProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}

		prod = producer.NewProducer(kafkaProd, l)
		defer prod.Close()

		domainEvents := producer.NewDomainEvents(prod)
		queueEvents = domainEvents
		rcEvents = domainEvents
		sessionEvents = domainEvents
	}

	// Queue core
	// The loop outlives the signal context so shutdown can still drain it.
	loop := dispatch.New(l)
	if err := loop.Start(context.Background()); err != nil {
		l.Fatalf(ctx, "Failed to start dispatch loop: %v", err)
	}

	hub := ws.NewHub(l)
	sessions := session.NewMemoryRegistry()
	registry := queue.NewRegistry(loop, cat, hub, sessions, l)
	lnch := launcher.New(cat, hub, sessions, sessionEvents, cfg.Launcher, l)
	coordinator := readycheck.NewCoordinator(hub, loop, registry, lnch, rcEvents, cfg.ReadyCheck, l)
	registry.OnQueueFilled(coordinator)
	if queueEvents != nil {
		registry.SetEvents(queueEvents)
	}

	// Services
	reporter := status.NewReporter(cat, registry, sessions)
	dqSvc := service.NewDraftQueueService(cat, registry, sessions, reporter, prod, l)
	authSvc := service.NewPlayerAuthService(tokenRepo, cfg.JWT, l)

	// Kafka consumer
	var cons *consumer.Consumer
	if cfg.Kafka.Enabled {
		kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}

		cons = consumer.NewConsumer(kafkaConsGr, dqSvc, l)
		if err := cons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
	}

	var publisher service.StatusPublisher
	if statusRepo != nil {
		publisher = service.NewStatusPublisher(dqSvc, statusRepo, l, cfg.Status)
		if err := publisher.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start status publisher: %v", err)
		}
	}

	// gRPC server
	lnr, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRpcPort))
	if err != nil {
		l.Fatalf(ctx, "gRPC server failed to listen: %v", err)
	}

	gRpcSrv := grpc.NewServer()
	grpcSvc.RegisterDraftQueueServiceServer(gRpcSrv, grpcSvc.NewGrpcService(dqSvc, l))

	// HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	wsHandler := ws.NewHandler(hub, dqSvc, authSvc, l)
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpDelivery.NewHTTPHandler(dqSvc, authSvc, l).Router(wsHandler.Serve),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(ctx, "gRPC server is listening on port: %d", cfg.Server.GRpcPort)
		if err := gRpcSrv.Serve(lnr); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if statusRepo != nil {
		g.Go(func() error {
			return statusRepo.Subscribe(gCtx, func(evt models.StatusUpdateEvent) {
				if err := hub.Broadcast(models.EventQueueStatus, evt.Status); err != nil {
					l.Warnf(gCtx, "Failed to broadcast queue status: %v", err)
				}
			})
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		l.Info(context.Background(), "Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			l.Errorf(shutdownCtx, "Failed to shut down HTTP server: %v", err)
		}
		gRpcSrv.GracefulStop()

		if err := coordinator.Shutdown(shutdownCtx); err != nil {
			l.Errorf(shutdownCtx, "Failed to shut down ready checks: %v", err)
		}
		hub.CloseAll()
		if publisher != nil {
			if err := publisher.Stop(); err != nil && !errors.Is(err, service.ErrPublisherNotRunning) {
				l.Errorf(shutdownCtx, "Failed to stop status publisher: %v", err)
			}
		}
		if cons != nil {
			if err := cons.Close(); err != nil && !errors.Is(err, sarama.ErrClosedConsumerGroup) {
				l.Errorf(shutdownCtx, "Failed to close Kafka consumer: %v", err)
			}
		}
		if err := loop.Flush(shutdownCtx); err != nil {
			l.Warnf(shutdownCtx, "Dispatch loop did not drain: %v", err)
		}
		if err := loop.Stop(); err != nil && !errors.Is(err, dispatch.ErrLoopNotRunning) {
			l.Errorf(shutdownCtx, "Failed to stop dispatch loop: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		l.Errorf(context.Background(), "Server stopped with error: %v", err)
	}

	l.Info(context.Background(), "Server exited")
}
