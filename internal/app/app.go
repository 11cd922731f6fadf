package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/config"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/events"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/mailer"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/service"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/bus"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/jwt"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
)

type Options struct {
	// WithRedis connects Redis and builds the auth stack that depends on it.
	WithRedis bool
	// WithObjectStore connects MinIO when it is enabled in the config.
	WithObjectStore bool
}

// Stack bundles the connections and services shared by the server and the CLI.
type Stack struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Bus    *bus.Bus

	Mailer       *mailer.Mailer
	TokenManager *jwt.TokenManager
	Revocations  *repository.RevocationStore
	VerifyLogs   *repository.VerificationLogRepository
	ReminderLog  *repository.ReminderRepository
	Confirms     *repository.ConfirmationRepository

	Activity      *service.ActivityService
	Verification  *service.VerificationService
	Confirmations *service.ConfirmationService
	Reminders     *service.ReminderService
	Tasks         *service.TaskService
	Profiles      *service.ProfileService
	Auth          *service.AuthService
}

func Open(ctx context.Context, cfg *config.Config, opts Options) (*Stack, error) {
	s := &Stack{Config: cfg}
	success := false
	defer func() {
		if !success {
			s.Close()
		}
	}()

	var err error
	if s.DB, err = InitDatabase(ctx, cfg); err != nil {
		return nil, err
	}

	if opts.WithRedis {
		if s.Redis, err = InitRedis(ctx, cfg); err != nil {
			return nil, err
		}
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		b, err := InitBus(cfg)
		if err != nil {
			logger.Warn("NATS unavailable; activity events will not be published", zap.Error(err))
		} else {
			s.Bus = b
			publisher = b
		}
	}

	if s.Mailer, err = NewMailer(cfg); err != nil {
		return nil, err
	}

	var objects service.ObjectStore
	if opts.WithObjectStore && cfg.MinioEnabled {
		storage, err := service.NewAvatarStorage(ctx, service.AvatarStorageConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
		})
		if err != nil {
			logger.Warn("MinIO unavailable; avatar endpoints disabled", zap.Error(err))
		} else {
			objects = storage
		}
	}

	profiles := repository.NewProfileRepository(s.DB)
	tasks := repository.NewTaskRepository(s.DB)
	s.VerifyLogs = repository.NewVerificationLogRepository(s.DB)
	s.ReminderLog = repository.NewReminderRepository(s.DB)
	s.Confirms = repository.NewConfirmationRepository(s.DB)

	s.Activity = service.NewActivityService(repository.NewActivityRepository(s.DB), publisher)
	s.Verification = service.NewVerificationService(profiles, s.VerifyLogs, s.Mailer)
	s.Confirmations = service.NewConfirmationService(
		s.Confirms, tasks, profiles, s.Mailer,
		service.WithConfirmationActivity(s.Activity),
	)
	s.Reminders = service.NewReminderService(
		tasks, profiles, s.ReminderLog, s.Mailer,
		service.WithReminderActivity(s.Activity),
	)
	s.Tasks = service.NewTaskService(tasks, service.WithTaskActivity(s.Activity))
	s.Profiles = service.NewProfileService(profiles, objects)

	s.TokenManager = jwt.NewTokenManager(jwt.TokenManagerConfig{
		SecretKey:      cfg.JWTSecret,
		AccessDuration: cfg.JWTAccessDuration,
	})
	if s.Redis != nil {
		s.Revocations = repository.NewRevocationStore(s.Redis)
		s.Auth = service.NewAuthService(profiles, s.TokenManager, s.Revocations, s.Verification)
	}

	success = true
	return s, nil
}

// Ping reports whether the database and Redis are reachable.
func (s *Stack) Ping(ctx context.Context) error {
	if err := s.DB.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (s *Stack) Close() {
	if s.Bus != nil {
		s.Bus.Close()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

func InitDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to PostgreSQL")
	return pool, nil
}

func InitRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Connected to Redis")
	return client, nil
}

func InitBus(cfg *config.Config) (*bus.Bus, error) {
	b, err := bus.New(cfg.NATSURL,
		nats.Name("taskmate-service"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if err := b.EnsureStream(events.StreamName, events.ActivitySubject); err != nil {
		b.Close()
		return nil, err
	}

	logger.Info("Connected to NATS", zap.String("stream", events.StreamName))
	return b, nil
}

// NewMailer delivers over SMTP when enabled and logs messages otherwise.
func NewMailer(cfg *config.Config) (*mailer.Mailer, error) {
	var sender mailer.Sender = mailer.LogSender{}
	if cfg.SMTPEnabled {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.SMTPTimeout,
		})
	}
	return mailer.New(sender, cfg.SMTPFrom, cfg.BaseURL)
}
