package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"planner-board/backend/planner-service/config"
	"planner-board/backend/planner-service/handlers"
	"planner-board/backend/planner-service/repositories"
	"planner-board/backend/planner-service/services"
	"planner-board/backend/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "planner_circuit_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
	},
	[]string{"name"},
)

// App holds the wired services of one process.
type App struct {
	Tasks    *services.TaskService
	Activity *services.ActivityService
	Users    *services.UserService
	Board    *services.BoardService
	Notifier *services.NotificationService
	// Directory is the user directory behind Users.
	Directory repositories.Directory

	closers []func()
}

// Close releases database sessions in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Router returns the HTTP API for the app.
func (a *App) Router(cfg *config.Config, logger logrus.FieldLogger) http.Handler {
	return handlers.NewRouter(handlers.RouterDeps{
		Tasks:      a.Tasks,
		Activity:   a.Activity,
		Users:      a.Users,
		Board:      a.Board,
		Logger:     logger,
		JWTSecret:  cfg.JWTSecret,
		CORSOrigin: cfg.CORSOrigin,
	})
}

type stores struct {
	tasks     repositories.TaskRepository
	directory repositories.Directory
	activity  repositories.ActivityRepository
	mailer    repositories.Mailer
}

// New builds stores and services for the drivers selected in cfg.
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{}
	s, err := app.openStores(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Directory = s.directory
	app.Activity = services.NewActivityService(s.activity, logger)
	app.Notifier = services.NewNotificationService(s.mailer, logger)
	app.Tasks = services.NewTaskService(s.tasks, s.directory, logger, app.Activity, app.Notifier)
	app.Users = services.NewUserService(s.directory, cfg.SearchLimit, logger)
	app.Board = services.NewBoardService(app.Tasks)

	logger.Infof("Event ID: APP_READY, Description: store=%s activity=%s mail=%s", cfg.StoreDriver, cfg.ActivityDriver, cfg.MailDriver)
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (stores, error) {
	var (
		s      stores
		sp     *repositories.SharePointClient
		memory *repositories.MemoryStore
	)
	sharePoint := func() *repositories.SharePointClient {
		if sp == nil {
			sp = NewSharePointClient(cfg.SharePoint, logger)
		}
		return sp
	}

	switch cfg.StoreDriver {
	case config.DriverSharePoint:
		client := sharePoint()
		s.tasks, s.directory, s.activity = client, client, client
	case config.DriverMongo:
		store, err := a.openMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return stores{}, err
		}
		s.tasks, s.directory, s.activity = store, store, store
	case config.DriverMemory:
		memory = repositories.NewMemoryStore()
		s.tasks, s.directory, s.activity = memory, memory, memory
	}

	if cfg.ActivityDriver == config.DriverCassandra {
		repo, err := repositories.NewCassandraActivityRepository(cfg.Cassandra.Hosts, cfg.Cassandra.Keyspace, logger)
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, repo.Close)
		s.activity = repo
	}

	switch cfg.MailDriver {
	case config.DriverSharePoint:
		s.mailer = sharePoint()
	case config.DriverSMTP:
		s.mailer = repositories.NewSMTPMailer(cfg.SMTP)
	default:
		if memory != nil {
			s.mailer = memory
		} else {
			s.mailer = repositories.DiscardMailer{Logger: logger}
		}
	}
	return s, nil
}

// NewSharePointClient wires the REST client with its timeout and breaker.
func NewSharePointClient(cfg config.SharePointConfig, logger logrus.FieldLogger) *repositories.SharePointClient {
	breaker := utils.NewCircuitBreaker(utils.BreakerSettings{
		Name:        "sharepoint",
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
		OnStateChange: func(name string, _, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
		},
	}, logger)
	breakerState.WithLabelValues("sharepoint").Set(float64(gobreaker.StateClosed))
	return repositories.NewSharePointClient(cfg, utils.NewHTTPClient(cfg.Timeout), breaker, logger)
}

func (a *App) openMongo(ctx context.Context, cfg config.MongoConfig, logger logrus.FieldLogger) (*repositories.MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	a.closers = append(a.closers, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warnf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
		}
	})
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Infof("Event ID: DB_CONNECTED, Description: Connected to MongoDB database %s", cfg.Database)

	store := repositories.NewMongoStore(client.Database(cfg.Database), logger)
	if err := store.EnsureIndexes(connectCtx); err != nil {
		return nil, err
	}
	return store, nil
}
