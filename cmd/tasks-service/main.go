package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-management-app/config"
	"task-management-app/domain"
	"task-management-app/handlers"
	"task-management-app/repositories"
	"task-management-app/services"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "tasks-service"

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal("loading config", "err", err)
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	tp, err := newTracerProvider(cfg.JaegerAddress)
	handleErr(logger, "initializing tracer", err)
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer := tp.Tracer(serviceName)

	taskLogger := logger.WithPrefix("task-store")
	userLogger := logger.WithPrefix("user-store")
	activityLogger := logger.WithPrefix("activity-store")
	httpLogger := logger.WithPrefix("http")

	timeoutContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var (
		taskRepo domain.TaskRepository
		userRepo domain.UserRepository
		sqlite   *repositories.SQLiteStore
	)

	switch cfg.StoreDriver {
	case config.DriverMongo:
		cli, err := repositories.NewMongoClient(timeoutContext, cfg.MongoURI, taskLogger)
		handleErr(logger, "connecting to mongo", err)
		defer func() { _ = cli.Disconnect(ctx) }()

		tasks := repositories.NewTaskRepo(cli, cfg.MongoDBName, taskLogger, tracer)
		handleErr(logger, "creating task indexes", tasks.EnsureIndexes(timeoutContext))
		users := repositories.NewUserRepo(cli, cfg.MongoDBName, userLogger, tracer)
		handleErr(logger, "creating user indexes", users.EnsureIndexes(timeoutContext))
		taskRepo, userRepo = tasks, users
	case config.DriverSQLite:
		sqlite, err = repositories.NewSQLiteStore(cfg.SQLitePath)
		handleErr(logger, "opening sqlite", err)
		taskRepo = repositories.NewTaskSQLite(sqlite, taskLogger, tracer)
		userRepo = repositories.NewUserSQLite(sqlite, userLogger, tracer)
	}

	var activityRepo domain.ActivityRepository
	if len(cfg.CassandraHosts) > 0 {
		cass, err := repositories.NewActivityCassandra(cfg.CassandraHosts, cfg.CassandraKeyspace, activityLogger, tracer)
		handleErr(logger, "connecting to cassandra", err)
		defer cass.Close()
		activityRepo = cass
	} else {
		if sqlite == nil {
			sqlite, err = repositories.NewSQLiteStore(cfg.SQLitePath)
			handleErr(logger, "opening sqlite activity store", err)
		}
		activityRepo = repositories.NewActivitySQLite(sqlite, activityLogger, tracer)
	}
	if sqlite != nil {
		defer func() { _ = sqlite.Close() }()
	}

	activityService := services.NewActivityService(activityRepo, activityLogger, tracer)
	orderingService := services.NewOrderingService(taskRepo, taskLogger, tracer)
	taskService := services.NewTaskService(taskRepo, orderingService, activityService, taskLogger, tracer)
	authService := services.NewAuthService(userRepo, cfg.SecretKey, cfg.TokenTTL, cfg.BcryptCost, userLogger, tracer)

	router := handlers.NewRouter(
		handlers.RouterConfig{Prefix: cfg.ApiPrefix, CORSOrigins: cfg.CORSOrigins},
		handlers.NewTaskHandler(taskService, httpLogger, tracer),
		handlers.NewAuthHandler(authService, httpLogger, tracer),
		handlers.NewActivityHandler(activityService, httpLogger, tracer),
		handlers.NewAuthMiddleware(authService, httpLogger),
		httpLogger,
	)

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     httpLogger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr, "store", cfg.StoreDriver, "prefix", cfg.ApiPrefix)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped unexpectedly", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received terminate, graceful shutdown", "signal", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("cannot gracefully shutdown", "err", err)
		return
	}
	logger.Info("server stopped")
}

func handleErr(logger *log.Logger, msg string, err error) {
	if err != nil {
		logger.Fatal(msg, "err", err)
	}
}
