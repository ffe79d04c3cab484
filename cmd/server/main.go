package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/food_delivery/internal/backup"
	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/httpserver"
	"github.com/Skotchmaster/food_delivery/internal/notify"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/search"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/pkg/config"
	"github.com/Skotchmaster/food_delivery/pkg/db"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	"github.com/Skotchmaster/food_delivery/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/food_delivery/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()
	config.MustOneOf(cfg.DBDriver, "DB_DRIVER", db.DriverPostgres, db.DriverSQLite)
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel, cfg.ServiceName)
	slog.SetDefault(logger)

	// money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	r := repo.New(gdb)
	if err := r.AutoMigrate(initCtx); err != nil {
		cancel()
		log.Fatalf("db migrate error: %v", err)
	}

	menuIndex := newMenuIndex(initCtx, cfg, r, logger)
	cancel()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		publisher = p
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramAdminChatID)
		if err != nil {
			logger.Error("telegram disabled", "error", err)
		} else {
			notifier = tg
		}
	}

	var dumper *backup.Dumper
	if cfg.DBDriver == db.DriverPostgres {
		dumper = backup.New(cfg.PgDumpBin, cfg.PsqlBin, cfg.DatabaseURL, cfg.BackupDir)
	}

	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Events:        publisher,
	}
	menuSvc := &service.MenuService{Repo: r, Index: menuIndex}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 5 * time.Minute
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(csrf.Middleware(csrf.Config{SkipPaths: []string{"/login", "/register", "/refresh"}}))

	httpserver.Register(e, &httpserver.Deps{
		DB:        gdb,
		JWTSecret: cfg.JWTAccessSecret,
		Auth:      &httpserver.AuthHTTP{Svc: authSvc},
		Menu:      &httpserver.MenuHTTP{Svc: menuSvc},
		Cart:      &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: publisher}},
		Order: &httpserver.OrderHTTP{
			Checkout: &service.CheckoutService{Repo: r, Events: publisher},
			Orders:   &service.OrderService{Repo: r},
			Payments: &service.PaymentService{Repo: r, Events: publisher, Notifier: notifier},
		},
		Customer: &httpserver.CustomerHTTP{
			Reviews:   &service.ReviewService{Repo: r},
			Addresses: &service.AddressService{Repo: r},
		},
		Admin: &httpserver.AdminHTTP{Svc: &service.AdminService{Repo: r, Backup: dumper}},
	})

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	go func() {
		logger.Info("server starting", "addr", addr, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
}

// newMenuIndex prefers Elasticsearch and falls back to SQL search when it is
// not configured or not reachable.
func newMenuIndex(ctx context.Context, cfg config.Config, r *repo.GormRepo, logger *slog.Logger) search.Index {
	if cfg.ESURL == "" {
		return search.NewSQL(r)
	}
	client, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		logger.Error("elasticsearch disabled", "error", err)
		return search.NewSQL(r)
	}
	es := search.NewElastic(client, cfg.ESIndex)
	if err := es.Ping(ctx); err != nil {
		logger.Error("elasticsearch unreachable, using sql search", "error", err)
		return search.NewSQL(r)
	}

	svc := &service.MenuService{Repo: r, Index: es}
	if err := svc.Reindex(ctx); err != nil {
		logger.Error("menu reindex failed", "error", err)
	}
	return es
}
