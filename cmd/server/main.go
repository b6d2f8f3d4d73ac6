package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/database"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/router"
	"github.com/iliyamo/restaurant-booking/internal/service"
)

func main() {
	cfg := config.Load()
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}
	if err := seedSettings(ctx, cfg, store); err != nil {
		log.Fatalf("settings: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; using in-process cache and rate limiter")
	} else {
		defer rdb.Close()
	}

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.NotifyEnabled {
		d := service.NewDispatcher(cfg.NotifyWorkers, cfg.NotifyBuffer, cfg.NotifyRetries, cfg.NotifyBackoff,
			service.NewAMQPPublisher(cfg.RabbitURL))
		d.Start(ctx)
		notifier = d
		if cfg.ConsumerEnabled {
			consumer := queue.NewConsumer(cfg.RabbitURL, cfg.NotifyLogPath, rdb)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("booking-consumer: stopped: %v", err)
				}
			}()
		}
	}

	svc := service.NewBookingService(store,
		service.WithLocation(loc),
		service.WithNotifier(notifier),
	)
	go service.NewReminder(store, notifier, loc).Start(ctx, cfg.ReminderInterval)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	health := &handler.HealthHandler{}
	if db != nil {
		health.DB = db
	}
	deps := router.Deps{
		Health:    health,
		Bookings:  handler.NewBookingHandler(svc),
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	}
	router.RegisterRoutes(e, deps)
	router.RegisterBookings(e, deps)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s, tz=%s)", addr, cfg.Env, cfg.StoreDriver, loc)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStore returns the configured store.  db is nil for the in-memory
// driver.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, *sql.DB, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Printf("using in-memory store with demo data")
		return demoStore(), nil, nil
	case config.StoreMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewMySQLStore(db), db, nil
	}
	return nil, nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
}

// seedSettings stores the settings file as the singleton row when none
// exists yet.  An existing row always wins.
func seedSettings(ctx context.Context, cfg config.Config, store repository.Store) error {
	if cfg.SettingsFile == "" {
		return nil
	}
	s, err := config.LoadRestaurantSettings(cfg.SettingsFile)
	if err != nil {
		return err
	}
	err = store.SaveSettings(ctx, s)
	if errors.Is(err, repository.ErrSettingsExists) {
		log.Printf("settings: row already present, %s ignored", cfg.SettingsFile)
		return nil
	}
	return err
}

func demoStore() *repository.MemoryStore {
	m := repository.NewMemoryStore()
	m.PutTable(model.Table{ID: 1, ZoneID: 1, Name: "Window 1", Capacity: 2, MinCapacity: 1, PricePerHour: 2000000, IsActive: true})
	m.PutTable(model.Table{ID: 2, ZoneID: 1, Name: "Hall 4", Capacity: 4, MinCapacity: 2, PricePerHour: 8000000, IsActive: true})
	m.PutTable(model.Table{ID: 3, ZoneID: 2, Name: "Terrace 8", Capacity: 8, MinCapacity: 4, PricePerHour: 15000000, Deposit: 5000000, IsActive: true})
	m.PutMenuItem(model.MenuItem{ID: 1, Name: "Caesar salad", Price: 450000, IsAvailable: true})
	m.PutMenuItem(model.MenuItem{ID: 2, Name: "Ribeye steak", Price: 1890000, IsAvailable: true})
	m.PutMenuItem(model.MenuItem{ID: 3, Name: "Cheesecake", Price: 350000, IsAvailable: true})
	m.PutUser(model.User{ID: 1, FullName: "Demo Guest", Phone: "+10000000001", Email: "guest@example.com", Role: model.RoleCustomer})
	m.PutUser(model.User{ID: 2, FullName: "Demo Staff", Phone: "+10000000002", Email: "staff@example.com", Role: model.RoleStaff})
	return m
}
