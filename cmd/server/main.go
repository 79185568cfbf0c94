package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/avialta/airline-reservation/internal/booking"
    "github.com/avialta/airline-reservation/internal/cache"
    "github.com/avialta/airline-reservation/internal/config"
    "github.com/avialta/airline-reservation/internal/confirmation"
    "github.com/avialta/airline-reservation/internal/database"
    "github.com/avialta/airline-reservation/internal/handler"
    "github.com/avialta/airline-reservation/internal/queue"
    "github.com/avialta/airline-reservation/internal/repository"
    "github.com/avialta/airline-reservation/internal/router"
    "github.com/avialta/airline-reservation/internal/seatmap"
)

func main() {
    // A missing .env is fine in containerised deployments where the
    // environment is injected directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and seat-map cache disabled")
    }

    aircraftRepo := repository.NewAircraftRepo(db)
    flightRepo := repository.NewFlightRepo(db)
    seatRepo := repository.NewSeatRepo(db)
    reservationRepo := repository.NewReservationRepo(db)
    store := repository.NewBookingStore(db)

    saga := booking.NewSaga(store,
        confirmation.NewGeneratorWith(cfg.ConfirmationPrefix, confirmation.DefaultLength),
        booking.SagaConfig{HoldTTL: cfg.HoldTTL, PaymentTimeout: cfg.PaymentTimeout},
    )
    seatMapCache := cache.NewSeatMapCache(rdb, cache.DefaultSeatMapTTL)

    admin := handler.NewAdminHandler(db, aircraftRepo, flightRepo, seatRepo, seatmap.NewProvisioner())
    bookingH := handler.NewBookingHandler(saga, reservationRepo, flightRepo, seatMapCache)
    browse := handler.NewBrowseHandler(flightRepo, seatRepo, seatMapCache)

    // The confirmed-reservation consumer runs for the lifetime of the
    // process and reconnects on broker failures.
    go func() {
        if err := queue.StartReservationConsumer(); err != nil {
            log.Printf("reservation consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())

    router.RegisterRoutes(e)
    router.RegisterPublic(e, browse)
    router.RegisterCustomer(e, bookingH, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
    router.RegisterAdmin(e, admin, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
