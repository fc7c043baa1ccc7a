package app

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/seatflow/reservation-engine/internal/api"
	"github.com/seatflow/reservation-engine/internal/idempotency"
	"github.com/seatflow/reservation-engine/internal/lock"
	"github.com/seatflow/reservation-engine/internal/reservation"
	reservationHttp "github.com/seatflow/reservation-engine/internal/reservation/http"
	"github.com/seatflow/reservation-engine/internal/restaurant"
	"github.com/seatflow/reservation-engine/internal/sector"
	"github.com/seatflow/reservation-engine/internal/sweep"
	"github.com/seatflow/reservation-engine/internal/table"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	ProdOrigins    string
	DBPool         *pgxpool.Pool
	RedisClient    *redis.Client
	LockTTL        time.Duration
	AssignmentKMax int
	SweepInterval  time.Duration
}

// Container holds the initialized components an operator needs to run the
// service: the HTTP router and the background sweep scheduler.
type Container struct {
	Router            *gin.Engine
	ReservationSvc    reservation.Service
	SweepScheduler    *sweep.Scheduler
}

// NewContainer wires every repository, service, and handler together.
func NewContainer(cfg Config) *Container {
	restaurantRepo := restaurant.NewPgxRepository(cfg.DBPool)
	sectorRepo := sector.NewPgxRepository(cfg.DBPool)
	tableRepo := table.NewPgxRepository(cfg.DBPool)
	reservationRepo := reservation.NewPgxRepository(cfg.DBPool)
	idempotencyRepo := idempotency.NewPgxRepository(cfg.DBPool)

	lockManager := lock.NewRedisManager(cfg.RedisClient, cfg.LockTTL)

	reservationSvc := reservation.NewService(reservationRepo, restaurantRepo, sectorRepo, tableRepo, lockManager, cfg.AssignmentKMax, time.Now)
	availabilitySvc := reservation.NewAvailabilityService(restaurantRepo, sectorRepo, tableRepo, reservationRepo, cfg.AssignmentKMax, time.Now)
	idempotencySvc := idempotency.NewService(idempotencyRepo)

	reservationHandler := reservationHttp.NewHandler(reservationSvc, availabilitySvc, idempotencySvc)

	var origins []string
	if cfg.ProdOrigins != "" {
		origins = strings.Split(cfg.ProdOrigins, ",")
	}
	router := api.NewRouter(api.Config{
		ReservationHandler: reservationHandler,
		ProdOrigins:        origins,
	})

	scheduler := sweep.New(reservationSvc, cfg.SweepInterval)

	return &Container{
		Router:         router,
		ReservationSvc: reservationSvc,
		SweepScheduler: scheduler,
	}
}
