package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	reservationHttp "github.com/seatflow/reservation-engine/internal/reservation/http"
)

// Config holds all dependencies required to initialize the router.
type Config struct {
	ReservationHandler *reservationHttp.Handler
	ProdOrigins        []string
}

// NewRouter initializes the HTTP router engine using the provided config.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.ProdOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.ProdOrigins
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:8081"}
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Idempotency-Key"}
	r.Use(cors.New(corsCfg))

	v1 := r.Group("/v1")
	{
		reservationHttp.RegisterRoutes(v1, cfg.ReservationHandler)
	}

	return r
}
