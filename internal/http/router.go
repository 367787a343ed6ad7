// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare/internal/http/handlers"
	"petcare/internal/http/middleware"
	"petcare/internal/infra"
	"petcare/internal/modules/holiday"
	"petcare/internal/modules/pricing"
	"petcare/internal/modules/reservation"
)

type PricingService interface {
	handlers.Quoter
	handlers.RateCardService
}

type RouterDeps struct {
	Pricing     PricingService
	Holidays    handlers.HolidayService
	Reservation handlers.ReservationService
	Verifier    infra.TokenVerifier
	Log         *zap.Logger
	// Location interprets date-only rate card effective dates.
	Location *time.Location
}

var (
	_ PricingService              = (*pricing.Service)(nil)
	_ handlers.HolidayService     = (*holiday.Service)(nil)
	_ handlers.ReservationService = (*reservation.Service)(nil)
)

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(log), middleware.Recovery(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	quoteHandler := handlers.NewQuoteHandler(deps.Pricing)
	api.POST("/quotes", quoteHandler.Create)

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Verifier))

	reservationHandler := handlers.NewReservationHandler(deps.Reservation)
	authed.POST("/reservations", reservationHandler.Create)
	authed.GET("/reservations/:id", reservationHandler.Get)
	authed.POST("/reservations/:id/confirm", reservationHandler.Confirm)
	authed.POST("/reservations/:id/cancel", reservationHandler.Cancel)

	admin := authed.Group("")
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))

	rateCardHandler := handlers.NewRateCardHandler(deps.Pricing, deps.Location)
	admin.GET("/rate-cards", rateCardHandler.List)
	admin.POST("/rate-cards", rateCardHandler.Publish)

	holidayHandler := handlers.NewHolidayHandler(deps.Holidays)
	admin.GET("/holidays/:year", holidayHandler.Get)
	admin.PUT("/holidays/:year", holidayHandler.Put)

	return r
}
