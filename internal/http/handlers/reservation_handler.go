// README: Reservation handlers for create/get/confirm/cancel.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"petcare/internal/http/middleware"
	"petcare/internal/modules/pricing"
	"petcare/internal/modules/reservation"
	"petcare/internal/types"
)

type ReservationService interface {
	Create(ctx context.Context, cmd reservation.CreateCommand) (*reservation.Reservation, error)
	Get(ctx context.Context, id types.ID) (*reservation.Reservation, error)
	Confirm(ctx context.Context, cmd reservation.ConfirmCommand) (*reservation.Reservation, error)
	Cancel(ctx context.Context, cmd reservation.CancelCommand) error
}

type ReservationHandler struct {
	reservation ReservationService
}

func NewReservationHandler(svc ReservationService) *ReservationHandler {
	return &ReservationHandler{reservation: svc}
}

type createReservationReq struct {
	// CustomerID is honoured for admins only; customers always book for themselves.
	CustomerID string                 `json:"customer_id"`
	Request    pricing.PricingRequest `json:"request"`
}

type cancelReservationReq struct {
	Reason string `json:"reason"`
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req createReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	customer := middleware.CallerUID(c)
	if req.CustomerID != "" && req.CustomerID != customer {
		if middleware.CallerRole(c) != middleware.RoleAdmin {
			writeError(c, http.StatusForbidden, "cannot book for another customer")
			return
		}
		customer = req.CustomerID
	}
	r, err := h.reservation.Create(c.Request.Context(), reservation.CreateCommand{
		CustomerID: types.ID(customer),
		Request:    req.Request,
	})
	if err != nil {
		writeReservationError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *ReservationHandler) Get(c *gin.Context) {
	r, ok := h.load(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	r, ok := h.load(c)
	if !ok {
		return
	}
	confirmed, err := h.reservation.Confirm(c.Request.Context(), reservation.ConfirmCommand{
		ReservationID: r.ID,
		ActorID:       types.ID(middleware.CallerUID(c)),
	})
	if err != nil {
		writeReservationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, confirmed)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	r, ok := h.load(c)
	if !ok {
		return
	}
	var req cancelReservationReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	actorType := "customer"
	if middleware.CallerRole(c) == middleware.RoleAdmin && types.ID(middleware.CallerUID(c)) != r.CustomerID {
		actorType = "admin"
	}
	err := h.reservation.Cancel(c.Request.Context(), reservation.CancelCommand{
		ReservationID: r.ID,
		ActorType:     actorType,
		ActorID:       types.ID(middleware.CallerUID(c)),
		Reason:        req.Reason,
	})
	if err != nil {
		writeReservationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reservation_id": r.ID, "status": reservation.StatusCancelled})
}

// load fetches the path reservation and hides other customers' reservations as 404.
func (h *ReservationHandler) load(c *gin.Context) (*reservation.Reservation, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid reservation id")
		return nil, false
	}
	r, err := h.reservation.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeReservationError(c, err)
		return nil, false
	}
	if r.CustomerID != types.ID(middleware.CallerUID(c)) && middleware.CallerRole(c) != middleware.RoleAdmin {
		writeReservationError(c, reservation.ErrNotFound)
		return nil, false
	}
	return r, true
}
