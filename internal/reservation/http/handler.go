package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seatflow/reservation-engine/internal/idempotency"
	"github.com/seatflow/reservation-engine/internal/pkg/apperror"
	"github.com/seatflow/reservation-engine/internal/pkg/request"
	"github.com/seatflow/reservation-engine/internal/pkg/response"
	"github.com/seatflow/reservation-engine/internal/reservation"
	"github.com/seatflow/reservation-engine/internal/timegrid"
)

type Handler struct {
	service      reservation.Service
	availability reservation.AvailabilityService
	idem         idempotency.Service
}

func NewHandler(service reservation.Service, availability reservation.AvailabilityService, idem idempotency.Service) *Handler {
	return &Handler{service: service, availability: availability, idem: idem}
}

func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}
	date, err := timegrid.ParseDate(req.Date)
	if err != nil {
		response.Error(c, apperror.InvalidFormat("date must be YYYY-MM-DD"))
		return
	}

	durationMinutes, slots, err := h.availability.Availability(c.Request.Context(), req.RestaurantID, req.SectorID, date, req.PartySize)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAvailabilityResponse(durationMinutes, slots))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateReservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}

	key := c.GetHeader("Idempotency-Key")
	status, payload, err := h.idem.Execute(c.Request.Context(), key, func() (int, []byte, error) {
		res, err := h.service.Create(c.Request.Context(), body.toRequest())
		if err != nil {
			return 0, nil, err
		}
		b, err := json.Marshal(NewReservationResponse(res))
		return http.StatusCreated, b, err
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(status, "application/json", payload)
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}

	var body UpdateReservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}

	key := c.GetHeader("Idempotency-Key")
	status, payload, err := h.idem.Execute(c.Request.Context(), key, func() (int, []byte, error) {
		res, err := h.service.Update(c.Request.Context(), uri.ID, body.toRequest())
		if err != nil {
			return 0, nil, err
		}
		b, err := json.Marshal(NewReservationResponse(res))
		return http.StatusOK, b, err
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(status, "application/json", payload)
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}
	if err := h.service.Cancel(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}
	res, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReservationResponse(res))
}

func (h *Handler) Day(c *gin.Context) {
	var req DayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}
	date, err := timegrid.ParseDate(req.Date)
	if err != nil {
		response.Error(c, apperror.InvalidFormat("date must be YYYY-MM-DD"))
		return
	}

	items, err := h.service.Day(c.Request.Context(), req.RestaurantID, date, req.SectorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewDayResponse(req.Date, items))
}

func (h *Handler) Approve(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}
	res, err := h.service.Approve(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReservationResponse(res))
}

func (h *Handler) Reject(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.InvalidFormat(err.Error()))
		return
	}
	res, err := h.service.Reject(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReservationResponse(res))
}

func (h *Handler) ExpireSweep(c *gin.Context) {
	n, err := h.service.ExpirePending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ExpireSweepResponse{ExpiredCount: n})
}
