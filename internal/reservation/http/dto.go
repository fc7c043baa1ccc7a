package http

import (
	"time"

	"github.com/seatflow/reservation-engine/internal/reservation"
	"github.com/seatflow/reservation-engine/internal/timegrid"
)

// AvailabilityRequest defines query parameters for GET /availability.
type AvailabilityRequest struct {
	RestaurantID string `form:"restaurantId" binding:"required"`
	SectorID     string `form:"sectorId" binding:"required"`
	Date         string `form:"date" binding:"required"`
	PartySize    int    `form:"partySize" binding:"required,min=1,max=20"`
}

type SlotResponse struct {
	Start     time.Time `json:"start"`
	Available bool      `json:"available"`
	Tables    []string  `json:"tables,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

type AvailabilityResponse struct {
	SlotMinutes     int            `json:"slotMinutes"`
	DurationMinutes int            `json:"durationMinutes"`
	Slots           []SlotResponse `json:"slots"`
}

func NewAvailabilityResponse(durationMinutes int, slots []reservation.SlotReport) AvailabilityResponse {
	out := make([]SlotResponse, len(slots))
	for i, s := range slots {
		out[i] = SlotResponse{Start: s.Start, Available: s.Available, Tables: s.Tables, Reason: s.Reason}
	}
	return AvailabilityResponse{
		SlotMinutes:     int(timegrid.Step / time.Minute),
		DurationMinutes: durationMinutes,
		Slots:           out,
	}
}

// CustomerBody mirrors reservation.Customer over the wire.
type CustomerBody struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (c CustomerBody) toDomain() reservation.Customer {
	return reservation.Customer{Name: c.Name, Phone: c.Phone, Email: c.Email}
}

type CreateReservationBody struct {
	RestaurantID string       `json:"restaurantId" binding:"required"`
	SectorID     string       `json:"sectorId" binding:"required"`
	PartySize    int          `json:"partySize" binding:"required,min=1,max=20"`
	Start        time.Time    `json:"start" binding:"required"`
	Customer     CustomerBody `json:"customer"`
	Notes        string       `json:"notes"`
}

func (b CreateReservationBody) toRequest() reservation.CreateRequest {
	return reservation.CreateRequest{
		RestaurantID: b.RestaurantID,
		SectorID:     b.SectorID,
		PartySize:    b.PartySize,
		Start:        b.Start,
		Customer:     b.Customer.toDomain(),
		Notes:        b.Notes,
	}
}

type UpdateReservationBody struct {
	SectorID  *string       `json:"sectorId"`
	PartySize *int          `json:"partySize" binding:"omitempty,min=1,max=20"`
	Start     *time.Time    `json:"start"`
	Customer  *CustomerBody `json:"customer"`
	Notes     *string       `json:"notes"`
}

func (b UpdateReservationBody) toRequest() reservation.UpdateRequest {
	req := reservation.UpdateRequest{
		SectorID:  b.SectorID,
		PartySize: b.PartySize,
		Start:     b.Start,
		Notes:     b.Notes,
	}
	if b.Customer != nil {
		cust := b.Customer.toDomain()
		req.Customer = &cust
	}
	return req
}

type ReservationResponse struct {
	ID           string       `json:"id"`
	RestaurantID string       `json:"restaurantId"`
	SectorID     string       `json:"sectorId"`
	TableIDs     []string     `json:"tableIds"`
	PartySize    int          `json:"partySize"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	Status       string       `json:"status"`
	ExpiresAt    *time.Time   `json:"expiresAt,omitempty"`
	Customer     CustomerBody `json:"customer"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		SectorID:     r.SectorID,
		TableIDs:     r.TableIDs,
		PartySize:    r.PartySize,
		Start:        r.Start,
		End:          r.End,
		Status:       string(r.Status),
		ExpiresAt:    r.ExpiresAt,
		Customer:     CustomerBody{Name: r.Customer.Name, Phone: r.Customer.Phone, Email: r.Customer.Email},
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// DayRequest defines query parameters for GET /reservations/day.
type DayRequest struct {
	RestaurantID string `form:"restaurantId" binding:"required"`
	Date         string `form:"date" binding:"required"`
	SectorID     string `form:"sectorId"`
}

type DayResponse struct {
	Date  string                 `json:"date"`
	Items []ReservationResponse `json:"items"`
}

func NewDayResponse(date string, items []*reservation.Reservation) DayResponse {
	out := make([]ReservationResponse, len(items))
	for i, r := range items {
		out[i] = NewReservationResponse(r)
	}
	return DayResponse{Date: date, Items: out}
}

type ExpireSweepResponse struct {
	ExpiredCount int `json:"expiredCount"`
}
