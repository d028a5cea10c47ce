package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"maitre/internal/bookings/service"
	httputil "maitre/pkg/http"
	"maitre/pkg/logger"
	"maitre/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// createBookingRequest accepts the current field names plus the aliases
// older clients still send. Normalization happens once, here, so the rest
// of the system only ever sees the canonical shape.
type createBookingRequest struct {
	SittingID  string `json:"sitting_id"`
	GuestName  string `json:"guest_name"`
	Name       string `json:"name"`
	GuestEmail string `json:"guest_email"`
	Email      string `json:"email"`
	GuestPhone string `json:"guest_phone"`
	Phone      string `json:"phone"`

	Covers      *int `json:"covers"`
	PartySize   *int `json:"party_size"`
	CoversCount *int `json:"covers_count"`

	StartTime      *time.Time `json:"start_time"`
	Start          *time.Time `json:"start"`
	RequestedStart *time.Time `json:"requested_start"`
	ReservedAt     *time.Time `json:"reserved_at"`
	EndTime        *time.Time `json:"end_time"`
	End            *time.Time `json:"end"`

	Source string `json:"source"`
	Notes  string `json:"notes"`
	Actor  string `json:"actor"`
}

func (req *createBookingRequest) toBooking(restaurantID string) *model.Booking {
	booking := &model.Booking{
		RestaurantID: restaurantID,
		SittingID:    req.SittingID,
		GuestName:    firstNonEmpty(req.GuestName, req.Name),
		GuestEmail:   firstNonEmpty(req.GuestEmail, req.Email),
		GuestPhone:   firstNonEmpty(req.GuestPhone, req.Phone),
		Source:       req.Source,
		Notes:        req.Notes,
	}

	if covers := firstNonNilInt(req.Covers, req.PartySize, req.CoversCount); covers != nil {
		booking.Covers = *covers
	}
	if start := firstNonNilTime(req.StartTime, req.Start, req.RequestedStart, req.ReservedAt); start != nil {
		booking.StartTime = *start
	}
	if end := firstNonNilTime(req.EndTime, req.End); end != nil {
		booking.EndTime = *end
	}

	return booking
}

type setStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, "Create", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}

	booking := req.toBooking(ps.ByName("id"))
	if err := h.service.Create(r.Context(), booking, req.Actor); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) ListByRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByRestaurant", err)
		return
	}

	start, err := parseTimeParam(r, "start")
	if err != nil {
		h.writeJSON(w, "ListByRestaurant", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid start parameter, expected RFC 3339"})
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		h.writeJSON(w, "ListByRestaurant", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid end parameter, expected RFC 3339"})
		return
	}

	bookings, total, err := h.service.ListByRestaurant(r.Context(), ps.ByName("id"), start, end, limit, offset)
	if err != nil {
		h.writeError(w, "ListByRestaurant", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByRestaurant", "error", err)
	}
}

func (h *BookingHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, "SetStatus", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}

	booking, err := h.service.SetStatus(r.Context(), ps.ByName("id"), req.Status, req.Actor)
	if err != nil {
		h.writeError(w, "SetStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "SetStatus", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor := r.URL.Query().Get("actor")

	if err := h.service.HardDelete(r.Context(), ps.ByName("id"), actor); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *BookingHandler) writeJSON(w http.ResponseWriter, handler string, status int, body any) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/restaurants/:id/bookings", h.Create)
	router.GET("/api/v1/restaurants/:id/bookings", h.ListByRestaurant)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.SetStatus)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNilInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonNilTime(values ...*time.Time) *time.Time {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
