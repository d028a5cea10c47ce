package availability

import (
	"net/http"
	"strconv"
	"time"

	httputil "maitre/pkg/http"
	"maitre/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	service Service
	log     *logger.Logger
}

func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) Slots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		h.writeJSON(w, "Slots", http.StatusBadRequest, httputil.ErrorResponse{Error: "Missing date parameter"})
		return
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		h.writeJSON(w, "Slots", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid date parameter, expected YYYY-MM-DD"})
		return
	}

	partySize := 1
	if raw := r.URL.Query().Get("party_size"); raw != "" {
		partySize, err = strconv.Atoi(raw)
		if err != nil {
			h.writeJSON(w, "Slots", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid party_size parameter"})
			return
		}
	}

	slots, err := h.service.Slots(r.Context(), ps.ByName("id"), date, partySize)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "error", err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, handler string, status int, body any) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/restaurants/:id/availability", h.Slots)
}
