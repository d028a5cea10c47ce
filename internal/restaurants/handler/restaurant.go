package handler

import (
	"encoding/json"
	"net/http"

	"maitre/internal/restaurants/service"
	httputil "maitre/pkg/http"
	"maitre/pkg/logger"
	"maitre/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RestaurantHandler struct {
	service service.RestaurantService
	log     *logger.Logger
}

func NewRestaurantHandler(service service.RestaurantService, log *logger.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		service: service,
		log:     log,
	}
}

func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var restaurant model.Restaurant
	if err := json.NewDecoder(r.Body).Decode(&restaurant); err != nil {
		h.writeJSON(w, "Create", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.Create(r.Context(), &restaurant); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, restaurant); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *RestaurantHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	restaurant, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, restaurant); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *RestaurantHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	restaurants, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, restaurants, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *RestaurantHandler) CreateSitting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var sitting model.Sitting
	if err := json.NewDecoder(r.Body).Decode(&sitting); err != nil {
		h.writeJSON(w, "CreateSitting", http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid request body"})
		return
	}
	sitting.RestaurantID = ps.ByName("id")

	if err := h.service.CreateSitting(r.Context(), &sitting); err != nil {
		h.writeError(w, "CreateSitting", err)
		return
	}

	if err := httputil.WriteCreated(w, sitting); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateSitting", "error", err)
	}
}

func (h *RestaurantHandler) GetSittings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sittings, err := h.service.GetSittings(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetSittings", err)
		return
	}

	if err := httputil.WriteSuccess(w, sittings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSittings", "error", err)
	}
}

func (h *RestaurantHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *RestaurantHandler) writeJSON(w http.ResponseWriter, handler string, status int, body any) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", err)
	}
}

func (h *RestaurantHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/restaurants", h.GetAll)
	router.POST("/api/v1/restaurants", h.Create)
	router.GET("/api/v1/restaurants/:id", h.GetByID)
	router.GET("/api/v1/restaurants/:id/sittings", h.GetSittings)
	router.POST("/api/v1/restaurants/:id/sittings", h.CreateSitting)
}
