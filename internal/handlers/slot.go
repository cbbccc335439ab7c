package handlers

import (
	"errors"
	"net/http"

	"github.com/HammerMeetNail/slotswap/internal/logging"
	"github.com/HammerMeetNail/slotswap/internal/models"
	"github.com/HammerMeetNail/slotswap/internal/services"
)

type SlotHandler struct {
	swapService services.SwapServiceInterface
}

func NewSlotHandler(swapService services.SwapServiceInterface) *SlotHandler {
	return &SlotHandler{swapService: swapService}
}

type CreateSlotRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type SlotResponse struct {
	Slot    *models.Slot `json:"slot,omitempty"`
	Message string       `json:"message,omitempty"`
}

type SlotListResponse struct {
	Slots []*models.Slot `json:"slots"`
}

type SwappableSlotListResponse struct {
	Slots []models.SwappableSlot `json:"slots"`
}

func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	slot, err := h.swapService.CreateSlot(r.Context(), models.CreateSlotParams{
		UserID: user.ID,
		Date:   req.Date,
		Time:   req.Time,
	})
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		logging.Error("Error creating slot", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, SlotResponse{Slot: slot})
}

func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	slots, err := h.swapService.ListMySlots(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error listing slots", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if slots == nil {
		slots = []*models.Slot{}
	}

	writeJSON(w, http.StatusOK, SlotListResponse{Slots: slots})
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	slotID, err := parsePathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot ID")
		return
	}

	if err := h.swapService.DeleteSlot(r.Context(), user.ID, slotID); err != nil {
		writeSlotError(w, err, "Error deleting slot")
		return
	}

	writeJSON(w, http.StatusOK, SlotResponse{Message: "Slot deleted"})
}

func (h *SlotHandler) MakeSwappable(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	slotID, err := parsePathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot ID")
		return
	}

	slot, err := h.swapService.MakeSwappable(r.Context(), user.ID, slotID)
	if err != nil {
		writeSlotError(w, err, "Error making slot swappable")
		return
	}

	writeJSON(w, http.StatusOK, SlotResponse{Slot: slot})
}

func (h *SlotHandler) ListSwappable(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	slots, err := h.swapService.ListSwappableSlots(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error listing swappable slots", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if slots == nil {
		slots = []models.SwappableSlot{}
	}

	writeJSON(w, http.StatusOK, SwappableSlotListResponse{Slots: slots})
}

func writeSlotError(w http.ResponseWriter, err error, logMessage string) {
	switch {
	case errors.Is(err, services.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "Slot not found")
	case errors.Is(err, services.ErrNotSlotOwner):
		writeError(w, http.StatusForbidden, "You do not own this slot")
	case errors.Is(err, services.ErrSlotPendingSwap):
		writeError(w, http.StatusConflict, "Slot is part of a pending swap")
	case errors.Is(err, services.ErrSwapConflict):
		writeError(w, http.StatusConflict, "Slot changed, please retry")
	default:
		logging.Error(logMessage, map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
