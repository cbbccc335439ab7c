package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/slotswap/internal/logging"
	"github.com/HammerMeetNail/slotswap/internal/models"
	"github.com/HammerMeetNail/slotswap/internal/services"
	"github.com/HammerMeetNail/slotswap/internal/validation"
)

type SwapHandler struct {
	swapService services.SwapServiceInterface
	validator   *validation.Validator
}

func NewSwapHandler(swapService services.SwapServiceInterface) *SwapHandler {
	return &SwapHandler{
		swapService: swapService,
		validator:   validation.New(),
	}
}

type SwapRequestResponse struct {
	Request *models.SwapRequest `json:"request"`
}

type IncomingSwapListResponse struct {
	Requests []models.IncomingSwapRequest `json:"requests"`
}

type OutgoingSwapListResponse struct {
	Requests []*models.SwapRequest `json:"requests"`
}

func (h *SwapHandler) Propose(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.ProposeSwapParams
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		if !writeValidationError(w, err) {
			writeError(w, http.StatusBadRequest, "Invalid request")
		}
		return
	}

	mySlotID, err := uuid.Parse(req.MySlotID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot ID")
		return
	}
	theirSlotID, err := uuid.Parse(req.TheirSlotID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot ID")
		return
	}

	swap, err := h.swapService.ProposeSwap(r.Context(), user.ID, mySlotID, theirSlotID)
	if err != nil {
		writeSwapError(w, err, "Error proposing swap")
		return
	}

	writeJSON(w, http.StatusCreated, SwapRequestResponse{Request: swap})
}

func (h *SwapHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := parsePathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid swap request ID")
		return
	}

	var req models.RespondSwapParams
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		if !writeValidationError(w, err) {
			writeError(w, http.StatusBadRequest, "Invalid request")
		}
		return
	}

	result, err := h.swapService.RespondToSwap(r.Context(), user.ID, requestID, *req.Accept)
	if err != nil {
		writeSwapError(w, err, "Error responding to swap")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SwapHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.swapService.ListIncomingRequests(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error listing incoming swaps", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if requests == nil {
		requests = []models.IncomingSwapRequest{}
	}

	writeJSON(w, http.StatusOK, IncomingSwapListResponse{Requests: requests})
}

func (h *SwapHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.swapService.ListOutgoingRequests(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error listing outgoing swaps", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if requests == nil {
		requests = []*models.SwapRequest{}
	}

	writeJSON(w, http.StatusOK, OutgoingSwapListResponse{Requests: requests})
}

func (h *SwapHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := parsePathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid swap request ID")
		return
	}

	swap, err := h.swapService.GetSwapRequest(r.Context(), user.ID, requestID)
	if err != nil {
		writeSwapError(w, err, "Error getting swap request")
		return
	}

	writeJSON(w, http.StatusOK, SwapRequestResponse{Request: swap})
}

func writeSwapError(w http.ResponseWriter, err error, logMessage string) {
	switch {
	case errors.Is(err, services.ErrSwapRequestNotFound):
		writeError(w, http.StatusNotFound, "Swap request not found")
	case errors.Is(err, services.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "Slot not found")
	case errors.Is(err, services.ErrNotSlotOwner):
		writeError(w, http.StatusForbidden, "You do not own the offered slot")
	case errors.Is(err, services.ErrNotSwapReceiver):
		writeError(w, http.StatusForbidden, "Only the receiver can respond to this request")
	case errors.Is(err, services.ErrCannotSwapOwnSlot):
		writeError(w, http.StatusBadRequest, "Cannot swap with your own slot")
	case errors.Is(err, services.ErrSlotNotSwappable):
		writeError(w, http.StatusConflict, "Slot is not available for swapping")
	case errors.Is(err, services.ErrSwapNotPending):
		writeError(w, http.StatusConflict, "Swap request has already been resolved")
	case errors.Is(err, services.ErrSwapConflict):
		writeError(w, http.StatusConflict, "Slot changed, please retry")
	default:
		logging.Error(logMessage, map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
