package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/HammerMeetNail/slotswap/internal/id"
	"github.com/HammerMeetNail/slotswap/internal/logging"
	"github.com/HammerMeetNail/slotswap/internal/services"
)

const defaultHeartbeatInterval = 30 * time.Second

// EventsHandler streams swap events for the current user as server-sent events.
type EventsHandler struct {
	subscriber services.EventSubscriber
	heartbeat  time.Duration
}

func NewEventsHandler(subscriber services.EventSubscriber) *EventsHandler {
	return &EventsHandler{
		subscriber: subscriber,
		heartbeat:  defaultHeartbeatInterval,
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx := r.Context()
	events, closeSub, err := h.subscriber.Subscribe(ctx, user.ID)
	if err != nil {
		logging.Error("Error subscribing to swap events", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.ID.String(),
		})
		writeError(w, http.StatusServiceUnavailable, "Event stream unavailable")
		return
	}
	defer func() {
		if err := closeSub(); err != nil {
			logging.Debug("Error closing swap event subscription", map[string]interface{}{"error": err.Error()})
		}
	}()

	clientID, err := id.Generate("sse")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	log := logging.Default.WithFields(map[string]interface{}{
		"client_id": clientID,
		"user_id":   user.ID.String(),
	})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := sendEvent(w, rc, "connected", map[string]string{"client_id": clientID}); err != nil {
		log.Warn("Failed to open event stream", map[string]interface{}{"error": err.Error()})
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				log.Debug("Swap event subscription closed")
				return
			}
			if err := sendEvent(w, rc, string(event.Type), event); err != nil {
				log.Debug("Client disconnected during send")
				return
			}
		case t := <-heartbeat.C:
			if err := sendEvent(w, rc, "heartbeat", map[string]string{"at": t.UTC().Format(time.RFC3339)}); err != nil {
				log.Debug("Client disconnected during heartbeat")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	return rc.Flush()
}
