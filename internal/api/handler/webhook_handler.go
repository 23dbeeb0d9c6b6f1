package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apimw "github.com/wrlc/alma-item-checks/internal/api/middleware"
	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/queue"
)

// WebhookHandler receives Alma item-update webhook events. The endpoint only
// validates and enqueues; all rule evaluation happens in the check workers so
// Alma's delivery timeout is never at risk.
type WebhookHandler struct {
	secret        string
	q             *queue.ItemQueue
	logger        *zap.Logger
	countReceived func()
}

func NewWebhookHandler(secret string, q *queue.ItemQueue, logger *zap.Logger, countReceived func()) *WebhookHandler {
	if countReceived == nil {
		countReceived = func() {}
	}
	return &WebhookHandler{secret: secret, q: q, logger: logger, countReceived: countReceived}
}

// Challenge handles GET /webhooks/alma
//
// Alma verifies a webhook subscription by sending a challenge parameter and
// expecting it echoed back.
func (h *WebhookHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	if challenge := r.URL.Query().Get("challenge"); challenge != "" {
		respondJSON(w, http.StatusOK, map[string]string{"challenge": challenge})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Receive handles POST /webhooks/alma
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if !ValidSignature(body, h.secret, r.Header.Get("X-Exl-Signature")) {
		h.logger.Warn("webhook signature rejected",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("remote_addr", r.RemoteAddr))
		respondError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var event domain.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := event.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := queue.ItemTask{EventID: uuid.New().String(), Item: event.Item}
	if err := h.q.Enqueue(task); err != nil {
		h.logger.Error("item queue full, webhook event dropped",
			zap.String("barcode", event.Item.ItemData.Barcode))
		mapError(w, err)
		return
	}

	h.countReceived()
	h.logger.Info("webhook event accepted",
		zap.String("event_id", task.EventID),
		zap.String("barcode", event.Item.ItemData.Barcode))
	respondJSON(w, http.StatusAccepted, map[string]string{"event_id": task.EventID})
}
