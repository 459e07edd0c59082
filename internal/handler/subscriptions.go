package handler

import (
	"encoding/json"
	"net/http"

	"github.com/matheuszbb/emprestimos/internal/middleware"
	"github.com/matheuszbb/emprestimos/internal/models"
)

// CreateBotToken registers a chat-bot credential owned by the caller
func (h *Handler) CreateBotToken(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserID(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var token models.BotToken
	if err := json.NewDecoder(r.Body).Decode(&token); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	token.OwnerID = ownerID
	if err := h.svc.CreateBotToken(&token); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, token)
}

// CreateChat registers a destination chat owned by the caller
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserID(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var chat models.Chat
	if err := json.NewDecoder(r.Body).Decode(&chat); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	chat.OwnerID = ownerID
	if err := h.svc.CreateChat(&chat); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, chat)
}

// CreateSubscription binds one of the caller's bot tokens to one of their chats
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserID(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var sub models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sub.OwnerID = ownerID
	if err := h.svc.CreateSubscription(&sub); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sub)
}

// ListSubscriptions lists the caller's notification subscriptions
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserID(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	subs, err := h.svc.ListSubscriptions(ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, subs)
}

// DeleteSubscription removes a subscription
func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.DeleteSubscription(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
