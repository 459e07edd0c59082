package handler

import (
	"encoding/json"
	"net/http"

	"github.com/matheuszbb/emprestimos/internal/middleware"
	"github.com/matheuszbb/emprestimos/internal/models"
	"github.com/matheuszbb/emprestimos/internal/repository"
)

// CreateClient handles client creation for the authenticated user
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserID(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	client.ResponsibleID = userID

	if err := h.svc.CreateClient(&client); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, client)
}

// GetClient returns one client
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	client, err := h.svc.GetClient(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, client)
}

// ListClients returns clients filtered by the enumerated query parameters
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserID(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	filters := repository.ClientFilters{
		ResponsibleID: userID,
		Search:        r.URL.Query().Get("search"),
	}
	switch r.URL.Query().Get("banned") {
	case "true":
		banned := true
		filters.Banned = &banned
	case "false":
		banned := false
		filters.Banned = &banned
	}

	clients, err := h.svc.ListClients(filters)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, clients)
}

// UpdateClient persists changes to a client
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	client.ID = id

	if err := h.svc.UpdateClient(&client); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, client)
}

// DeleteClient removes a client together with its loans and installments
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.DeleteClient(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

// CreateClientContact stores a new contact for a client
func (h *Handler) CreateClientContact(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var contact models.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	contact.ClientID = clientID

	if err := h.svc.CreateContact(&contact); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, contact)
}

// ListClientContacts returns a client's contacts
func (h *Handler) ListClientContacts(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	contacts, err := h.svc.ListContacts(clientID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, contacts)
}

// DeleteContact removes a contact
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.DeleteContact(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
