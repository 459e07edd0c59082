package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matheuszbb/emprestimos/internal/middleware"
	"github.com/matheuszbb/emprestimos/internal/models"
	"github.com/matheuszbb/emprestimos/internal/repository"
)

// CreateLoan creates a loan and its installment schedule in one write
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserID(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	var loan models.Loan
	if err := json.NewDecoder(r.Body).Decode(&loan); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	loan.ResponsibleID = userID

	if err := h.svc.CreateLoan(&loan); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, loan)
}

// GetLoan returns one loan
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	loan, err := h.svc.GetLoan(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loan)
}

// ListLoans returns loans filtered by the enumerated query parameters
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserID(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	filters := repository.LoanFilters{ResponsibleID: userID}
	q := r.URL.Query()
	switch q.Get("paid") {
	case "true":
		paid := true
		filters.Paid = &paid
	case "false":
		paid := false
		filters.Paid = &paid
	}
	if q.Get("overdue") == "true" {
		filters.OverdueOnly = true
	}
	if raw := q.Get("client_id"); raw != "" {
		clientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid client_id"})
			return
		}
		filters.ClientID = clientID
	}

	loans, err := h.svc.ListLoans(filters)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loans)
}

// UpdateLoan persists changes to a loan's mutable fields
func (h *Handler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var loan models.Loan
	if err := json.NewDecoder(r.Body).Decode(&loan); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	loan.ID = id

	if err := h.svc.UpdateLoan(&loan); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loan)
}

// DeleteLoan removes a loan; installments cascade with it
func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.DeleteLoan(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

// ListLoanInstallments returns a loan's installments ordered by number
func (h *Handler) ListLoanInstallments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	installments, err := h.svc.ListInstallmentsByLoan(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, installments)
}

// CreateLoanInstallment stores a manually added installment on a loan
func (h *Handler) CreateLoanInstallment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var installment models.Installment
	if err := json.NewDecoder(r.Body).Decode(&installment); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	installment.LoanID = loanID

	if err := h.svc.CreateInstallment(&installment); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, installment)
}

// GetInstallment returns one installment
func (h *Handler) GetInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	installment, err := h.svc.GetInstallment(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, installment)
}

// UpdateInstallment persists an installment's paid state and re-syncs the loan
func (h *Handler) UpdateInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var installment models.Installment
	if err := json.NewDecoder(r.Body).Decode(&installment); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	installment.ID = id

	if err := h.svc.UpdateInstallment(&installment); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, installment)
}

// DeleteInstallment always refuses direct deletion
func (h *Handler) DeleteInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	h.writeError(w, h.svc.DeleteInstallment(id))
}
