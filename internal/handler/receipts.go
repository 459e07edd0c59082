package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// mimeExtensions maps stored receipt MIME types to download extensions.
var mimeExtensions = map[string]string{
	"application/pdf": "pdf",
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"image/svg+xml":   "svg",
	"image/gif":       "gif",
}

// maxReceiptSize bounds uploaded receipt payloads (10 MiB).
const maxReceiptSize = 10 << 20

func receiptFilename(kind string, id int64, when *time.Time, mime string) string {
	ext, ok := mimeExtensions[mime]
	if !ok {
		ext = "bin"
	}
	date := "sem-data"
	if when != nil {
		date = when.Format("2006-01-02")
	}
	name := fmt.Sprintf("comprovante_%s_%d_%s.%s", kind, id, date, ext)
	return strings.ReplaceAll(name, " ", "")
}

func (h *Handler) serveReceipt(w http.ResponseWriter, mime string, data []byte, filename string) {
	if len(data) == 0 {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "comprovante não encontrado"})
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) readReceiptBody(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	mime := r.Header.Get("Content-Type")
	if mime == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Content-Type is required"})
		return "", nil, false
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxReceiptSize))
	if err != nil || len(data) == 0 {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty or unreadable receipt body"})
		return "", nil, false
	}
	return mime, data, true
}

// DownloadLoanReceipt serves a loan's stored receipt
func (h *Handler) DownloadLoanReceipt(w http.ResponseWriter, r *http.Request) {
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
	mime, data, err := h.svc.GetLoanReceipt(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	start := loan.StartDate
	h.serveReceipt(w, mime, data, receiptFilename("emprestimo", id, &start, mime))
}

// UploadLoanReceipt stores a loan's receipt from the raw request body
func (h *Handler) UploadLoanReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	mime, data, ok := h.readReceiptBody(w, r)
	if !ok {
		return
	}
	if err := h.svc.SaveLoanReceipt(id, mime, data); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

// DownloadInstallmentReceipt serves an installment's stored receipt
func (h *Handler) DownloadInstallmentReceipt(w http.ResponseWriter, r *http.Request) {
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
	mime, data, err := h.svc.GetInstallmentReceipt(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.serveReceipt(w, mime, data, receiptFilename("parcela", id, installment.PaidAt, mime))
}

// UploadInstallmentReceipt stores an installment's receipt
func (h *Handler) UploadInstallmentReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	mime, data, ok := h.readReceiptBody(w, r)
	if !ok {
		return
	}
	if err := h.svc.SaveInstallmentReceipt(id, mime, data); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
