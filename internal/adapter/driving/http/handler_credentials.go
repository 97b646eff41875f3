package httphandler

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/studydigest/internal/application"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// ListCredentials returns every stored credential with its secret masked.
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	views, err := h.keys.ListCredentials(r.Context())
	if err != nil {
		h.writeCredentialError(w, "list", "", err)
		return
	}

	resp := make([]CredentialResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toCredentialResponse(v))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddCredential stores a new provider API key.
func (h *Handler) AddCredential(w http.ResponseWriter, r *http.Request) {
	var req AddCredentialRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id, err := h.keys.AddCredential(r.Context(), req.Key, req.Provider)
	if err != nil {
		if errors.Is(err, application.ErrEmptyCredential) {
			writeError(w, http.StatusBadRequest, "key is required")
			return
		}
		h.writeCredentialError(w, "add", "", err)
		return
	}

	writeJSON(w, http.StatusCreated, AddCredentialResponse{ID: id})
}

// DeactivateCredential takes a credential out of rotation.
func (h *Handler) DeactivateCredential(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.keys.Deactivate(r.Context(), id); err != nil {
		h.writeCredentialError(w, "deactivate", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReactivateCredential returns a credential to rotation with a clean record.
func (h *Handler) ReactivateCredential(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.keys.Reactivate(r.Context(), id); err != nil {
		h.writeCredentialError(w, "reactivate", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCredential permanently removes a credential.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.keys.DeleteCredential(r.Context(), id); err != nil {
		h.writeCredentialError(w, "delete", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCredentialError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, driven.ErrCredentialNotFound):
		writeError(w, http.StatusNotFound, msgCredentialAbsent)
	case errors.Is(err, driven.ErrCipherNotConfigured):
		h.logger.Error("credential cipher not configured", "op", op, "error", err)
		writeError(w, http.StatusServiceUnavailable, msgNotConfigured)
	default:
		h.logger.Error("credential operation failed", "op", op, "credential_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
