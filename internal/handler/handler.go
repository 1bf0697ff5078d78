package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kost-system/access-service/internal/service"
)

// ReminderRunner triggers one payment reminder pass.
type ReminderRunner interface {
	Run(ctx context.Context, leadDays []int, dryRun bool) (*service.ReminderRunResult, error)
}

type Handler struct {
	auth      *service.AuthService
	access    *service.AccessService
	reminders ReminderRunner

	// reminderLeadDays is the configured default for reminder runs
	// that omit an explicit day list, so the API and cron paths agree.
	reminderLeadDays []int
}

func NewHandler(auth *service.AuthService, access *service.AccessService, reminders ReminderRunner, reminderLeadDays []int) *Handler {
	return &Handler{auth: auth, access: access, reminders: reminders, reminderLeadDays: reminderLeadDays}
}

// Login handles operator authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ReconcileAll runs a bulk access reconciliation sweep
func (h *Handler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	result := h.access.ReconcileAll(r.Context())
	writeJSON(w, http.StatusOK, result)
}

// ReconcileTenant reconciles access for a single tenant
func (h *Handler) ReconcileTenant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid tenant ID", http.StatusBadRequest)
		return
	}

	result := h.access.ReconcileTenant(r.Context(), id)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// IssueCard creates a new RFID card for a tenant
func (h *Handler) IssueCard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid tenant ID", http.StatusBadRequest)
		return
	}

	card, err := h.access.IssueCard(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// RunReminders triggers one payment reminder pass
func (h *Handler) RunReminders(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Days   []int `json:"days"`
		DryRun bool  `json:"dry_run"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Days) == 0 {
		req.Days = h.reminderLeadDays
	}

	result, err := h.reminders.Run(r.Context(), req.Days, req.DryRun)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
