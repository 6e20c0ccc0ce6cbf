package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/luyao-shop/storefront/internal/approvals"
	"github.com/luyao-shop/storefront/internal/domain"
)

type ApprovalHandler struct {
	approvals *approvals.Manager
	logger    *slog.Logger
}

func NewApprovalHandler(approvals *approvals.Manager, logger *slog.Logger) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals, logger: logger}
}

type submitApplicationRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

func (h *ApprovalHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.approvals.Submit(r.Context(), approvals.SubmitInput{
		UserID: req.UserID,
		Reason: req.Reason,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("admin application submitted", "application_id", app.ID, "user_id", app.UserID)
	writeJSON(w, h.logger, http.StatusCreated, app)
}

func (h *ApprovalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var list []domain.AdminApplication
	if userID := r.URL.Query().Get("userId"); userID != "" {
		list = h.approvals.ByUser(userID)
	} else {
		list = h.approvals.All()
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

func (h *ApprovalHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	app, err := h.approvals.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, app)
}

type reviewRequest struct {
	Approve    bool   `json:"approve"`
	ReviewedBy string `json:"reviewedBy"`
	Feedback   string `json:"feedback"`
}

func (h *ApprovalHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.approvals.Review(r.Context(), r.PathValue("id"), req.Approve, req.ReviewedBy, req.Feedback)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("admin application reviewed",
		"application_id", app.ID, "status", app.Status, "reviewed_by", app.ReviewedBy)
	writeJSON(w, h.logger, http.StatusOK, app)
}
