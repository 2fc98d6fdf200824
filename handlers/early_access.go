package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/rwa-intake/intake"
	"github.com/yourusername/rwa-intake/models"
	"go.uber.org/zap"
)

// Intake is the part of the intake service the handler depends on.
type Intake interface {
	Submit(ctx context.Context, raw intake.RawSubmission) (*models.Submission, error)
	SendConfirmation(ctx context.Context, fullName, email string) error
}

type EarlyAccessHandler struct {
	intake Intake
	log    *zap.Logger
}

func NewEarlyAccessHandler(svc Intake, log *zap.Logger) *EarlyAccessHandler {
	return &EarlyAccessHandler{intake: svc, log: log}
}

// Submit handles POST /api/early-access.
func (h *EarlyAccessHandler) Submit(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read request body")
		return
	}

	raw, err := intake.DecodeRaw(body)
	if err == nil {
		var sub *models.Submission
		sub, err = h.intake.Submit(c.Request.Context(), raw)
		if err == nil {
			c.JSON(http.StatusCreated, gin.H{"success": true, "id": sub.ID})
			return
		}
	}

	var verr *intake.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Please correct the highlighted fields",
			"details": verr.Fields,
		})
	case errors.Is(err, intake.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{
			"success":           false,
			"error":             "You're already on the early access list",
			"alreadyRegistered": true,
		})
	default:
		h.log.Error("early access submission failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Something went wrong, please try again later")
	}
}

type ConfirmationRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// SendConfirmation handles POST /api/early-access/confirmation.
func (h *EarlyAccessHandler) SendConfirmation(c *gin.Context) {
	var req ConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "fullName and a valid email are required")
		return
	}

	if err := h.intake.SendConfirmation(c.Request.Context(), req.FullName, req.Email); err != nil {
		if errors.Is(err, intake.ErrMailerDisabled) {
			h.log.Warn("confirmation requested with no mailer configured")
			fail(c, http.StatusServiceUnavailable, "Confirmation emails are temporarily unavailable")
			return
		}
		// Provider message only; internal errors never reach this path.
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
