package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/rwa-intake/models"
	"github.com/yourusername/rwa-intake/users"
	"go.uber.org/zap"
)

// WebhookVerifier checks a signed webhook delivery. *svix.Webhook satisfies it.
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

type UserDirectory interface {
	EnsureUser(ctx context.Context, id users.Identity) (*models.User, error)
	DeleteUser(ctx context.Context, externalID string) error
}

type ClerkWebhookHandler struct {
	verifier WebhookVerifier
	users    UserDirectory
	log      *zap.Logger
}

func NewClerkWebhookHandler(verifier WebhookVerifier, dir UserDirectory, log *zap.Logger) *ClerkWebhookHandler {
	return &ClerkWebhookHandler{verifier: verifier, users: dir, log: log}
}

type clerkEvent struct {
	Type string    `json:"type"`
	Data clerkUser `json:"data"`
}

type clerkEmail struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type clerkUser struct {
	ID                    string       `json:"id"`
	FirstName             string       `json:"first_name"`
	LastName              string       `json:"last_name"`
	ImageURL              string       `json:"image_url"`
	PrimaryEmailAddressID string       `json:"primary_email_address_id"`
	EmailAddresses        []clerkEmail `json:"email_addresses"`
	PublicMetadata        struct {
		StellarAddress string `json:"stellar_address"`
	} `json:"public_metadata"`
}

func (u clerkUser) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Clerk handles POST /api/webhooks/clerk.
func (h *ClerkWebhookHandler) Clerk(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read request body")
		return
	}

	if err := h.verifier.Verify(payload, c.Request.Header); err != nil {
		h.log.Warn("clerk webhook rejected", zap.Error(err))
		fail(c, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	var evt clerkEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		fail(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	ctx := c.Request.Context()
	switch evt.Type {
	case "user.created", "user.updated":
		_, err = h.users.EnsureUser(ctx, users.Identity{
			ExternalID:    evt.Data.ID,
			Email:         evt.Data.primaryEmail(),
			FirstName:     evt.Data.FirstName,
			LastName:      evt.Data.LastName,
			ImageURL:      evt.Data.ImageURL,
			WalletAddress: evt.Data.PublicMetadata.StellarAddress,
		})
	case "user.deleted":
		err = h.users.DeleteUser(ctx, evt.Data.ID)
	default:
		h.log.Debug("clerk webhook ignored", zap.String("type", evt.Type))
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, users.ErrInvalidIdentity):
		fail(c, http.StatusBadRequest, "Event is missing the user id or email")
	case errors.Is(err, users.ErrEmailClaimed):
		h.log.Warn("clerk webhook email conflict", zap.String("external_id", evt.Data.ID))
		fail(c, http.StatusConflict, "Email already belongs to another account")
	case errors.Is(err, users.ErrIdentityConflict):
		h.log.Warn("clerk webhook identity conflict", zap.String("external_id", evt.Data.ID), zap.Error(err))
		fail(c, http.StatusConflict, "User conflicts with an existing account")
	default:
		h.log.Error("clerk webhook failed", zap.String("type", evt.Type), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to process webhook")
	}
}
