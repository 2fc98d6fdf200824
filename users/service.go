package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/rwa-intake/classify"
	"github.com/yourusername/rwa-intake/models"
	"github.com/yourusername/rwa-intake/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxReferralAttempts bounds how many generated codes are tried before
// provisioning gives up.
const MaxReferralAttempts = 5

const defaultCurrency = "USDC"

var (
	ErrReferralCodeExhausted = errors.New("no free referral code after retries")
	ErrInvalidIdentity       = errors.New("invalid identity")
	ErrEmailClaimed          = errors.New("email already belongs to another account")
	ErrIdentityConflict      = errors.New("identity conflicts with an existing account")
)

// Identity is what the auth provider knows about a signed-in user.
type Identity struct {
	ExternalID    string
	Email         string
	FirstName     string
	LastName      string
	ImageURL      string
	WalletAddress string
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	network string
	// Treasury is the platform account deposit addresses are muxed over.
	// Empty leaves wallets without one unless the investor supplies it.
	Treasury string
	// NewCode generates referral code candidates.
	NewCode func() (string, error)
}

func NewService(db *gorm.DB, network string, log *zap.Logger) *Service {
	return &Service{db: db, log: log, network: network, NewCode: utils.NewReferralCode}
}

// Provision creates u with a unique referral code and its zero-balance wallet
// inside tx. The caller owns the transaction.
func (s *Service) Provision(tx *gorm.DB, u *models.User, walletAddress string) (*models.Wallet, error) {
	code, err := s.referralCode(tx)
	if err != nil {
		return nil, err
	}
	u.ReferralCode = code

	if walletAddress == "" && s.Treasury != "" {
		walletAddress, err = utils.NewDepositAddress(s.Treasury)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	wallet := &models.Wallet{
		UserID:         u.ID,
		Balance:        decimal.Zero,
		Currency:       defaultCurrency,
		Network:        s.network,
		DepositAddress: walletAddress,
	}
	if err := tx.Create(wallet).Error; err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	u.Wallet = wallet
	return wallet, nil
}

func (s *Service) referralCode(tx *gorm.DB) (string, error) {
	for attempt := 1; attempt <= MaxReferralAttempts; attempt++ {
		code, err := s.NewCode()
		if err != nil {
			return "", err
		}
		var n int64
		err = tx.Unscoped().Model(&models.User{}).Where("referral_code = ?", code).Count(&n).Error
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
		if n == 0 {
			return code, nil
		}
		s.log.Debug("referral code collision", zap.Int("attempt", attempt))
	}
	return "", ErrReferralCodeExhausted
}

// EnsureUser returns the user for id, creating it on first sight. Repeated
// calls with the same external id return the same user. A user backfilled
// from a submission is claimed by matching email, and a soft-deleted user
// with the same email is restored under the new identity.
func (s *Service) EnsureUser(ctx context.Context, id Identity) (*models.User, error) {
	id.ExternalID = strings.TrimSpace(id.ExternalID)
	id.Email = strings.ToLower(strings.TrimSpace(id.Email))
	if id.ExternalID == "" || id.Email == "" {
		return nil, ErrInvalidIdentity
	}
	address, err := utils.NormalizeAddress(id.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	id.WalletAddress = address

	if u, err := s.byExternalID(ctx, id.ExternalID); err == nil {
		return u, s.refreshProfile(ctx, u, id)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Unscoped().Where("email = ?", id.Email).First(&existing).Error
		switch {
		case err == nil:
			restored := existing.DeletedAt.Valid
			if !restored && existing.ExternalID != nil && *existing.ExternalID != id.ExternalID {
				return ErrEmailClaimed
			}
			existing.ExternalID = &id.ExternalID
			existing.DeletedAt = gorm.DeletedAt{}
			applyProfile(&existing, id)
			if err := tx.Unscoped().Save(&existing).Error; err != nil {
				return fmt.Errorf("claim user: %w", err)
			}
			if err := setDepositAddress(tx, existing.ID, id.WalletAddress); err != nil {
				return err
			}
			if restored {
				s.log.Info("deleted user restored", zap.String("user_id", existing.ID))
			}
			user = &existing
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("lookup user by email: %w", err)
		}

		u := &models.User{
			ExternalID: &id.ExternalID,
			Email:      id.Email,
		}
		applyProfile(u, id)

		origin, err := unlinkedSubmission(tx, id.Email)
		if err != nil {
			return err
		}
		if origin != nil {
			FromSubmission(u, origin)
		}

		if _, err := s.Provision(tx, u, id.WalletAddress); err != nil {
			return err
		}
		if origin != nil {
			if err := LinkSubmission(tx, origin.ID, u.ID); err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Either a concurrent delivery of the same event won, or the external
		// id belongs to a deleted user with another email.
		u, lookupErr := s.byExternalID(ctx, id.ExternalID)
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrIdentityConflict, err)
		}
		return u, lookupErr
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("user ensured", zap.String("user_id", user.ID))
	return user, nil
}

// DeleteUser soft-deletes the user. Its origin submission is left untouched.
func (s *Service) DeleteUser(ctx context.Context, externalID string) error {
	res := s.db.WithContext(ctx).Where("external_id = ?", externalID).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.log.Debug("delete for unknown user", zap.String("external_id", externalID))
	}
	return nil
}

func (s *Service) byExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) refreshProfile(ctx context.Context, u *models.User, id Identity) error {
	before := *u
	applyProfile(u, id)
	if before.FirstName == u.FirstName && before.LastName == u.LastName && before.ImageURL == u.ImageURL {
		return nil
	}
	err := s.db.WithContext(ctx).Model(u).Updates(map[string]any{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"image_url":  u.ImageURL,
	}).Error
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

func setDepositAddress(tx *gorm.DB, userID, address string) error {
	if address == "" {
		return nil
	}
	err := tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("deposit_address", address).Error
	if err != nil {
		return fmt.Errorf("update deposit address: %w", err)
	}
	return nil
}

func applyProfile(u *models.User, id Identity) {
	if v := strings.TrimSpace(id.FirstName); v != "" {
		u.FirstName = v
	}
	if v := strings.TrimSpace(id.LastName); v != "" {
		u.LastName = v
	}
	if v := strings.TrimSpace(id.ImageURL); v != "" {
		u.ImageURL = v
	}
}

// FromSubmission copies profile and compliance data from an intake
// submission onto u. Unknown PEP and sanctions answers stay unknown.
func FromSubmission(u *models.User, sub *models.Submission) {
	if u.Email == "" {
		u.Email = sub.Email
	}
	if u.FirstName == "" && u.LastName == "" {
		u.FirstName, u.LastName = SplitName(sub.FullName)
	}
	u.Country = sub.Country
	u.IsUsPerson = sub.IsUsPerson
	u.IsPep = sub.IsPep
	u.IsSanctioned = sub.IsSanctioned
	u.InvestorType, u.ComplianceStatus = classify.ClassifyLegacy(sub)
}

// SplitName splits a full name on the first run of whitespace.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// LinkSubmission sets the submission's back-reference to userID.
func LinkSubmission(tx *gorm.DB, submissionID, userID string) error {
	err := tx.Model(&models.Submission{}).
		Where("id = ?", submissionID).
		Update("user_id", userID).Error
	if err != nil {
		return fmt.Errorf("link submission: %w", err)
	}
	return nil
}

func unlinkedSubmission(tx *gorm.DB, email string) (*models.Submission, error) {
	var sub models.Submission
	err := tx.Where("email = ? AND user_id IS NULL", email).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup origin submission: %w", err)
	}
	return &sub, nil
}
