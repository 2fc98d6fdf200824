package migration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/rwa-intake/config"
	"github.com/yourusername/rwa-intake/models"
	"github.com/yourusername/rwa-intake/users"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))
	return db
}

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func seedSubmission(t *testing.T, db *gorm.DB, n int, email string, mutate func(*models.Submission)) *models.Submission {
	t.Helper()
	s := &models.Submission{
		Email:         email,
		FullName:      fmt.Sprintf("Investor %d", n),
		Country:       "France",
		RegisteringAs: "individual",
		CreatedAt:     base.Add(time.Duration(n) * time.Minute),
	}
	if mutate != nil {
		mutate(s)
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func sequentialCodes() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("REF%04d", n), nil
	}
}

func newBackfill(db *gorm.DB) (*Backfill, *users.Service) {
	svc := users.NewService(db, "testnet", zap.NewNop())
	svc.NewCode = sequentialCodes()
	return NewBackfill(db, svc, zap.NewNop()), svc
}

func linkedUser(t *testing.T, db *gorm.DB, submissionID string) *models.User {
	t.Helper()
	var sub models.Submission
	require.NoError(t, db.First(&sub, "id = ?", submissionID).Error)
	require.NotNil(t, sub.UserID, "submission %s not linked", submissionID)
	var u models.User
	require.NoError(t, db.Preload("Wallet").First(&u, "id = ?", *sub.UserID).Error)
	return &u
}

func TestBackfillRun(t *testing.T) {
	db := setupTestDB(t)
	pro := seedSubmission(t, db, 1, "pro@example.com", func(s *models.Submission) {
		s.InvestorStatus = "professional_eu"
		s.Tags = models.StringSet{"PROFESSIONAL", "APPROVED"}
		s.IsPep = func() *bool { b := false; return &b }()
	})
	unknown := seedSubmission(t, db, 2, "unknown@example.com", nil)
	existing := seedSubmission(t, db, 3, "existing@example.com", nil)

	backfill, svc := newBackfill(db)
	preexisting := &models.User{Email: "existing@example.com"}
	_, err := svc.Provision(db, preexisting, "")
	require.NoError(t, err)

	report, err := backfill.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 2, Skipped: 1, Errored: 0}, report)

	u := linkedUser(t, db, pro.ID)
	assert.Equal(t, "pro@example.com", u.Email)
	assert.Equal(t, "Investor", u.FirstName)
	assert.Equal(t, "1", u.LastName)
	assert.Equal(t, models.InvestorProfessional, u.InvestorType)
	assert.Equal(t, models.ComplianceApproved, u.ComplianceStatus)
	assert.Nil(t, u.ExternalID)
	require.NotNil(t, u.IsPep)
	assert.False(t, *u.IsPep)
	require.NotNil(t, u.Wallet)
	assert.True(t, u.Wallet.Balance.IsZero())

	u = linkedUser(t, db, unknown.ID)
	assert.Equal(t, models.InvestorRetail, u.InvestorType)
	assert.Equal(t, models.CompliancePendingReview, u.ComplianceStatus)
	assert.Nil(t, u.IsPep, "unknown PEP status must stay unknown")
	assert.Nil(t, u.IsSanctioned)

	assert.Equal(t, preexisting.ID, linkedUser(t, db, existing.ID).ID)

	t.Run("Second run is a no-op", func(t *testing.T) {
		report, err := backfill.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Report{}, report)

		var n int64
		db.Model(&models.User{}).Count(&n)
		assert.Equal(t, int64(3), n)
	})
}

func TestBackfillReferralCollisions(t *testing.T) {
	t.Run("Fifth code is free", func(t *testing.T) {
		db := setupTestDB(t)
		for i := 1; i <= 4; i++ {
			require.NoError(t, db.Create(&models.User{
				Email:        fmt.Sprintf("seed%d@example.com", i),
				ReferralCode: fmt.Sprintf("REF%04d", i),
			}).Error)
		}
		sub := seedSubmission(t, db, 1, "jane@example.com", nil)
		backfill, _ := newBackfill(db)

		report, err := backfill.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Report{Created: 1}, report)
		assert.Equal(t, "REF0005", linkedUser(t, db, sub.ID).ReferralCode)
	})

	t.Run("Exhausted record is counted and the run continues", func(t *testing.T) {
		db := setupTestDB(t)
		for i := 1; i <= 5; i++ {
			require.NoError(t, db.Create(&models.User{
				Email:        fmt.Sprintf("seed%d@example.com", i),
				ReferralCode: fmt.Sprintf("REF%04d", i),
			}).Error)
		}
		failed := seedSubmission(t, db, 1, "first@example.com", nil)
		next := seedSubmission(t, db, 2, "second@example.com", nil)
		backfill, _ := newBackfill(db)

		report, err := backfill.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Report{Created: 1, Errored: 1}, report)

		var stored models.Submission
		require.NoError(t, db.First(&stored, "id = ?", failed.ID).Error)
		assert.Nil(t, stored.UserID)

		assert.Equal(t, "REF0006", linkedUser(t, db, next.ID).ReferralCode)
	})
}

func TestBackfillRollsBackPartialRecord(t *testing.T) {
	db := setupTestDB(t)
	sub := seedSubmission(t, db, 1, "jane@example.com", nil)

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_wallet", func(tx *gorm.DB) {
		if tx.Statement.Table == "wallets" {
			tx.AddError(errors.New("wallet insert failed"))
		}
	})
	require.NoError(t, err)

	backfill, _ := newBackfill(db)
	report, err := backfill.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Errored: 1}, report)

	var n int64
	db.Model(&models.User{}).Count(&n)
	assert.Zero(t, n, "user must not survive without its wallet")

	var stored models.Submission
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	assert.Nil(t, stored.UserID)
}

func TestBackfillSoftDeletedUserHoldsEmail(t *testing.T) {
	db := setupTestDB(t)
	b, svc := newBackfill(db)
	ctx := context.Background()

	deleted, err := svc.EnsureUser(ctx, users.Identity{ExternalID: "user_1", Email: "gone@example.com"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, "user_1"))
	sub := seedSubmission(t, db, 1, "gone@example.com", nil)

	report, err := b.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 1}, report)

	var stored models.Submission
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, deleted.ID, *stored.UserID)

	report, err = b.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
}

func TestBackfillDepositAddress(t *testing.T) {
	db := setupTestDB(t)
	b, svc := newBackfill(db)
	treasury := keypair.MustRandom().Address()
	svc.Treasury = treasury
	sub := seedSubmission(t, db, 1, "jane@example.com", nil)

	report, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	u := linkedUser(t, db, sub.ID)
	require.NotNil(t, u.Wallet)
	m, err := strkey.DecodeMuxedAccount(u.Wallet.DepositAddress)
	require.NoError(t, err)
	acct, err := m.AccountID()
	require.NoError(t, err)
	assert.Equal(t, treasury, acct)
}

func TestBackfillCancelled(t *testing.T) {
	db := setupTestDB(t)
	seedSubmission(t, db, 1, "jane@example.com", nil)
	backfill, _ := newBackfill(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backfill.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
