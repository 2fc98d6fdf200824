// Package migration backfills user and wallet records for early-access
// submissions collected before sign-up existed.
package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/rwa-intake/models"
	"github.com/yourusername/rwa-intake/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Report counts the outcome of one run.
type Report struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Errored int `json:"errored"`
}

type outcome int

const (
	created outcome = iota
	skipped
)

type Backfill struct {
	db    *gorm.DB
	users *users.Service
	log   *zap.Logger
}

func NewBackfill(db *gorm.DB, u *users.Service, log *zap.Logger) *Backfill {
	return &Backfill{db: db, users: u, log: log}
}

// Run migrates every submission that has no linked user. Each submission is
// handled in its own transaction; a failed record is counted and the run
// moves on. The returned error is non-nil only when the run itself could not
// proceed.
func (b *Backfill) Run(ctx context.Context) (Report, error) {
	var report Report

	var pending []models.Submission
	err := b.db.WithContext(ctx).
		Where("user_id IS NULL").
		Order("created_at, id").
		Find(&pending).Error
	if err != nil {
		return report, fmt.Errorf("list pending submissions: %w", err)
	}

	b.log.Info("backfill started", zap.Int("pending", len(pending)))

	for i := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		sub := &pending[i]
		res, err := b.migrate(ctx, sub)
		if err != nil {
			report.Errored++
			b.log.Error("backfill record failed",
				zap.String("submission_id", sub.ID),
				zap.Error(err),
			)
			continue
		}
		switch res {
		case created:
			report.Created++
		case skipped:
			report.Skipped++
		}
	}

	b.log.Info("backfill finished",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("errored", report.Errored),
	)
	return report, nil
}

// migrate creates the user, its wallet and the submission link as one unit.
func (b *Backfill) migrate(ctx context.Context, sub *models.Submission) (outcome, error) {
	var res outcome
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Soft-deleted users still hold their email.
		var existing models.User
		err := tx.Unscoped().Where("email = ?", sub.Email).First(&existing).Error
		if err == nil {
			res = skipped
			return users.LinkSubmission(tx, sub.ID, existing.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup user by email: %w", err)
		}

		u := &models.User{}
		users.FromSubmission(u, sub)
		if _, err := b.users.Provision(tx, u, ""); err != nil {
			return err
		}
		res = created
		return users.LinkSubmission(tx, sub.ID, u.ID)
	})
	return res, err
}
