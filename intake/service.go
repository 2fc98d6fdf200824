package intake

import (
	"context"
	"errors"

	"github.com/yourusername/rwa-intake/classify"
	"github.com/yourusername/rwa-intake/models"
	"go.uber.org/zap"
)

// CRM receives the flattened submission record.
type CRM interface {
	Sync(ctx context.Context, record map[string]any) error
}

// Mailer sends the early-access confirmation and returns the provider's
// message id.
type Mailer interface {
	SendConfirmation(ctx context.Context, fullName, email string) (string, error)
}

// Dispatcher runs best-effort tasks outside the request. Go never reports
// the task's outcome to the caller.
type Dispatcher interface {
	Go(name string, task func(ctx context.Context) error)
}

type Service struct {
	store    Store
	crm      CRM
	mailer   Mailer
	dispatch Dispatcher
	log      *zap.Logger
}

// NewService wires the pipeline. crm and mailer may be nil when the
// corresponding integration is not configured.
func NewService(store Store, crm CRM, mailer Mailer, dispatch Dispatcher, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		crm:      crm,
		mailer:   mailer,
		dispatch: dispatch,
		log:      log,
	}
}

// Submit validates, deduplicates, classifies and stores one submission, then
// schedules the CRM sync. Only a failed store call fails the submission.
func (s *Service) Submit(ctx context.Context, raw RawSubmission) (*models.Submission, error) {
	sub, err := Validate(raw)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsByEmail(ctx, sub.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	sub.Tags = classify.TagStrings(classify.Classify(sub))

	if err := s.store.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("early access submission stored",
		zap.String("submission_id", sub.ID),
		zap.Strings("tags", sub.Tags),
	)

	if s.crm == nil {
		s.log.Debug("crm sync disabled", zap.String("submission_id", sub.ID))
		return sub, nil
	}
	record := CRMRecord(sub)
	s.dispatch.Go("crm sync", func(ctx context.Context) error {
		return s.crm.Sync(ctx, record)
	})

	return sub, nil
}

// ErrMailerDisabled is returned by SendConfirmation when no mailer is
// configured.
var ErrMailerDisabled = errors.New("email delivery is not configured")

// SendConfirmation sends the confirmation email. It is requested explicitly
// by the client; a failure leaves the stored submission untouched.
func (s *Service) SendConfirmation(ctx context.Context, fullName, email string) error {
	if s.mailer == nil {
		return ErrMailerDisabled
	}
	id, err := s.mailer.SendConfirmation(ctx, fullName, NormalizeEmail(email))
	if err != nil {
		s.log.Warn("confirmation email failed", zap.Error(err))
		return err
	}
	s.log.Info("confirmation email sent", zap.String("message_id", id))
	return nil
}
