// Package capture turns incoming mail into notes.
package capture

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/store"
	jobs "github.com/nhle/too-doo/internal/sync"
)

// fetchLimit caps the messages processed per run.
const fetchLimit = 50

// Job imports unseen messages from a mailbox as notes for one account.
type Job struct {
	mailbox   Mailbox
	notes     *notes.Service
	store     store.Store
	userEmail string
	logger    *logging.Logger
}

// NewJob creates a capture job delivering notes to the account with
// userEmail.
func NewJob(mb Mailbox, svc *notes.Service, s store.Store, userEmail string, logger *logging.Logger) *Job {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Job{
		mailbox:   mb,
		notes:     svc,
		store:     s,
		userEmail: userEmail,
		logger:    logger.Named("capture"),
	}
}

// Name implements jobs.Job.
func (j *Job) Name() string { return "mail" }

// RunOnce implements jobs.Job. Messages already imported are only
// flagged seen. A message that fails to import stays unseen and is
// retried on the next run.
func (j *Job) RunOnce(ctx context.Context) (jobs.Report, error) {
	user, err := j.store.GetUserByEmail(ctx, j.userEmail)
	if err != nil {
		return jobs.Report{}, fmt.Errorf("resolving capture account %s: %w", j.userEmail, err)
	}
	ctx = logging.WithUserID(ctx, user.ID)

	messages, err := j.mailbox.FetchUnseen(ctx, fetchLimit)
	if err != nil {
		return jobs.Report{}, fmt.Errorf("fetching mail: %w", err)
	}
	if len(messages) == 0 {
		return jobs.Report{Detail: "no new mail"}, nil
	}

	labels, err := j.notes.ListLabels(ctx, user.ID)
	if err != nil {
		return jobs.Report{}, err
	}

	var (
		seen    []uint32
		created int
		errs    []error
	)
	for _, m := range messages {
		key := m.Key()
		imported, err := j.store.IsMessageImported(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if imported {
			seen = append(seen, m.Envelope.UID)
			continue
		}

		draft := DraftFromMessage(m)
		draft.Note.LabelID = matchLabel(labels, draft.LabelName)

		note, err := j.notes.CreateNote(ctx, user.ID, draft.Note)
		if err != nil {
			j.logger.Warn(ctx, "importing message failed", zap.String("message_id", key), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if err := j.store.MarkMessageImported(ctx, key, note.ID); err != nil && !errors.Is(err, store.ErrConflict) {
			errs = append(errs, err)
		}
		seen = append(seen, m.Envelope.UID)
		created++
	}

	if err := j.mailbox.MarkSeen(ctx, seen); err != nil {
		errs = append(errs, err)
	}

	report := jobs.Report{Items: created, Detail: fmt.Sprintf("%d notes from %d messages", created, len(messages))}
	if created > 0 {
		j.logger.Info(ctx, "mail captured", zap.Int("notes", created), zap.Int("messages", len(messages)))
	}
	return report, errors.Join(errs...)
}
