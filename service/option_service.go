package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"loan-workout/domain"
	"loan-workout/repository"
)

// OptionService runs the option lifecycle of a session: create, save,
// select and remove, keeping at most maxOptions saved options.
type OptionService struct {
	sessions   *SessionStore
	repo       repository.OptionRepository
	log        *logrus.Logger
	maxOptions int
}

func NewOptionService(sessions *SessionStore, repo repository.OptionRepository, log *logrus.Logger, maxOptions int) *OptionService {
	if maxOptions <= 0 {
		maxOptions = DefaultMaxOptions
	}
	return &OptionService{sessions: sessions, repo: repo, log: log, maxOptions: maxOptions}
}

// Create starts a fresh zeroed option whose id is the current option count.
// The draft lives only in the session until saved.
func (s *OptionService) Create(id string) (SessionView, error) {
	var v SessionView
	err := s.sessions.with(id, func(sess *Session) error {
		if len(sess.options) >= s.maxOptions {
			return fmt.Errorf("%d options saved: %w", len(sess.options), ErrOptionLimit)
		}
		sess.current = len(sess.options)
		sess.engine.Edit(func(in *domain.EditableInputs) { in.Option = domain.OptionInputs{} })
		sess.saveRequired = true
		v = sess.view()
		return nil
	})
	return v, err
}

// Save stores the current option, replacing any saved option with the same
// id, together with the loan-level figures.
func (s *OptionService) Save(ctx context.Context, id string) (SessionView, error) {
	var v SessionView
	err := s.sessions.with(id, func(sess *Session) error {
		option := currentOption(sess)
		idx := indexOf(sess.options, option.ID)
		if idx < 0 && len(sess.options) >= s.maxOptions {
			return fmt.Errorf("%d options saved: %w", len(sess.options), ErrOptionLimit)
		}
		if err := s.repo.Save(ctx, sess.ResolutionID, option); err != nil {
			return err
		}
		if idx >= 0 {
			sess.options[idx] = option
		} else {
			sess.options = append(sess.options, option)
		}
		sess.saveRequired = false

		loan, _ := sess.engine.Snapshot()
		persisted := persistingData(loan, sess.engine.Inputs(), sess.engine.Metrics())
		if err := s.repo.SavePersistingData(ctx, sess.ResolutionID, persisted); err != nil {
			// Options are already stored; the figures are recomputed on reopen.
			s.log.WithError(err).WithField("session", sess.ID).Warn("failed to save persisting data")
		}

		s.log.WithFields(logrus.Fields{
			"session": sess.ID,
			"option":  option.ID,
			"payment": option.MonthlyPayment,
		}).Info("option saved")
		v = sess.view()
		return nil
	})
	return v, err
}

// Select makes a saved option current, discarding any unsaved draft.
func (s *OptionService) Select(id string, optionID int) (SessionView, error) {
	var v SessionView
	err := s.sessions.with(id, func(sess *Session) error {
		idx := indexOf(sess.options, optionID)
		if idx < 0 {
			return fmt.Errorf("option %d: %w", optionID, ErrOptionNotFound)
		}
		hydrate(sess, sess.options[idx].Inputs)
		sess.current = optionID
		sess.saveRequired = false
		v = sess.view()
		return nil
	})
	return v, err
}

// Remove deletes a saved option and renumbers the rest by position. The
// option before it becomes current; removing the sole option leaves its
// inputs in place as an unsaved option 0.
func (s *OptionService) Remove(ctx context.Context, id string, optionID int) (SessionView, error) {
	var v SessionView
	err := s.sessions.with(id, func(sess *Session) error {
		idx := indexOf(sess.options, optionID)
		if idx < 0 {
			return fmt.Errorf("option %d: %w", optionID, ErrOptionNotFound)
		}
		sole := len(sess.options) == 1

		remaining := make([]domain.Option, 0, len(sess.options)-1)
		remaining = append(remaining, sess.options[:idx]...)
		remaining = append(remaining, sess.options[idx+1:]...)
		for i := range remaining {
			remaining[i].ID = i
		}
		if err := s.repo.Replace(ctx, sess.ResolutionID, remaining); err != nil {
			return err
		}
		sess.options = remaining

		if sole {
			sess.current = 0
			sess.saveRequired = true
		} else {
			sess.current = max(optionID-1, 0)
			hydrate(sess, sess.options[sess.current].Inputs)
		}

		s.log.WithFields(logrus.Fields{
			"session": sess.ID,
			"removed": optionID,
			"current": sess.current,
		}).Info("option removed")
		v = sess.view()
		return nil
	})
	return v, err
}

func currentOption(sess *Session) domain.Option {
	in := sess.engine.Inputs()
	m := sess.engine.Metrics()
	return domain.Option{
		ID:              sess.current,
		Inputs:          in.Option,
		MonthlyPayment:  finite(m.MonthlyPayment),
		NewUPB:          finite(m.NewUPB),
		FirstPaymentDue: m.FirstPaymentDue,
	}
}

// hydrate swaps in an option's inputs while keeping the loan-level overrides.
func hydrate(sess *Session, option domain.OptionInputs) {
	in := sess.engine.Inputs()
	in.Option = option
	sess.engine.HydrateOption(in)
}

func indexOf(options []domain.Option, id int) int {
	for i, o := range options {
		if o.ID == id {
			return i
		}
	}
	return -1
}
