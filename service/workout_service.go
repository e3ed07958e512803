package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"loan-workout/domain"
	"loan-workout/observability"
	"loan-workout/repository"
)

// WorkoutService opens editing sessions over a resolution and routes operator
// edits and discrepancy actions to the session's engine.
type WorkoutService struct {
	sessions   *SessionStore
	repo       repository.OptionRepository
	log        *logrus.Logger
	metrics    *observability.Metrics
	engineOpts []EngineOption
}

func NewWorkoutService(
	sessions *SessionStore,
	repo repository.OptionRepository,
	log *logrus.Logger,
	metrics *observability.Metrics,
	engineOpts ...EngineOption,
) *WorkoutService {
	return &WorkoutService{
		sessions:   sessions,
		repo:       repo,
		log:        log,
		metrics:    metrics,
		engineOpts: engineOpts,
	}
}

// Open starts a session. Saved options and persisted loan-level figures are
// restored; the first saved option becomes current. Without saved options
// the session starts on a blank option 0 that needs saving.
func (s *WorkoutService) Open(ctx context.Context, loan domain.LoanSnapshot, req domain.ResolutionRequest) (SessionView, error) {
	resolutionID := req.LoanNumber
	if resolutionID == "" {
		resolutionID = loan.LoanNumber
	}
	if resolutionID == "" {
		return SessionView{}, fmt.Errorf("loan number is required: %w", ErrInvalidInput)
	}

	opts := append([]EngineOption{}, s.engineOpts...)
	opts = append(opts, WithPassObserver(s.observePass))
	engine, err := NewEngine(opts...)
	if err != nil {
		return SessionView{}, err
	}

	options, err := s.repo.List(ctx, resolutionID)
	if err != nil {
		return SessionView{}, fmt.Errorf("failed to load options: %w", err)
	}
	var inputs domain.EditableInputs
	persisted, err := s.repo.PersistingData(ctx, resolutionID)
	switch {
	case err == nil:
		inputs = domain.EditableInputs{
			PurchasePrice:         persisted.PurchasePrice,
			CurrentUPB:            persisted.CurrentUPB,
			PerDiemRate:           persisted.PerDiemRate,
			UseRequestedSeniorUPB: persisted.UseRequestedSenior,
			LegalFees:             persisted.LegalFees,
			LateFees:              persisted.LateFees,
			PastWorkout:           persisted.PastWorkout,
		}
	case errors.Is(err, repository.ErrNotFound):
	default:
		return SessionView{}, fmt.Errorf("failed to load persisted data: %w", err)
	}
	if len(options) > 0 {
		inputs.Option = options[0].Inputs
	}

	engine.LoadSnapshot(loan, req)
	engine.HydrateOption(inputs)

	session := s.sessions.add(resolutionID, engine)
	session.options = options
	session.saveRequired = len(options) == 0

	s.log.WithFields(logrus.Fields{
		"session":    session.ID,
		"resolution": resolutionID,
		"options":    len(options),
	}).Info("workout session opened")
	return session.view(), nil
}

func (s *WorkoutService) Get(id string) (SessionView, error) {
	var v SessionView
	err := s.sessions.with(id, func(sess *Session) error {
		v = sess.view()
		return nil
	})
	return v, err
}

// Edit applies a partial input change as one recalculation batch.
func (s *WorkoutService) Edit(id string, patch domain.InputsPatch) (SessionView, error) {
	var v SessionView
	err := s.sessions.with(id, func(sess *Session) error {
		candidate := sess.engine.Inputs()
		patch.Apply(&candidate)
		if err := validateInputs(candidate); err != nil {
			return err
		}
		sess.engine.Edit(patch.Apply)
		v = sess.view()
		return nil
	})
	return v, err
}

func (s *WorkoutService) Resolve(id string, action domain.DiscrepancyAction) (SessionView, error) {
	var v SessionView
	err := s.sessions.with(id, func(sess *Session) error {
		amount := sess.engine.Metrics().Discrepancy
		if err := sess.engine.Resolve(action); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"session": sess.ID,
			"action":  string(action),
			"amount":  amount,
		}).Info("discrepancy resolved")
		v = sess.view()
		return nil
	})
	return v, err
}

func (s *WorkoutService) Close(id string) {
	s.sessions.Close(id)
}

func (s *WorkoutService) observePass(p Pass) {
	recomputed := make([]string, len(p.Recomputed))
	for i, k := range p.Recomputed {
		recomputed[i] = string(k)
	}
	s.metrics.ObservePass(p.Full, recomputed)
}
