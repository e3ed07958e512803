package service

import (
	"sync"

	"github.com/google/uuid"

	"loan-workout/domain"
)

// Session is one operator's editing session over a resolution: the engine
// plus the option list and the current selection.
type Session struct {
	ID           string
	ResolutionID string

	mu           sync.Mutex
	engine       *Engine
	options      []domain.Option
	current      int
	saveRequired bool
}

// SessionView is a consistent copy of a session's state.
type SessionView struct {
	ID            string                   `json:"id"`
	ResolutionID  string                   `json:"resolution_id"`
	Loan          domain.LoanSnapshot      `json:"loan"`
	Request       domain.ResolutionRequest `json:"request"`
	Inputs        domain.EditableInputs    `json:"inputs"`
	Metrics       domain.DerivedMetrics    `json:"metrics"`
	Options       []domain.Option          `json:"options"`
	CurrentOption int                      `json:"current_option"`
	SaveRequired  bool                     `json:"save_required"`
	Persisting    domain.PersistingData    `json:"persisting"`
}

func (s *Session) view() SessionView {
	loan, req := s.engine.Snapshot()
	options := make([]domain.Option, len(s.options))
	copy(options, s.options)
	return SessionView{
		ID:            s.ID,
		ResolutionID:  s.ResolutionID,
		Loan:          loan,
		Request:       req,
		Inputs:        s.engine.Inputs(),
		Metrics:       s.engine.Metrics(),
		Options:       options,
		CurrentOption: s.current,
		SaveRequired:  s.saveRequired,
		Persisting:    persistingData(loan, s.engine.Inputs(), s.engine.Metrics()),
	}
}

// persistingData is the loan-level state stored next to the options.
func persistingData(loan domain.LoanSnapshot, in domain.EditableInputs, m domain.DerivedMetrics) domain.PersistingData {
	purchasePrice := in.PurchasePrice
	if purchasePrice == 0 {
		purchasePrice = loan.PurchasePrice
	}
	currentUPB := in.CurrentUPB
	if currentUPB == 0 {
		currentUPB = loan.UnpaidPrincipal
	}
	return domain.PersistingData{
		PerDiem:              finite(m.PerDiem),
		PerDiemRate:          finite(in.PerDiemRate),
		UseRequestedSenior:   in.UseRequestedSeniorUPB,
		LegalFees:            finite(in.LegalFees),
		LateFees:             finite(in.LateFees),
		AccruedInterest:      finite(m.AccruedInterest),
		PastWorkout:          finite(in.PastWorkout),
		PurchasePrice:        finite(purchasePrice),
		PurchaseDate:         loan.PurchaseDate,
		CurrentUPB:           finite(currentUPB),
		PurchaseToResolution: finite(m.PurchaseToResolution),
		LastPaidToResolution: finite(m.LastPaidToResolution),
		MonthsDelinquent:     finite(m.MonthsDelinquent),
		UPBPurchaseRatio:     finite(m.UPBPurchaseRatio),
	}
}

// SessionStore keeps open sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (st *SessionStore) add(resolutionID string, engine *Engine) *Session {
	s := &Session{ID: uuid.NewString(), ResolutionID: resolutionID, engine: engine}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *SessionStore) Close(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// with runs fn holding the session lock.
func (st *SessionStore) with(id string, fn func(s *Session) error) error {
	s, err := st.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}
