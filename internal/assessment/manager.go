package assessment

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/ai"
	"github.com/spigell/talentsonar/internal/logger"
)

// DefaultTimeLimit is the time budget of a session.
const DefaultTimeLimit = 45 * time.Minute

// Option configures a Manager.
type Option func(*Manager)

// WithTechnicalQuestions toggles job-tailored technical questions. They are off by default.
func WithTechnicalQuestions(enabled bool) Option {
	return func(m *Manager) { m.technical = enabled }
}

// WithTimeLimit overrides DefaultTimeLimit.
func WithTimeLimit(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeLimit = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager owns assessment sessions. Each session is addressed by a unique id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	technical bool
	timeLimit time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewManager returns an empty Manager.
func NewManager(log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		sessions:  make(map[string]*Session),
		timeLimit: DefaultTimeLimit,
		now:       time.Now,
		logger:    logger.WithFields(log, zap.String("component", "assessment")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new in-progress session for the candidate.
func (m *Manager) Create(candidateID int, req ai.Requirements) (string, error) {
	if candidateID <= 0 {
		return "", fmt.Errorf("invalid candidate id %d", candidateID)
	}

	s := &Session{
		ID:                 uuid.NewString(),
		CandidateID:        candidateID,
		StartTime:          m.now(),
		TimeLimit:          m.timeLimit,
		SoftSkillQuestions: SoftSkillQuestions(),
		TechnicalQuestions: []Question{},
		Answers:            make(map[string]Answer),
		Flags:              []Flag{},
		Status:             StatusInProgress,
	}
	if m.technical {
		s.TechnicalQuestions = TechnicalQuestions(req.Technical)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("created assessment session",
		zap.String("session_id", s.ID),
		zap.Int("candidate_id", candidateID),
		zap.Int("questions", len(s.Questions())),
	)

	return s.ID, nil
}

// SubmitAnswer stores the answer for a question. The latest submission wins.
func (m *Manager) SubmitAnswer(sessionID, questionID, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.active(sessionID, "submit answer")
	if err != nil {
		return err
	}

	if _, ok := s.question(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	s.Answers[questionID] = Answer{Value: answer, SubmittedAt: m.now()}

	m.logger.Debug("answer submitted",
		zap.String("session_id", sessionID),
		zap.String("question_id", questionID),
	)
	return nil
}

// Flag records an integrity signal. It does not change the session state.
func (m *Manager) Flag(sessionID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.active(sessionID, "flag")
	if err != nil {
		return err
	}

	s.Flags = append(s.Flags, Flag{Timestamp: m.now(), Reason: strings.TrimSpace(reason)})

	m.logger.Warn("integrity flag added",
		zap.String("session_id", sessionID),
		zap.String("reason", reason),
		zap.Int("flags", len(s.Flags)),
	)
	return nil
}

// Complete scores the session and moves it to the terminal completed state.
func (m *Manager) Complete(sessionID string) (*Results, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.active(sessionID, "complete")
	if err != nil {
		return nil, err
	}

	results := score(s, m.now())
	s.Status = StatusCompleted
	s.Results = results

	m.logger.Info("assessment completed",
		zap.String("session_id", sessionID),
		zap.Float64("overall_score", results.OverallScore),
		zap.Int("flags", results.CheatingFlags),
	)

	r := *results
	return &r, nil
}

// Status reports progress without exposing answers.
func (m *Manager) Status(sessionID string) (Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return Progress{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	return Progress{
		SessionID:         s.ID,
		Status:            s.Status,
		StartTime:         s.StartTime,
		QuestionsAnswered: len(s.Answers),
		TotalQuestions:    len(s.Questions()),
		CheatingFlags:     len(s.Flags),
	}, nil
}

// Session returns a copy of the session state.
func (m *Manager) Session(sessionID string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s.clone(), nil
}

// active must be called with the lock held.
func (m *Manager) active(sessionID, op string) (*Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if s.Status != StatusInProgress {
		return nil, &InvalidStateError{SessionID: sessionID, Status: s.Status, Op: op}
	}
	return s, nil
}
