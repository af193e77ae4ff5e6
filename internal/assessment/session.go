package assessment

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a session. Completed is terminal.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var (
	// ErrInvalidState matches any InvalidStateError.
	ErrInvalidState = errors.New("invalid session state")
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnknownQuestion is returned when an answer targets a question outside the session.
	ErrUnknownQuestion = errors.New("unknown question")
)

// InvalidStateError reports an operation attempted on a session that is not in progress.
type InvalidStateError struct {
	SessionID string
	Status    Status
	Op        string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: session %s is %s", e.Op, e.SessionID, e.Status)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// Answer is the latest submission for a question.
type Answer struct {
	Value       string    `json:"value"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Flag is a recorded integrity signal.
type Flag struct {
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
}

// Session is the state of one candidate's assessment.
type Session struct {
	ID                 string            `json:"session_id"`
	CandidateID        int               `json:"candidate_id"`
	StartTime          time.Time         `json:"start_time"`
	TimeLimit          time.Duration     `json:"time_limit"`
	SoftSkillQuestions []Question        `json:"soft_skill_questions"`
	TechnicalQuestions []Question        `json:"technical_questions"`
	Answers            map[string]Answer `json:"answers"`
	Flags              []Flag            `json:"integrity_flags"`
	Status             Status            `json:"status"`
	Results            *Results          `json:"results,omitempty"`
}

// Questions returns the full ordered question set.
func (s *Session) Questions() []Question {
	out := make([]Question, 0, len(s.SoftSkillQuestions)+len(s.TechnicalQuestions))
	out = append(out, s.SoftSkillQuestions...)
	return append(out, s.TechnicalQuestions...)
}

func (s *Session) question(id string) (Question, bool) {
	for _, q := range s.Questions() {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (s *Session) clone() Session {
	c := *s
	c.SoftSkillQuestions = append([]Question(nil), s.SoftSkillQuestions...)
	c.TechnicalQuestions = append([]Question(nil), s.TechnicalQuestions...)
	c.Flags = append([]Flag(nil), s.Flags...)
	c.Answers = make(map[string]Answer, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	if s.Results != nil {
		r := *s.Results
		c.Results = &r
	}
	return c
}

// Results is the scored outcome of a completed session.
type Results struct {
	SessionID        string    `json:"session_id"`
	CandidateID      int       `json:"candidate_id"`
	SoftSkillScore   float64   `json:"soft_skill_score"`
	TechnicalScore   float64   `json:"technical_score"`
	OverallScore     float64   `json:"overall_score"`
	TimeTakenMinutes float64   `json:"time_taken_minutes"`
	TimePenalty      float64   `json:"time_penalty"`
	CheatingFlags    int       `json:"cheating_flags"`
	CheatingPenalty  float64   `json:"cheating_penalty"`
	CompletedAt      time.Time `json:"completed_at"`
	Strengths        []string  `json:"strengths"`
	Weaknesses       []string  `json:"weaknesses"`
}

// Progress summarises a session without exposing answers.
type Progress struct {
	SessionID         string    `json:"session_id"`
	Status            Status    `json:"status"`
	StartTime         time.Time `json:"start_time"`
	QuestionsAnswered int       `json:"questions_answered"`
	TotalQuestions    int       `json:"total_questions"`
	CheatingFlags     int       `json:"cheating_flags"`
}
