package assessment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	mcCorrectScore = 100
	mcPartialScore = 40

	timePenaltyPerMinute = 2
	maxTimePenalty       = 20
	penaltyPerFlag       = 10
	maxCheatingPenalty   = 30

	detailedAnswerExtraWords = 20
	briefAnswerThreshold     = 2
)

// scoreQuestion returns the 0-100 score of a single answered question.
func scoreQuestion(q Question, answer string) float64 {
	switch q.Type {
	case TypeMultipleChoice:
		return scoreChoice(q, answer)
	case TypeScale:
		return scoreScale(q, answer)
	case TypeText:
		if q.Category == CategoryTechnical {
			return scoreTechnicalText(q, answer)
		}
		return scoreSoftText(q, answer)
	}
	return 0
}

func scoreChoice(q Question, answer string) float64 {
	if q.Correct == NoCorrectAnswer {
		return mcCorrectScore
	}
	idx, err := strconv.Atoi(strings.TrimSpace(answer))
	if err == nil && idx == q.Correct {
		return mcCorrectScore
	}
	return mcPartialScore
}

func scoreSoftText(q Question, answer string) float64 {
	wc := wordCount(answer)
	minWords := q.minWords()
	if wc >= minWords {
		return math.Min(100, 60+float64(wc-minWords)*2)
	}
	return float64(wc) / float64(minWords) * 60
}

func scoreTechnicalText(q Question, answer string) float64 {
	wc := wordCount(answer)
	minWords := q.minWords()
	if wc >= minWords {
		return math.Min(70+math.Min(float64(wc-minWords)*1.5, 30), 100)
	}
	return float64(wc) / float64(minWords) * 60
}

func scoreScale(q Question, answer string) float64 {
	if q.Max <= 0 {
		return 0
	}
	value := q.Min
	if v, err := strconv.Atoi(strings.TrimSpace(answer)); err == nil {
		value = v
	}
	if value < q.Min {
		value = q.Min
	}
	if value > q.Max {
		value = q.Max
	}
	return float64(value) / float64(q.Max) * 100
}

// weightedAverage scores answered questions only; unanswered ones do not
// count towards the denominator.
func weightedAverage(questions []Question, answers map[string]Answer) float64 {
	var total, weights float64
	for _, q := range questions {
		a, ok := answers[q.ID]
		if !ok {
			continue
		}
		weights += q.Weight
		total += scoreQuestion(q, a.Value) * q.Weight
	}
	if weights <= 0 {
		return 0
	}
	return total / weights
}

func timePenalty(elapsed, limit time.Duration) float64 {
	if elapsed <= limit {
		return 0
	}
	over := (elapsed - limit).Minutes()
	return math.Min(over*timePenaltyPerMinute, maxTimePenalty)
}

func cheatingPenalty(flags int) float64 {
	return math.Min(float64(flags*penaltyPerFlag), maxCheatingPenalty)
}

func score(s *Session, now time.Time) *Results {
	soft := weightedAverage(s.SoftSkillQuestions, s.Answers)
	technical := weightedAverage(s.TechnicalQuestions, s.Answers)

	elapsed := now.Sub(s.StartTime)
	tp := timePenalty(elapsed, s.TimeLimit)
	cp := cheatingPenalty(len(s.Flags))

	finalSoft := math.Max(0, soft-tp-cp)
	finalTechnical := math.Max(0, technical-tp-cp)

	return &Results{
		SessionID:        s.ID,
		CandidateID:      s.CandidateID,
		SoftSkillScore:   round2(finalSoft),
		TechnicalScore:   round2(finalTechnical),
		OverallScore:     round2((finalSoft + finalTechnical) / 2),
		TimeTakenMinutes: round2(elapsed.Minutes()),
		TimePenalty:      round2(tp),
		CheatingFlags:    len(s.Flags),
		CheatingPenalty:  round2(cp),
		CompletedAt:      now,
		Strengths:        strengths(s),
		Weaknesses:       weaknesses(s),
	}
}

func strengths(s *Session) []string {
	var out []string
	for _, q := range s.SoftSkillQuestions {
		if q.Type != TypeMultipleChoice || q.Correct == NoCorrectAnswer {
			continue
		}
		a, ok := s.Answers[q.ID]
		if !ok || scoreChoice(q, a.Value) != mcCorrectScore {
			continue
		}
		text := strings.ToLower(q.Text)
		switch {
		case strings.Contains(text, "priorit"):
			out = append(out, "Strong prioritization skills")
		case strings.Contains(text, "criticism"):
			out = append(out, "Receptive to feedback")
		}
	}

	for _, q := range s.TechnicalQuestions {
		a, ok := s.Answers[q.ID]
		if ok && wordCount(a.Value) > q.minWords()+detailedAnswerExtraWords {
			out = append(out, "Detailed technical knowledge")
			break
		}
	}

	if len(out) == 0 {
		return []string{"Completed all sections"}
	}
	return out
}

func weaknesses(s *Session) []string {
	var out []string

	questions := s.Questions()
	answered := 0
	short := 0
	for _, q := range questions {
		a, ok := s.Answers[q.ID]
		if !ok {
			continue
		}
		answered++
		if q.Type == TypeText && wordCount(a.Value) < q.minWords() {
			short++
		}
	}

	if answered < len(questions) {
		out = append(out, fmt.Sprintf("Incomplete (%d questions unanswered)", len(questions)-answered))
	}
	if short > briefAnswerThreshold {
		out = append(out, "Brief responses (needs more detail)")
	}
	if n := len(s.Flags); n > 0 {
		out = append(out, fmt.Sprintf("Integrity concerns (%d flags)", n))
	}

	if len(out) == 0 {
		return []string{"None identified"}
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
