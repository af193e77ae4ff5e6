package assessment

import (
	"strings"
	"testing"
	"time"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestScoreQuestion(t *testing.T) {
	t.Parallel()

	soft := Question{Type: TypeText, Category: CategorySoftSkills, MinWords: 10}
	tech := Question{Type: TypeText, Category: CategoryTechnical, MinWords: 10}
	scale := Question{Type: TypeScale, Min: 1, Max: 10}
	choice := Question{Type: TypeMultipleChoice, Correct: 2}
	open := Question{Type: TypeMultipleChoice, Correct: NoCorrectAnswer}

	tests := []struct {
		name   string
		q      Question
		answer string
		expect float64
	}{
		{name: "soft text below minimum", q: soft, answer: words(5), expect: 30},
		{name: "soft text at minimum", q: soft, answer: words(10), expect: 60},
		{name: "soft text above minimum", q: soft, answer: words(15), expect: 70},
		{name: "soft text capped", q: soft, answer: words(100), expect: 100},
		{name: "technical text at minimum", q: tech, answer: words(10), expect: 70},
		{name: "technical text bonus", q: tech, answer: words(14), expect: 76},
		{name: "technical text capped", q: tech, answer: words(60), expect: 100},
		{name: "technical text below minimum", q: tech, answer: words(5), expect: 30},
		{name: "scale value", q: scale, answer: "7", expect: 70},
		{name: "scale clamped high", q: scale, answer: "15", expect: 100},
		{name: "scale non numeric uses minimum", q: scale, answer: "very good", expect: 10},
		{name: "choice correct", q: choice, answer: "2", expect: 100},
		{name: "choice wrong", q: choice, answer: "0", expect: 40},
		{name: "choice garbage", q: choice, answer: "b", expect: 40},
		{name: "choice without correct answer", q: open, answer: "3", expect: 100},
		{name: "default min words", q: Question{Type: TypeText, Category: CategorySoftSkills}, answer: words(20), expect: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := scoreQuestion(tt.q, tt.answer); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestWeightedAverageIgnoresUnanswered(t *testing.T) {
	t.Parallel()

	questions := []Question{
		{ID: "a", Type: TypeMultipleChoice, Correct: 1, Weight: 1.0},
		{ID: "b", Type: TypeMultipleChoice, Correct: 1, Weight: 3.0},
		{ID: "c", Type: TypeScale, Min: 1, Max: 10, Weight: 2.0},
	}
	answers := map[string]Answer{
		"a": {Value: "1"},
		"c": {Value: "5"},
	}

	// (100*1 + 50*2) / 3
	got := round2(weightedAverage(questions, answers))
	if got != 66.67 {
		t.Fatalf("expected 66.67, got %v", got)
	}

	if weightedAverage(questions, nil) != 0 {
		t.Fatalf("expected 0 for no answers")
	}
}

func TestStrengthsAndWeaknesses(t *testing.T) {
	t.Parallel()

	s := &Session{
		SoftSkillQuestions: SoftSkillQuestions(),
		TechnicalQuestions: []Question{},
		Answers: map[string]Answer{
			"ss_q1":  {Value: "1"},
			"ss_q3":  {Value: "1"},
			"ss_q2":  {Value: "too short"},
			"ss_q5":  {Value: "short"},
			"ss_q10": {Value: "short"},
		},
		StartTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		TimeLimit: DefaultTimeLimit,
	}

	st := strengths(s)
	if len(st) != 2 || st[0] != "Strong prioritization skills" || st[1] != "Receptive to feedback" {
		t.Fatalf("unexpected strengths: %v", st)
	}

	wk := weaknesses(s)
	if len(wk) != 2 || wk[0] != "Incomplete (5 questions unanswered)" || wk[1] != "Brief responses (needs more detail)" {
		t.Fatalf("unexpected weaknesses: %v", wk)
	}

	empty := &Session{SoftSkillQuestions: []Question{}, Answers: map[string]Answer{}}
	if got := strengths(empty); len(got) != 1 || got[0] != "Completed all sections" {
		t.Fatalf("unexpected default strengths: %v", got)
	}
	if got := weaknesses(empty); len(got) != 1 || got[0] != "None identified" {
		t.Fatalf("unexpected default weaknesses: %v", got)
	}
}

func TestTechnicalQuestionsCap(t *testing.T) {
	t.Parallel()

	qs := TechnicalQuestions(nil)
	if len(qs) != 3 {
		t.Fatalf("expected the general pool only, got %d", len(qs))
	}
	for _, q := range qs {
		if q.Category != CategoryTechnical {
			t.Fatalf("expected technical category, got %s", q.Category)
		}
	}

	qs = TechnicalQuestions([]string{"rust", "JavaScript"})
	if len(qs) != 5 || qs[0].ID != "tech_js1" {
		t.Fatalf("unexpected selection: %+v", qs)
	}
}
