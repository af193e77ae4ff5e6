package assessment

import (
	"strings"

	"github.com/spigell/talentsonar/internal/skills"
)

// QuestionType selects how an answer is scored.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeText           QuestionType = "text"
	TypeScale          QuestionType = "scale"
)

// Category separates soft-skill and technical questions.
type Category string

const (
	CategorySoftSkills Category = "soft_skills"
	CategoryTechnical  Category = "technical"
)

// NoCorrectAnswer marks a multiple-choice question where every option is acceptable.
const NoCorrectAnswer = -1

const defaultMinWords = 20

// Question is one assessment item.
type Question struct {
	ID       string       `json:"id"`
	Category Category     `json:"category"`
	Type     QuestionType `json:"type"`
	Text     string       `json:"text"`
	Options  []string     `json:"options,omitempty"`
	Correct  int          `json:"correct"`
	MinWords int          `json:"min_words,omitempty"`
	Min      int          `json:"min,omitempty"`
	Max      int          `json:"max,omitempty"`
	Weight   float64      `json:"weight"`
}

func (q Question) minWords() int {
	if q.MinWords <= 0 {
		return defaultMinWords
	}
	return q.MinWords
}

var softSkillQuestions = []Question{
	{
		ID:   "ss_q1",
		Type: TypeMultipleChoice,
		Text: "How do you prioritize tasks when faced with multiple deadlines?",
		Options: []string{
			"I create a detailed schedule and stick to it strictly",
			"I assess urgency and importance, then prioritize accordingly",
			"I work on whatever seems most interesting first",
			"I ask my manager to prioritize for me",
		},
		Correct: 1,
		Weight:  1.0,
	},
	{
		ID:       "ss_q2",
		Type:     TypeText,
		Text:     "Describe a time when you had to work with a difficult team member.",
		MinWords: 50,
		Weight:   1.5,
	},
	{
		ID:   "ss_q3",
		Type: TypeMultipleChoice,
		Text: "How do you handle constructive criticism?",
		Options: []string{
			"I take it personally and feel discouraged",
			"I listen carefully, ask questions, and use it to improve",
			"I ignore it if I disagree",
			"I defend my position aggressively",
		},
		Correct: 1,
		Weight:  1.0,
	},
	{
		ID:     "ss_q4",
		Type:   TypeScale,
		Text:   "Rate your communication skills (1-10)",
		Min:    1,
		Max:    10,
		Weight: 0.8,
	},
	{
		ID:       "ss_q5",
		Type:     TypeText,
		Text:     "How do you approach learning new technologies?",
		MinWords: 30,
		Weight:   1.2,
	},
	{
		ID:   "ss_q6",
		Type: TypeMultipleChoice,
		Text: "What motivates you most in your work?",
		Options: []string{
			"Financial compensation and benefits",
			"Challenging problems and continuous learning",
			"Recognition and praise from colleagues",
			"Work-life balance and flexibility",
		},
		Correct: NoCorrectAnswer,
		Weight:  1.0,
	},
	{
		ID:       "ss_q7",
		Type:     TypeText,
		Text:     "Describe a situation where you had to adapt quickly to change.",
		MinWords: 40,
		Weight:   1.5,
	},
	{
		ID:   "ss_q8",
		Type: TypeMultipleChoice,
		Text: "How do you handle stress and pressure in the workplace?",
		Options: []string{
			"I tend to get overwhelmed and struggle to focus",
			"I break tasks into smaller steps and stay organized",
			"I avoid stressful situations when possible",
			"I thrive under pressure and work best with tight deadlines",
		},
		Correct: 1,
		Weight:  1.0,
	},
	{
		ID:     "ss_q9",
		Type:   TypeScale,
		Text:   "Rate your ability to work independently without supervision (1-10)",
		Min:    1,
		Max:    10,
		Weight: 0.8,
	},
	{
		ID:       "ss_q10",
		Type:     TypeText,
		Text:     "Describe your approach to collaborating with team members on a complex project.",
		MinWords: 50,
		Weight:   1.5,
	},
}

var technicalPool = map[string][]Question{
	"python": {
		{ID: "tech_py1", Type: TypeText, Text: "What is the difference between a list and a tuple in Python?", MinWords: 20, Weight: 1.0},
		{ID: "tech_py2", Type: TypeText, Text: "Explain the concept of decorators in Python.", MinWords: 30, Weight: 1.5},
	},
	"javascript": {
		{ID: "tech_js1", Type: TypeText, Text: "Explain the difference between '==' and '===' in JavaScript.", MinWords: 20, Weight: 1.0},
		{ID: "tech_js2", Type: TypeText, Text: "What is a closure and give an example.", MinWords: 30, Weight: 1.5},
	},
	"general": {
		{ID: "tech_gen1", Type: TypeText, Text: "Describe the difference between SQL and NoSQL databases.", MinWords: 30, Weight: 1.0},
		{ID: "tech_gen2", Type: TypeText, Text: "What is version control and why is it important?", MinWords: 25, Weight: 1.0},
		{ID: "tech_gen3", Type: TypeScale, Text: "Rate your experience with cloud platforms (AWS, Azure, GCP) on a scale of 1-10", Min: 1, Max: 10, Weight: 0.8},
	},
}

const (
	technicalSkillsConsidered = 2
	maxTechnicalQuestions     = 5
)

// SoftSkillQuestions returns a copy of the fixed soft-skill bank.
func SoftSkillQuestions() []Question {
	return withCategory(softSkillQuestions, CategorySoftSkills)
}

// TechnicalQuestions picks questions for the job's top two technical skills
// followed by the general pool, capped at five.
func TechnicalQuestions(technical []string) []Question {
	if len(technical) > technicalSkillsConsidered {
		technical = technical[:technicalSkillsConsidered]
	}

	var selected []Question
	added := make(map[string]struct{})
	for _, skill := range technical {
		lang, ok := skills.Canonical(skill)
		if !ok {
			lang = strings.ToLower(strings.TrimSpace(skill))
		}
		if _, done := added[lang]; done {
			continue
		}
		if pool, ok := technicalPool[lang]; ok {
			selected = append(selected, pool...)
			added[lang] = struct{}{}
		}
	}

	selected = append(selected, technicalPool["general"]...)
	if len(selected) > maxTechnicalQuestions {
		selected = selected[:maxTechnicalQuestions]
	}

	return withCategory(selected, CategoryTechnical)
}

func withCategory(questions []Question, c Category) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		q.Category = c
		out[i] = q
	}
	return out
}
