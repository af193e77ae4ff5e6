package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/ai"
	"github.com/spigell/talentsonar/internal/assessment"
	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/storage"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	// Typing faster than this for a long answer is recorded as a paste.
	maxWordsPerSecond = 4
	pasteMinWords     = 20
)

var errAborted = errors.New("assessment aborted")

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run the assessment for a stored candidate in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		assess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().Int("candidate", 0, "id of the stored candidate")
	assessCmd.Flags().Int("job", 0, "id of the job the assessment is tailored to")
	_ = assessCmd.MarkFlagRequired("candidate")
	_ = assessCmd.MarkFlagRequired("job")
}

func assess(cmd *cobra.Command) {
	log, config := setup()

	candidateID, _ := cmd.Flags().GetInt("candidate")
	jobID, _ := cmd.Flags().GetInt("job")

	job, err := loadJob(config, jobID)
	if err != nil {
		log.Fatal("loading job", zap.Error(err))
	}

	registry, err := openRegistry(config)
	if err != nil {
		log.Fatal("opening candidate registry", zap.Error(err))
	}

	rec, err := registry.Get(candidateID)
	if err != nil {
		log.Fatal("loading candidate", zap.Error(err))
	}

	manager := assessment.NewManager(log,
		assessment.WithTechnicalQuestions(config.Assessment.TechnicalQuestions),
		assessment.WithTimeLimit(time.Duration(config.Assessment.TimeLimitMinutes)*time.Minute),
	)

	sessionID, err := manager.Create(rec.Profile.ID, ai.Requirements{
		Title:           job.Title,
		Technical:       job.RequiredSkills,
		Topics:          job.Topics,
		ExperienceYears: job.RequiredExperienceYears,
	})
	if err != nil {
		log.Fatal("creating assessment session", zap.Error(err))
	}

	session, err := manager.Session(sessionID)
	if err != nil {
		log.Fatal("loading assessment session", zap.Error(err))
	}

	log.Info("starting assessment",
		zap.String("session_id", sessionID),
		zap.String("candidate", rec.Profile.Login),
		zap.Int("questions", len(session.Questions())),
		zap.Duration("time_limit", session.TimeLimit),
	)

	if err := runQuestions(manager, session, log); err != nil {
		if errors.Is(err, errAborted) {
			log.Info("exiting", zap.String("reason", "assessment aborted"), zap.String("session_id", sessionID))
			return
		}
		log.Fatal("running assessment", zap.Error(err))
	}

	confirm := promptui.Select{
		Label: "Submit the assessment?",
		Items: []string{PromptYes, PromptNo},
	}
	if _, answer, err := confirm.Run(); err != nil || answer != PromptYes {
		log.Info("exiting", zap.String("reason", "submission declined"), zap.String("session_id", sessionID))
		return
	}

	results, err := manager.Complete(sessionID)
	if err != nil {
		log.Fatal("completing assessment", zap.Error(err))
	}

	if err := registry.Update(rec.Profile.ID, func(r *candidate.Record) {
		r.TestResults = results
		r.Status = candidate.StatusAssessed
	}); err != nil {
		log.Fatal("storing assessment results", zap.Error(err))
	}

	if err := saveSession(config, manager, sessionID); err != nil {
		log.Fatal("saving assessment session", zap.Error(err))
	}

	log.Info("assessment completed",
		zap.String("session_id", sessionID),
		zap.Float64("overall_score", results.OverallScore),
		zap.Strings("strengths", results.Strengths),
		zap.Strings("weaknesses", results.Weaknesses),
		zap.Int("cheating_flags", results.CheatingFlags),
	)
}

func runQuestions(manager *assessment.Manager, session assessment.Session, log *zap.Logger) error {
	questions := session.Questions()
	for i, q := range questions {
		label := fmt.Sprintf("[%d/%d] %s", i+1, len(questions), q.Text)

		started := time.Now()
		answer, err := ask(label, q)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errAborted
			}
			return err
		}

		if q.Type == assessment.TypeText && looksPasted(answer, time.Since(started)) {
			if err := manager.Flag(session.ID, "answer to "+q.ID+" entered faster than typing allows"); err != nil {
				return err
			}
			log.Warn("integrity flag recorded", zap.String("question_id", q.ID))
		}

		if err := manager.SubmitAnswer(session.ID, q.ID, answer); err != nil {
			return err
		}

		progress, err := manager.Status(session.ID)
		if err != nil {
			return err
		}
		log.Debug("answer recorded",
			zap.String("question_id", q.ID),
			zap.Int("answered", progress.QuestionsAnswered),
			zap.Int("total", progress.TotalQuestions),
		)
	}
	return nil
}

// ask renders q and returns the answer in the form the scorer expects:
// the option index for multiple choice, the raw text otherwise.
func ask(label string, q assessment.Question) (string, error) {
	switch q.Type {
	case assessment.TypeMultipleChoice:
		sel := promptui.Select{Label: label, Items: q.Options}
		idx, _, err := sel.Run()
		if err != nil {
			return "", err
		}
		return strconv.Itoa(idx), nil
	case assessment.TypeScale:
		p := promptui.Prompt{
			Label: fmt.Sprintf("%s (%d-%d)", label, q.Min, q.Max),
			Validate: func(in string) error {
				v, err := strconv.Atoi(strings.TrimSpace(in))
				if err != nil {
					return errors.New("enter a number")
				}
				if v < q.Min || v > q.Max {
					return fmt.Errorf("enter a number between %d and %d", q.Min, q.Max)
				}
				return nil
			},
		}
		return p.Run()
	default:
		p := promptui.Prompt{Label: label}
		return p.Run()
	}
}

func looksPasted(answer string, took time.Duration) bool {
	words := len(strings.Fields(answer))
	if words < pasteMinWords {
		return false
	}
	return float64(words)/took.Seconds() > maxWordsPerSecond
}

func saveSession(config *Config, manager *assessment.Manager, sessionID string) error {
	session, err := manager.Session(sessionID)
	if err != nil {
		return err
	}

	file := storage.NewJSONFile[[]assessment.Session](config.Storage.ResultsFile)
	sessions, err := file.Load()
	if err != nil {
		return err
	}
	return file.Save(append(sessions, session))
}
