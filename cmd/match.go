package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/export"
	"github.com/spigell/talentsonar/internal/logger"
	"github.com/spigell/talentsonar/internal/matching"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank stored candidates against a job",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Int("job", 0, "id of the stored job to match against")
	matchCmd.Flags().IntP("top", "n", 10, "number of candidates to report. Zero reports all of them.")
	matchCmd.Flags().StringP("export", "o", "", "write the ranked candidates to an Excel workbook")
	_ = matchCmd.MarkFlagRequired("job")
}

func match(cmd *cobra.Command) {
	log, config := setup()

	jobID, _ := cmd.Flags().GetInt("job")
	job, err := loadJob(config, jobID)
	if err != nil {
		log.Fatal("loading job", zap.Error(err))
	}
	log = log.With(logger.JobFields(job.ID, job.Title)...)

	registry, err := openRegistry(config)
	if err != nil {
		log.Fatal("opening candidate registry", zap.Error(err))
	}

	profiles := registry.Profiles()
	if len(profiles) == 0 {
		log.Info("exiting", zap.String("reason", "no candidates stored"))
		return
	}

	now := time.Now()
	top, _ := cmd.Flags().GetInt("top")
	for i, e := range matching.Report(profiles, *job, top, now) {
		log.Info("match",
			zap.Int("rank", i+1),
			zap.Int("candidate_id", e.CandidateID),
			zap.String("login", e.Login),
			zap.String("name", e.Name),
			zap.Float64("score", e.Score),
		)
	}

	path, _ := cmd.Flags().GetString("export")
	if path == "" {
		return
	}

	filename, err := export.WriteCandidates(path, *job, profiles, now)
	if err != nil {
		log.Fatal("exporting candidates", zap.Error(err))
	}
	log.Info("dumping result to file", zap.String("filename", filename))
}
