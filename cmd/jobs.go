package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/ai"
	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/document"
	"github.com/spigell/talentsonar/internal/logger"
	"github.com/spigell/talentsonar/internal/skills"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage job openings",
}

var jobsAddCmd = &cobra.Command{
	Use:   "add <description-file>",
	Short: "Extract requirements from a job description and store the job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addJob(cmd, args[0])
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jobs",
	Run: func(_ *cobra.Command, _ []string) {
		listJobs()
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsAddCmd, jobsListCmd)

	jobsAddCmd.Flags().StringP("title", "t", "", "job title. Defaults to the extracted title or the file name.")
	jobsAddCmd.Flags().StringSlice("skills", nil, "extra required skills appended to the extracted ones")
}

func addJob(cmd *cobra.Command, path string) {
	ctx := context.Background()
	log, config := setup()

	text, err := document.Extract(path, log)
	if err != nil {
		log.Fatal("reading job description", zap.Error(err))
	}

	extractor, err := newExtractor(ctx, config.AI, log)
	if err != nil {
		log.Fatal("creating requirements extractor", zap.Error(err))
	}

	req := ai.ExtractOrDefault(ctx, extractor, text, log)

	extra, _ := cmd.Flags().GetStringSlice("skills")
	technical := append(append([]string(nil), req.Technical...), extra...)

	title, _ := cmd.Flags().GetString("title")
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(req.Title)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	file := jobsFile(config)
	jobs, err := file.Load()
	if err != nil {
		log.Fatal("loading jobs", zap.Error(err))
	}

	next := 1
	for _, j := range jobs {
		if j.ID >= next {
			next = j.ID + 1
		}
	}

	job := candidate.JobSpec{
		ID:                      next,
		Title:                   title,
		RawDescription:          text,
		Topics:                  req.Topics,
		RequiredExperienceYears: req.ExperienceYears,
	}
	job.SetRequiredSkills(technical)

	if err := job.Validate(); err != nil {
		log.Fatal("validating job", zap.Error(err))
	}

	if err := file.Save(append(jobs, job)); err != nil {
		log.Fatal("saving jobs", zap.Error(err))
	}

	log.Info("job stored",
		append(logger.JobFields(job.ID, job.Title),
			zap.Strings("required_skills", job.RequiredSkills),
			zap.Strings("languages", skills.Normalize(job.RequiredSkills)),
			zap.Int("experience_years", job.RequiredExperienceYears),
			zap.Float64("confidence", req.Confidence),
		)...,
	)
}

func listJobs() {
	log, config := setup()

	jobs, err := jobsFile(config).Load()
	if err != nil {
		log.Fatal("loading jobs", zap.Error(err))
	}

	if len(jobs) == 0 {
		log.Info("no jobs stored", zap.String("file", config.Storage.JobsFile))
		return
	}

	for _, j := range jobs {
		log.Info("job",
			append(logger.JobFields(j.ID, j.Title),
				zap.Strings("required_skills", j.RequiredSkills),
				zap.Strings("topics", j.Topics),
				zap.Int("experience_years", j.RequiredExperienceYears),
			)...,
		)
	}
}
