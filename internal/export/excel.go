// Package export writes candidate reports as Excel workbooks.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/talentsonar/internal/candidate"
)

// Sheet names.
const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Ranked Candidates"
)

var candidateHeaders = []string{
	"Rank", "ID", "Login", "Name", "Location", "Score",
	"Matched Skills", "Missing Skills", "Followers", "Top Repo Stars",
	"Years on GitHub", "Source", "Profile", "Reasons",
}

// WriteCandidates writes a workbook ranking profiles for job. The ".xlsx"
// extension is appended when missing and the final path is returned.
func WriteCandidates(path string, job candidate.JobSpec, profiles []candidate.Profile, now time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	ranked := append([]candidate.Profile(nil), profiles...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].TotalScore(), ranked[j].TotalScore()
		if a != b {
			return a > b
		}
		return ranked[i].ID < ranked[j].ID
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		return "", err
	}

	if err := writeSummary(f, job, ranked, now); err != nil {
		return "", fmt.Errorf("writing summary sheet: %w", err)
	}
	if err := writeCandidates(f, ranked); err != nil {
		return "", fmt.Errorf("writing candidates sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	return path, nil
}

func writeSummary(f *excelize.File, job candidate.JobSpec, ranked []candidate.Profile, now time.Time) error {
	if err := f.SetColWidth(SummarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 60); err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	var excellent, good, fair, poor int
	total := 0.0
	for _, p := range ranked {
		score := p.TotalScore()
		total += score
		switch {
		case score >= 80:
			excellent++
		case score >= 60:
			good++
		case score >= 40:
			fair++
		default:
			poor++
		}
	}
	average := 0.0
	if len(ranked) > 0 {
		average = total / float64(len(ranked))
	}

	rows := [][2]any{
		{"Job Title", job.Title},
		{"Job ID", job.ID},
		{"Required Skills", strings.Join(job.RequiredSkills, ", ")},
		{"Required Experience (years)", job.RequiredExperienceYears},
		{"Generated", now.Format("2006-01-02 15:04:05")},
		{"Candidates", len(ranked)},
		{"Average Score", fmt.Sprintf("%.2f", average)},
		{"Excellent (80+)", excellent},
		{"Good (60-79)", good},
		{"Fair (40-59)", fair},
		{"Poor (<40)", poor},
	}

	for i, row := range rows {
		label, _ := excelize.CoordinatesToCellName(1, i+1)
		value, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(SummarySheet, label, row[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, label, label, labelStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(SummarySheet, value, row[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeCandidates(f *excelize.File, ranked []candidate.Profile) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for col, h := range candidateHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(CandidatesSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(candidateHeaders), 1)
	if err := f.SetCellStyle(CandidatesSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, p := range ranked {
		var matched, missing, reasons string
		if p.Score != nil {
			matched = strings.Join(p.Score.MatchedSkills, ", ")
			missing = strings.Join(p.Score.MissingSkills, ", ")
			reasons = strings.Join(p.Score.Reasons, "; ")
		}

		values := []any{
			i + 1, p.ID, p.Login, p.Name(), p.Location, p.TotalScore(),
			matched, missing, p.Followers, p.MaxRepoStars,
			p.YearsExperience, p.Source, p.ProfileURL(), reasons,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(CandidatesSheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SetPanes(CandidatesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
