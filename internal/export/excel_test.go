package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/talentsonar/internal/candidate"
)

func TestWriteCandidates(t *testing.T) {
	t.Parallel()

	job := candidate.JobSpec{ID: 2, Title: "Backend Engineer", RequiredSkills: []string{"python", "django"}}
	profiles := []candidate.Profile{
		{ID: 1, Login: "low", Score: &candidate.MatchScore{Total: 20}},
		{ID: 2, Login: "high", DisplayName: "High Scorer", Score: &candidate.MatchScore{
			Total:         90,
			MatchedSkills: []string{"python", "django"},
			Reasons:       []string{"2 language match(es)"},
		}},
	}

	path, err := WriteCandidates(filepath.Join(t.TempDir(), "report"), job, profiles, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != ".xlsx" {
		t.Fatalf("expected xlsx extension, got %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SummarySheet || sheets[1] != CandidatesSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	if v, _ := f.GetCellValue(SummarySheet, "B1"); v != "Backend Engineer" {
		t.Fatalf("unexpected title cell %q", v)
	}
	if v, _ := f.GetCellValue(SummarySheet, "B6"); v != "2" {
		t.Fatalf("unexpected candidate count %q", v)
	}

	rows, err := f.GetRows(CandidatesSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "high" || rows[1][3] != "High Scorer" || rows[1][6] != "python, django" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][2] != "low" || rows[2][3] != "low" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
}
