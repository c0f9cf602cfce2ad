package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/talentsift/resume-screener/internal/analysis"
	"github.com/talentsift/resume-screener/internal/contacts"
	"github.com/talentsift/resume-screener/internal/screening"
)

func testRecords() []screening.Record {
	return []screening.Record{
		{
			File: "jane.pdf",
			Contact: contacts.Info{
				Email:    "jane@corp.example",
				Phone:    "555-123-4567",
				LinkedIn: "https://www.linkedin.com/in/jane",
			},
			Analysis: analysis.ResumeAnalysis{
				Name:    "Jane Doe",
				Skills:  []string{"Go", "SQL"},
				IsMatch: true,
			},
		},
		{
			File:    "john.pdf",
			Contact: contacts.Info{},
			Analysis: analysis.ResumeAnalysis{
				Name:    "John Smith",
				Skills:  nil,
				IsMatch: false,
			},
		},
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	return rows
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	records := testRecords()

	if err := WriteCSV(path, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := readRows(t, path)

	if len(rows) != len(records)+1 {
		t.Fatalf("expected %d rows, got %d", len(records)+1, len(rows))
	}

	if !reflect.DeepEqual(rows[0], Header) {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	want := []string{"Jane Doe", "jane@corp.example", "555-123-4567", "https://www.linkedin.com/in/jane", "Go, SQL", "true"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Fatalf("unexpected first row: %v", rows[1])
	}

	want = []string{"John Smith", "", "", "", "", "false"}
	if !reflect.DeepEqual(rows[2], want) {
		t.Fatalf("unexpected second row: %v", rows[2])
	}
}

func TestWriteCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	if err := WriteCSV(path, testRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := WriteCSV(path, testRecords()[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("expected the file to be overwritten, got %d rows", len(rows))
	}
}
