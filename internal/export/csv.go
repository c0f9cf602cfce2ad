// Package export writes candidate records to a delimited file.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/talentsift/resume-screener/internal/screening"
)

// Header is the fixed column order of the export file.
var Header = []string{"name", "email", "phone", "linkedin", "skills", "is_match"}

// WriteCSV serializes the records to path, one row per record plus a
// header row, overwriting any existing file. Skills are rendered as a
// single comma-joined string; a skill containing a comma is not escaped
// beyond the CSV quoting the encoder applies to the whole cell.
func WriteCSV(path string, records []screening.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Analysis.Name,
			record.Contact.Email,
			record.Contact.Phone,
			record.Contact.LinkedIn,
			strings.Join(record.Analysis.Skills, ", "),
			strconv.FormatBool(record.Analysis.IsMatch),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing record for %s: %w", record.File, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing output file: %w", err)
	}

	return nil
}
