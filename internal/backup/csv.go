// Package backup implements the CSV backup format used to export and
// restore the applications collection.
//
// The format is deliberately not RFC 4180: values are never quoted, literal
// commas inside fields are substituted with the full-width comma U+FF0C, and
// the phone column is wrapped as '="<value>" to defeat spreadsheet
// auto-formatting. Embedded newlines or double quotes in field values are
// not supported and will corrupt a round-trip.
package backup

import (
	"fmt"
	"strings"
	"time"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

// Header is the fixed literal header row of an exported backup file.
const Header = "BackupID(勿改),申請人,電話,供應商,負責人,聯絡人,填表時間,員工姓名,員工身分證,血型,生日,所屬管理者"

// Fixed column positions consumed on import. Columns beyond colBirthday
// (the owner column) are ignored when reading a file back.
const (
	colBackupID = iota
	colApplicant
	colPhone
	colVendorName
	colVendorRep
	colContactPerson
	colCreatedAt
	colWorkerName
	colWorkerID
	colBloodType
	colBirthday
)

const bom = "\uFEFF"

// Export serializes the applications, in the order given, into a CSV blob
// prefixed with a UTF-8 byte-order mark. Each worker produces one row
// repeating the application-level fields; an application without workers
// produces a single row with the worker columns blank.
func Export(apps []domain.Application) []byte {
	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(Header)
	b.WriteString("\n")

	for _, app := range apps {
		head := strings.Join([]string{
			app.ID,
			clean(app.Applicant),
			phoneCell(app.Phone),
			clean(app.VendorName),
			clean(app.VendorRep),
			clean(app.ContactPerson),
			clean(app.CreatedAt),
		}, ",")
		if len(app.Workers) == 0 {
			b.WriteString(head + ",,,,," + clean(app.OwnerName) + "\n")
			continue
		}
		for _, w := range app.Workers {
			row := strings.Join([]string{
				head,
				clean(w.Name),
				clean(w.IDNumber),
				clean(w.BloodType),
				clean(w.Birthday),
				clean(app.OwnerName),
			}, ",")
			b.WriteString(row + "\n")
		}
	}
	return []byte(b.String())
}

// Filename returns the conventional backup filename for a tenant scope.
func Filename(scope string, now time.Time) string {
	return fmt.Sprintf("Backup_%s_%s.csv", scope, now.Format("2006-01-02"))
}

// Parse reads a backup blob back into grouped applications. The header line
// is skipped, rows are grouped by backup id, and the first row bearing an id
// establishes the application-level fields. Rows missing the backup id or
// the applicant are dropped silently; a worker entry is added whenever the
// worker name column is non-empty. Short rows are padded with empty strings,
// never rejected. Returned applications carry no ID: the importer stores
// each as a new document.
func Parse(text string) []domain.Application {
	lines := strings.Split(strings.TrimPrefix(text, bom), "\n")

	grouped := make(map[string]*domain.Application)
	order := make([]string, 0)

	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Spreadsheet tools save pasted-back backups as TSV as often as
		// CSV, so the delimiter is sniffed per line.
		var cols []string
		if strings.Contains(line, "\t") {
			cols = strings.Split(line, "\t")
		} else {
			cols = strings.Split(line, ",")
		}

		backupID := col(cols, colBackupID)
		applicant := col(cols, colApplicant)
		if backupID == "" || applicant == "" {
			continue
		}

		app, ok := grouped[backupID]
		if !ok {
			app = &domain.Application{
				Applicant:     applicant,
				Phone:         cleanPhone(col(cols, colPhone)),
				VendorName:    col(cols, colVendorName),
				VendorRep:     col(cols, colVendorRep),
				ContactPerson: col(cols, colContactPerson),
				CreatedAt:     col(cols, colCreatedAt),
				Workers:       []domain.Worker{},
			}
			if app.CreatedAt == "" {
				app.CreatedAt = time.Now().Format(time.RFC3339)
			}
			grouped[backupID] = app
			order = append(order, backupID)
		}

		if name := col(cols, colWorkerName); name != "" {
			app.Workers = append(app.Workers, domain.Worker{
				Name:      name,
				IDNumber:  col(cols, colWorkerID),
				BloodType: col(cols, colBloodType),
				Birthday:  NormalizeBirthday(col(cols, colBirthday)),
			})
		}
	}

	apps := make([]domain.Application, 0, len(order))
	for _, id := range order {
		apps = append(apps, *grouped[id])
	}
	return apps
}

// NormalizeBirthday rewrites date separators to the YYYY/MM/DD convention.
func NormalizeBirthday(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "/")
}

// col returns the trimmed cell at idx, defaulting out-of-range to "".
func col(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[idx])
}

// clean substitutes literal commas with the full-width comma so an unquoted
// row keeps its column count. Best effort only.
func clean(val string) string {
	return strings.ReplaceAll(val, ",", "，")
}

// phoneCell wraps the phone as a spreadsheet text formula so leading zeros
// survive the destination tool.
func phoneCell(phone string) string {
	if phone == "" {
		return ""
	}
	return `'="` + clean(phone) + `"`
}

// cleanPhone strips the quote and equals characters the export wrapper (or
// a spreadsheet re-save) leaves around phone values.
func cleanPhone(phone string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '\'', '=', '"':
			return -1
		}
		return r
	}, phone))
}
