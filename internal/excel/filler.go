// Package excel fills the certification application template workbook with
// one application's data.
package excel

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

// ErrTemplateMissing is returned when the template workbook is absent.
var ErrTemplateMissing = errors.New("template file not found")

// Worker rows occupy template rows 6 through 15; workers beyond the 10th
// are dropped.
const (
	workerStartRow = 6
	workerMaxRow   = 15
)

// Request carries one application's fields as posted to the export
// endpoint.
type Request struct {
	ApplicantName string          `json:"applicantName"`
	VendorName    string          `json:"vendorName"`
	VendorRep     string          `json:"vendorRep"`
	ContactPerson string          `json:"contactPerson"`
	Phone         string          `json:"phone"`
	Workers       []domain.Worker `json:"workers"`
}

// Filename returns the download filename for a filled workbook.
func (r Request) Filename() string {
	name := r.ApplicantName
	if name == "" {
		name = "Export"
	}
	return fmt.Sprintf("ee-4411-11供應商工安認證申請表_%s.xlsx", name)
}

// Filler loads the fixed-layout template from TemplatePath on every fill.
type Filler struct {
	TemplatePath string
}

func NewFiller(templatePath string) *Filler {
	return &Filler{TemplatePath: templatePath}
}

// Fill writes the request into the template's fixed cell addresses and
// returns the workbook bytes. Header cells are appended to, preserving the
// template's label text; worker rows are overwritten.
func (f *Filler) Fill(req Request) ([]byte, error) {
	if _, err := os.Stat(f.TemplatePath); err != nil {
		return nil, ErrTemplateMissing
	}
	wb, err := excelize.OpenFile(f.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = wb.Close() }()

	sheet := wb.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("worksheet not found")
	}

	appendCell := func(addr, data string) error {
		original, err := wb.GetCellValue(sheet, addr)
		if err != nil {
			return err
		}
		return wb.SetCellStr(sheet, addr, strings.TrimSpace(original)+data)
	}

	if err := appendCell("C2", req.ApplicantName); err != nil {
		return nil, err
	}
	if err := appendCell("A3", req.VendorName); err != nil {
		return nil, err
	}
	if err := appendCell("C3", req.VendorRep); err != nil {
		return nil, err
	}
	if err := appendCell("A4", req.ContactPerson); err != nil {
		return nil, err
	}
	if err := appendCell("C4", req.Phone); err != nil {
		return nil, err
	}

	birthdayStyle, err := wb.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Size: 12},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, w := range req.Workers {
		row := workerStartRow + i
		if row > workerMaxRow {
			break
		}
		if err := wb.SetCellStr(sheet, fmt.Sprintf("B%d", row), w.Name); err != nil {
			return nil, err
		}
		if err := wb.SetCellStr(sheet, fmt.Sprintf("C%d", row), w.IDNumber); err != nil {
			return nil, err
		}
		if err := wb.SetCellStr(sheet, fmt.Sprintf("D%d", row), w.BloodType); err != nil {
			return nil, err
		}
		birthdayCell := fmt.Sprintf("E%d", row)
		if err := wb.SetCellStr(sheet, birthdayCell, strings.ReplaceAll(w.Birthday, "-", "/")); err != nil {
			return nil, err
		}
		if err := wb.SetCellStyle(sheet, birthdayCell, birthdayCell, birthdayStyle); err != nil {
			return nil, err
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
