package excel

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lchen-dev/safety-portal/internal/domain"
)

// writeTestTemplate builds a minimal template workbook with the label text
// the real template carries in its header cells.
func writeTestTemplate(t *testing.T) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetCellStr(sheet, "C2", "申請人： "))
	require.NoError(t, wb.SetCellStr(sheet, "A3", "供應商名稱："))
	require.NoError(t, wb.SetCellStr(sheet, "C3", "負責人："))
	require.NoError(t, wb.SetCellStr(sheet, "A4", "聯絡人："))
	require.NoError(t, wb.SetCellStr(sheet, "C4", "電話："))

	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, wb.SaveAs(path))
	return path
}

func testRequest(workerCount int) Request {
	req := Request{
		ApplicantName: "王小明",
		VendorName:    "大安工程",
		VendorRep:     "李負責",
		ContactPerson: "陳聯絡",
		Phone:         "0912345678",
	}
	for i := 0; i < workerCount; i++ {
		req.Workers = append(req.Workers, domain.Worker{
			Name:      fmt.Sprintf("worker-%d", i+1),
			IDNumber:  fmt.Sprintf("A%09d", i+1),
			BloodType: "O",
			Birthday:  "1990-01-02",
		})
	}
	return req
}

func openWorkbook(t *testing.T, blob []byte) *excelize.File {
	t.Helper()
	wb, err := excelize.OpenReader(bytes.NewReader(blob))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestFillAppendsHeaderCells(t *testing.T) {
	filler := NewFiller(writeTestTemplate(t))

	blob, err := filler.Fill(testRequest(1))
	require.NoError(t, err)

	wb := openWorkbook(t, blob)
	sheet := wb.GetSheetName(0)

	applicant, err := wb.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "申請人：王小明", applicant, "existing label text is trimmed and kept")

	vendor, err := wb.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "供應商名稱：大安工程", vendor)

	phone, err := wb.GetCellValue(sheet, "C4")
	require.NoError(t, err)
	assert.Equal(t, "電話：0912345678", phone)
}

func TestFillWorkerRowsAndBirthday(t *testing.T) {
	filler := NewFiller(writeTestTemplate(t))

	blob, err := filler.Fill(testRequest(2))
	require.NoError(t, err)

	wb := openWorkbook(t, blob)
	sheet := wb.GetSheetName(0)

	name, _ := wb.GetCellValue(sheet, "B6")
	assert.Equal(t, "worker-1", name)
	idNumber, _ := wb.GetCellValue(sheet, "C6")
	assert.Equal(t, "A000000001", idNumber)
	blood, _ := wb.GetCellValue(sheet, "D6")
	assert.Equal(t, "O", blood)
	birthday, _ := wb.GetCellValue(sheet, "E6")
	assert.Equal(t, "1990/01/02", birthday, "birthday separators normalized to slashes")
	secondName, _ := wb.GetCellValue(sheet, "B7")
	assert.Equal(t, "worker-2", secondName)
}

func TestFillCapsWorkersAtTen(t *testing.T) {
	filler := NewFiller(writeTestTemplate(t))

	blob, err := filler.Fill(testRequest(12))
	require.NoError(t, err)

	wb := openWorkbook(t, blob)
	sheet := wb.GetSheetName(0)

	tenth, _ := wb.GetCellValue(sheet, "B15")
	assert.Equal(t, "worker-10", tenth)
	eleventh, _ := wb.GetCellValue(sheet, "B16")
	assert.Empty(t, eleventh, "workers beyond the 10th are dropped")
}

func TestFillTemplateMissing(t *testing.T) {
	filler := NewFiller(filepath.Join(t.TempDir(), "nope.xlsx"))

	_, err := filler.Fill(testRequest(0))
	assert.ErrorIs(t, err, ErrTemplateMissing)
}

func TestRequestFilename(t *testing.T) {
	assert.Equal(t, "ee-4411-11供應商工安認證申請表_王小明.xlsx", testRequest(0).Filename())
	assert.Equal(t, "ee-4411-11供應商工安認證申請表_Export.xlsx", Request{}.Filename())
}
