package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lchen-dev/safety-portal/internal/excel"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleApiExportExcel fills the certification template with the posted
// application and streams back the workbook. A missing template, like any
// other failure, is reported as 500 with a JSON error body.
func (s *server) handleApiExportExcel(w http.ResponseWriter, r *http.Request) {
	var req excel.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	blob, err := s.filler.Fill(req)
	if err != nil {
		if errors.Is(err, excel.ErrTemplateMissing) {
			s.logger.Error("excel template missing", "path", s.filler.TemplatePath)
			jsonResponse(w, http.StatusInternalServerError, errorResponse{Error: "Template file not found"})
			return
		}
		s.logger.Error("failed to fill excel template", "error", err)
		jsonResponse(w, http.StatusInternalServerError, errorResponse{Error: "Failed to generate excel"})
		return
	}

	excelExportsTotal.Inc()
	encodedFilename := url.PathEscape(req.Filename())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%v"; filename*=UTF-8''%v`, encodedFilename, encodedFilename))
	w.Write(blob)
}

func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
