package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safety_portal_submissions_total",
		Help: "Applications submitted through the public form.",
	})
	csvExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safety_portal_csv_exports_total",
		Help: "CSV backup downloads.",
	})
	csvImportItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safety_portal_csv_import_items_total",
		Help: "Applications written during CSV restores, by result.",
	}, []string{"result"})
	excelExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safety_portal_excel_exports_total",
		Help: "Filled certification workbooks served.",
	})
)
