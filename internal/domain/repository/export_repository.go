package repository

import (
	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
)

// ExportRepository writes a composed summary report to disk in one of the
// supported formats.
type ExportRepository interface {
	ExportSummaryToCSV(summary *entity.Summary, filename, outputDir string) (string, error)
	ExportSummaryToJSON(summary *entity.Summary, filename, outputDir string) (string, error)
	ExportSummaryToPDF(summary *entity.Summary, filename, outputDir string) (string, error)
}
