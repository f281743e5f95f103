package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/domain/repository"
)

// ExportRepositoryImpl writes summary reports to CSV, JSON or PDF files.
type ExportRepositoryImpl struct{}

// NewExportRepository creates a new ExportRepository implementation.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

func (r *ExportRepositoryImpl) ExportSummaryToCSV(summary *entity.Summary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"Section", "Item", "Value"})
	writer.Write([]string{"Current Month", "Total Cost", fmt.Sprintf("$%.2f", summary.CurrentMonth.TotalCost)})
	if summary.CurrentMonth.AvgDailyCost != nil {
		writer.Write([]string{"Current Month", "Avg Daily Cost", fmt.Sprintf("$%.2f", *summary.CurrentMonth.AvgDailyCost)})
	}
	if summary.Forecast != nil {
		writer.Write([]string{"Forecast", fmt.Sprintf("Next %d days", summary.Forecast.Days), fmt.Sprintf("$%.2f", summary.Forecast.TotalForecast)})
	}
	for _, svc := range summary.Breakdown.Entries {
		writer.Write([]string{"Cost By Service", svc.ServiceName, fmt.Sprintf("$%.2f", svc.Cost)})
	}
	for _, rec := range summary.Recommendations {
		writer.Write([]string{
			"Recommendation",
			fmt.Sprintf("[%s] %s", rec.Severity, rec.Title),
			fmt.Sprintf("$%.2f/month (%s)", rec.PotentialSavings, strings.Join(rec.ResourceIDs, " ")),
		})
	}
	writer.Write([]string{"Optimization", "Potential Monthly Savings", fmt.Sprintf("$%.2f", summary.AggregatePotentialMonthlySavings)})
	if len(summary.UnavailableSections) > 0 {
		writer.Write([]string{"Warnings", "Unavailable Sections", strings.Join(summary.UnavailableSections, " ")})
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportSummaryToJSON(summary *entity.Summary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshaling summary to JSON: %w", err)
	}

	if err := os.WriteFile(outputFilename, data, 0644); err != nil {
		return "", fmt.Errorf("error writing JSON file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportSummaryToPDF(summary *entity.Summary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "AWS Cost Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Current Month")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total cost: $%.2f", summary.CurrentMonth.TotalCost))
	pdf.Ln(6)
	if summary.CurrentMonth.AvgDailyCost != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Average daily cost: $%.2f", *summary.CurrentMonth.AvgDailyCost))
		pdf.Ln(6)
	}
	if summary.Forecast != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Forecast next %d days: $%.2f", summary.Forecast.Days, summary.Forecast.TotalForecast))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Cost By Service")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, svc := range summary.CurrentMonth.TopServices {
		pdf.Cell(0, 6, fmt.Sprintf("%s: $%.2f", svc.ServiceName, svc.Cost))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Recommendations (potential savings $%.2f/month)", summary.AggregatePotentialMonthlySavings))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, rec := range summary.Recommendations {
		pdf.MultiCell(0, 6, fmt.Sprintf("[%s] %s - %s Action: %s", rec.Severity, rec.Title, rec.Description, rec.Action), "", "L", false)
		pdf.Ln(2)
	}

	if len(summary.UnavailableSections) > 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 6, "Unavailable sections: "+strings.Join(summary.UnavailableSections, ", "), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// generateFilename builds "<dir>/<base>-<date>.<ext>", sanitizing the base
// name.
func generateFilename(base, outputDir, ext string) (string, error) {
	if base == "" {
		base = "cost-report"
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, base)

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return "", fmt.Errorf("error creating output directory: %w", err)
		}
	}

	name := fmt.Sprintf("%s-%s.%s", base, time.Now().Format("2006-01-02"), ext)
	return filepath.Join(outputDir, name), nil
}
