package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"hrpulse/internal/attribution"
	"hrpulse/internal/pipeline"
)

// Sheet names of the generated workbook.
const (
	sheetProfiles = "Employees"
	sheetRanking  = "Risk Ranking"
	sheetDrivers  = "Top Drivers"
)

// ReportWriter writes the analysis workbook into the output directory.
type ReportWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewReportWriter creates a report writer rooted at outputDir.
func NewReportWriter(outputDir string, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{outputDir: outputDir, logger: logger}
}

// Report is everything that goes into one workbook.
type Report struct {
	Profiles []pipeline.EmployeeProfile
	Ranking  []attribution.RiskEntry
	Drivers  []attribution.FeatureWeight
	Base     float64
}

// Write renders the workbook and returns its path.
func (w *ReportWriter) Write(ctx context.Context, report *Report) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeProfiles(f, report.Profiles); err != nil {
		return "", err
	}
	if err := w.writeRanking(f, report.Ranking); err != nil {
		return "", err
	}
	if err := w.writeDrivers(f, report.Drivers, report.Base); err != nil {
		return "", err
	}

	// Drop the default sheet so the workbook opens on the employee list.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to remove default sheet: %w", err)
	}

	name := fmt.Sprintf("attrition_report_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(w.outputDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	w.logger.InfoContext(ctx, "report written",
		slog.String("path", path),
		slog.Int("employees", len(report.Profiles)),
		slog.Int("ranked", len(report.Ranking)))
	return path, nil
}

func (w *ReportWriter) writeProfiles(f *excelize.File, profiles []pipeline.EmployeeProfile) error {
	if _, err := f.NewSheet(sheetProfiles); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetProfiles, err)
	}
	headers := []interface{}{
		"Employee ID", "Name", "Hire Date", "Division", "Office",
		"Job Family", "Job Subfamily", "Annual Salary", "School",
		"Major", "Experienced Hire", "Days in Department", "Location",
	}
	if err := f.SetSheetRow(sheetProfiles, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, p := range profiles {
		row := []interface{}{
			p.EmployeeID, p.Name, p.HireDate.Format("2006-01-02"),
			p.Division, p.Office, p.JobFamily, p.JobSubfamily,
			numberOrNoData(p.ContractAnnualSalary), p.SchoolName, p.MajorCategory,
			p.ExperiencedHire, numberOrNoData(p.DaysInDepartment), p.WorkLocation,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetProfiles, cell, &row); err != nil {
			return fmt.Errorf("failed to write profile row %d: %w", i, err)
		}
	}
	return nil
}

// numberOrNoData renders an optional profile number; absent values
// become a "no data" cell rather than a zero.
func numberOrNoData(v *float64) interface{} {
	if v == nil {
		return "no data"
	}
	return *v
}

func (w *ReportWriter) writeRanking(f *excelize.File, ranking []attribution.RiskEntry) error {
	if _, err := f.NewSheet(sheetRanking); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetRanking, err)
	}
	headers := []interface{}{"Rank", "Employee ID", "Risk %"}
	if err := f.SetSheetRow(sheetRanking, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, entry := range ranking {
		row := []interface{}{i + 1, entry.EmployeeID, entry.Risk}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetRanking, cell, &row); err != nil {
			return fmt.Errorf("failed to write ranking row %d: %w", i, err)
		}
	}
	return nil
}

func (w *ReportWriter) writeDrivers(f *excelize.File, drivers []attribution.FeatureWeight, base float64) error {
	if _, err := f.NewSheet(sheetDrivers); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetDrivers, err)
	}
	headers := []interface{}{"Feature", "Mean |Contribution| (pp)"}
	if err := f.SetSheetRow(sheetDrivers, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, d := range drivers {
		row := []interface{}{d.Feature, d.Value}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetDrivers, cell, &row); err != nil {
			return fmt.Errorf("failed to write driver row %d: %w", i, err)
		}
	}
	baseRow := []interface{}{"(base rate)", base}
	cell := fmt.Sprintf("A%d", len(drivers)+2)
	if err := f.SetSheetRow(sheetDrivers, cell, &baseRow); err != nil {
		return fmt.Errorf("failed to write base row: %w", err)
	}
	return nil
}
