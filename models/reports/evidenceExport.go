package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/veritaxlabs/pintae_backend/mapping"
	"github.com/veritaxlabs/pintae_backend/models"
	"github.com/veritaxlabs/pintae_backend/registry"
)

// Evidence workbook sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetExceptions = "Exceptions"
	SheetCoverage   = "Coverage"
	SheetControls   = "Controls"
)

// EvidencePack is everything one evidence workbook renders. Coverage is
// optional; runs executed without a mapping set leave it nil and the
// coverage sheet says so.
type EvidencePack struct {
	Run          *models.CheckRun
	Exceptions   []models.Exception
	EntityScores []models.EntityScore
	Coverage     *mapping.RegistryCoverageResult
}

// BuildEvidenceWorkbook renders the pack into a four-sheet workbook. The
// controls sheet comes from the static registries, not the pack.
func BuildEvidenceWorkbook(pack EvidencePack) (*excelize.File, error) {
	if pack.Run == nil {
		return nil, fmt.Errorf("evidence pack requires a check run")
	}

	f := excelize.NewFile()
	for _, name := range []string{SheetSummary, SheetExceptions, SheetCoverage, SheetControls} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	writeSummarySheet(f, pack)
	writeExceptionsSheet(f, pack.Exceptions)
	writeCoverageSheet(f, pack.Coverage)
	writeControlsSheet(f)
	return f, nil
}

// ExportEvidenceXlsx builds the workbook and saves it to filename.
func ExportEvidenceXlsx(pack EvidencePack, filename string) error {
	f, err := BuildEvidenceWorkbook(pack)
	if err != nil {
		return err
	}
	return f.SaveAs(filename)
}

// WriteEvidenceXlsx builds the workbook and streams it, for HTTP handlers.
func WriteEvidenceXlsx(w io.Writer, pack EvidencePack) error {
	f, err := BuildEvidenceWorkbook(pack)
	if err != nil {
		return err
	}
	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, pack EvidencePack) {
	run := pack.Run

	rows := [][2]interface{}{
		{"Run Id", run.Id},
		{"Direction", string(run.Direction)},
		{"Started At", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Completed At", run.CompletedAt.Format("2006-01-02 15:04:05 MST")},
		{"Invoices", run.TotalInvoices},
		{"Exceptions", run.TotalExceptions},
		{"Critical", run.CriticalCount},
		{"High", run.HighCount},
		{"Medium", run.MediumCount},
		{"Low", run.LowCount},
		{"Compliance Score", run.Score},
		{"Registry Version", registry.RegistryVersion},
	}
	if run.CorrelationId != "" {
		rows = append(rows, [2]interface{}{"Correlation Id", run.CorrelationId})
	}
	for i, r := range rows {
		f.SetCellValue(SheetSummary, "A"+fmt.Sprint(i+1), r[0])
		f.SetCellValue(SheetSummary, "B"+fmt.Sprint(i+1), r[1])
	}

	// Entity breakdown below the run facts, separated by a blank row.
	rowNo := len(rows) + 2
	f.SetCellValue(SheetSummary, "A"+fmt.Sprint(rowNo), "Entity Kind")
	f.SetCellValue(SheetSummary, "B"+fmt.Sprint(rowNo), "Entity Id")
	f.SetCellValue(SheetSummary, "C"+fmt.Sprint(rowNo), "Entity Name")
	f.SetCellValue(SheetSummary, "D"+fmt.Sprint(rowNo), "Exceptions")
	f.SetCellValue(SheetSummary, "E"+fmt.Sprint(rowNo), "Score")
	f.SetCellValue(SheetSummary, "F"+fmt.Sprint(rowNo), "Invoices Covered")
	for _, es := range pack.EntityScores {
		rowNo++
		f.SetCellValue(SheetSummary, "A"+fmt.Sprint(rowNo), string(es.EntityKind))
		f.SetCellValue(SheetSummary, "B"+fmt.Sprint(rowNo), es.EntityId)
		f.SetCellValue(SheetSummary, "C"+fmt.Sprint(rowNo), es.EntityName)
		f.SetCellValue(SheetSummary, "D"+fmt.Sprint(rowNo), es.ExceptionCount)
		f.SetCellValue(SheetSummary, "E"+fmt.Sprint(rowNo), es.Score)
		f.SetCellValue(SheetSummary, "F"+fmt.Sprint(rowNo), es.InvoicesCovered)
	}
}

func writeExceptionsSheet(f *excelize.File, exceptions []models.Exception) {
	f.SetCellValue(SheetExceptions, "A1", "Rule Id")
	f.SetCellValue(SheetExceptions, "B1", "Severity")
	f.SetCellValue(SheetExceptions, "C1", "Field")
	f.SetCellValue(SheetExceptions, "D1", "Message")
	f.SetCellValue(SheetExceptions, "E1", "Invoice Id")
	f.SetCellValue(SheetExceptions, "F1", "Direction")

	for i, ex := range exceptions {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(SheetExceptions, "A"+rowNo, ex.RuleId)
		f.SetCellValue(SheetExceptions, "B"+rowNo, string(ex.Severity))
		f.SetCellValue(SheetExceptions, "C"+rowNo, ex.Field)
		f.SetCellValue(SheetExceptions, "D"+rowNo, ex.Message)
		f.SetCellValue(SheetExceptions, "E"+rowNo, ex.InvoiceId)
		f.SetCellValue(SheetExceptions, "F"+rowNo, string(ex.Direction))
	}
}

func writeCoverageSheet(f *excelize.File, cov *mapping.RegistryCoverageResult) {
	if cov == nil {
		f.SetCellValue(SheetCoverage, "A1", "No mapping set analyzed for this run")
		return
	}

	rows := [][2]interface{}{
		{"Registry Version", cov.RegistryVersion},
		{"Mandatory Mapped", fmt.Sprintf("%d / %d", cov.MandatoryMapped, cov.MandatoryTotal)},
		{"Conditional Mapped", fmt.Sprintf("%d / %d", cov.ConditionalMapped, cov.ConditionalTotal)},
		{"Overall Mapped", fmt.Sprintf("%d / %d", cov.OverallMapped, cov.OverallTotal)},
		{"Mandatory Coverage %", cov.MandatoryCoverage},
		{"Overall Coverage %", cov.OverallCoverage},
		{"Ready For Activation", cov.IsReadyForActivation},
	}
	for i, r := range rows {
		f.SetCellValue(SheetCoverage, "A"+fmt.Sprint(i+1), r[0])
		f.SetCellValue(SheetCoverage, "B"+fmt.Sprint(i+1), r[1])
	}

	rowNo := len(rows) + 2
	f.SetCellValue(SheetCoverage, "A"+fmt.Sprint(rowNo), "Missing Mandatory DRs")
	for _, drId := range cov.MissingMandatoryDRs {
		rowNo++
		f.SetCellValue(SheetCoverage, "A"+fmt.Sprint(rowNo), drId)
		if field, ok := registry.FieldByIBT(drId); ok {
			f.SetCellValue(SheetCoverage, "B"+fmt.Sprint(rowNo), field.Name)
		}
	}
}

func writeControlsSheet(f *excelize.File) {
	f.SetCellValue(SheetControls, "A1", "Control Id")
	f.SetCellValue(SheetControls, "B1", "Name")
	f.SetCellValue(SheetControls, "C1", "Type")
	f.SetCellValue(SheetControls, "D1", "Description")
	f.SetCellValue(SheetControls, "E1", "Covered Rules")
	f.SetCellValue(SheetControls, "F1", "Covered DRs")

	reg := registry.GetControlsRegistry()
	for i, ctl := range reg.Controls {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(SheetControls, "A"+rowNo, ctl.Id)
		f.SetCellValue(SheetControls, "B"+rowNo, ctl.Name)
		f.SetCellValue(SheetControls, "C"+rowNo, string(ctl.ControlType))
		f.SetCellValue(SheetControls, "D"+rowNo, ctl.Description)
		f.SetCellValue(SheetControls, "E"+rowNo, strings.Join(ctl.CoveredRules, ", "))
		f.SetCellValue(SheetControls, "F"+rowNo, strings.Join(ctl.CoveredDRIds, ", "))
	}

	covered := make(map[string]bool)
	for _, drId := range reg.CoveredDRIds() {
		covered[drId] = true
	}
	rowNo := len(reg.Controls) + 3
	f.SetCellValue(SheetControls, "A"+fmt.Sprint(rowNo), "Uncovered DRs")
	for _, field := range registry.UC1Fields() {
		if covered[field.IBTReference] {
			continue
		}
		rowNo++
		f.SetCellValue(SheetControls, "A"+fmt.Sprint(rowNo), field.IBTReference)
		f.SetCellValue(SheetControls, "B"+fmt.Sprint(rowNo), field.Name)
	}
}
