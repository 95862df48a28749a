// Package report renders analysis results to an xlsx workbook for payer
// review: a summary sheet plus per-section detail sheets. Sections with no
// data are simply omitted.
package report

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/model"
)

// Workbook assembles the export. Result is required; the remaining
// sections are optional.
type Workbook struct {
	Result    *model.RunResult
	Subgroups []model.SubgroupResult
	Tornado   []model.TornadoRow
	PSA       *model.PSASummary
}

// Write renders the workbook to path.
func (w *Workbook) Write(path string) error {
	if w.Result == nil {
		return eris.New("report: workbook needs a run result")
	}

	f := xlsx.NewFile()

	if err := w.addSummary(f); err != nil {
		return err
	}
	if err := w.addYearly(f); err != nil {
		return err
	}
	if err := w.addCascade(f); err != nil {
		return err
	}
	if len(w.Subgroups) > 0 {
		if err := w.addSubgroups(f); err != nil {
			return err
		}
	}
	if len(w.Tornado) > 0 {
		if err := w.addTornado(f); err != nil {
			return err
		}
	}
	if w.PSA != nil {
		if err := w.addPSA(f); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	zap.L().Info("report: workbook written", zap.String("path", path))
	return nil
}

func (w *Workbook) addSummary(f *xlsx.File) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	r := w.Result
	kv := [][2]any{
		{"Country", r.Country},
		{"Scenario", string(r.Scenario)},
		{"Horizon (years)", r.Horizon},
		{"Eligible patients", r.Eligible},
		{"Total budget impact", r.TotalBudgetImpact},
		{"Average annual impact", r.AverageAnnualImpact},
		{"Cost per treated patient", r.CostPerNewPatient},
		{"Incremental cost per treated patient", r.IncrementalCostPerNewPatient},
		{"Total events avoided", r.TotalEventsAvoided},
		{"Total event cost offset", r.TotalEventOffset},
	}
	for _, pair := range kv {
		row := sheet.AddRow()
		row.AddCell().SetString(pair[0].(string))
		setCell(row.AddCell(), pair[1])
	}

	if n := len(allWarnings(r)); n > 0 {
		row := sheet.AddRow()
		row.AddCell().SetString("Warnings")
		row.AddCell().SetInt(n)
		for _, warn := range allWarnings(r) {
			row = sheet.AddRow()
			row.AddCell().SetString(string(warn.Kind))
			row.AddCell().SetString(warn.Message)
		}
	}
	return nil
}

func (w *Workbook) addYearly(f *xlsx.File) error {
	sheet, err := f.AddSheet("Yearly")
	if err != nil {
		return eris.Wrap(err, "report: add yearly sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Year", "New therapy share", "New therapy patients",
		"New world cost", "Current world cost",
		"Budget impact", "Cumulative impact", "PMPM",
		"Events avoided", "Event cost offset",
	} {
		header.AddCell().SetString(h)
	}

	cumulative := 0.0
	for _, yr := range w.Result.Years {
		cumulative += yr.BudgetImpact

		var avoided float64
		for _, a := range yr.EventsAvoided {
			avoided += a
		}

		row := sheet.AddRow()
		row.AddCell().SetInt(yr.Year)
		row.AddCell().SetFloat(yr.NewWorldShares[model.TreatmentNew])
		row.AddCell().SetInt(yr.NewWorldPatients[model.TreatmentNew])
		row.AddCell().SetFloat(yr.CostNewWorld)
		row.AddCell().SetFloat(yr.CostCurrentWorld)
		row.AddCell().SetFloat(yr.BudgetImpact)
		row.AddCell().SetFloat(cumulative)
		row.AddCell().SetFloat(yr.PMPM)
		row.AddCell().SetFloat(avoided)
		row.AddCell().SetFloat(yr.EventOffset)
	}
	return nil
}

func (w *Workbook) addCascade(f *xlsx.File) error {
	sheet, err := f.AddSheet("Cascade")
	if err != nil {
		return eris.Wrap(err, "report: add cascade sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Step", "Fraction", "Patients"} {
		header.AddCell().SetString(h)
	}
	for _, step := range w.Result.Cascade {
		row := sheet.AddRow()
		row.AddCell().SetString(step.Name)
		row.AddCell().SetFloat(step.Fraction)
		row.AddCell().SetInt(step.Count)
	}
	return nil
}

func (w *Workbook) addSubgroups(f *xlsx.File) error {
	sheet, err := f.AddSheet("Subgroups")
	if err != nil {
		return eris.Wrap(err, "report: add subgroups sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Dimension", "Category", "Proportion", "Patients",
		"Total impact", "Impact per patient", "Events avoided",
	} {
		header.AddCell().SetString(h)
	}
	for _, sg := range w.Subgroups {
		row := sheet.AddRow()
		row.AddCell().SetString(string(sg.Dimension))
		row.AddCell().SetString(sg.Label)
		row.AddCell().SetFloat(sg.Proportion)
		row.AddCell().SetInt(sg.Patients)
		row.AddCell().SetFloat(sg.Result.TotalBudgetImpact)
		row.AddCell().SetFloat(sg.ImpactPerPatient)
		row.AddCell().SetFloat(sg.Result.TotalEventsAvoided)
	}
	return nil
}

func (w *Workbook) addTornado(f *xlsx.File) error {
	sheet, err := f.AddSheet("Tornado")
	if err != nil {
		return eris.Wrap(err, "report: add tornado sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Parameter", "Base value", "Low value", "High value",
		"Impact at low", "Impact at high", "Swing",
	} {
		header.AddCell().SetString(h)
	}
	for _, row := range w.Tornado {
		r := sheet.AddRow()
		r.AddCell().SetString(row.Label)
		r.AddCell().SetFloat(row.BaseValue)
		r.AddCell().SetFloat(row.LowValue)
		r.AddCell().SetFloat(row.HighValue)
		r.AddCell().SetFloat(row.ImpactAtLow)
		r.AddCell().SetFloat(row.ImpactAtHigh)
		r.AddCell().SetFloat(row.Swing)
	}
	return nil
}

func (w *Workbook) addPSA(f *xlsx.File) error {
	sheet, err := f.AddSheet("PSA")
	if err != nil {
		return eris.Wrap(err, "report: add psa sheet")
	}

	p := w.PSA
	interval := fmt.Sprintf("%.0f%% interval", p.Confidence*100)
	kv := [][2]any{
		{"Iterations", p.Iterations},
		{"Seed", int(p.Seed)},
		{"Mean impact", p.Mean},
		{"Median impact", p.Median},
		{"Std deviation", p.StdDev},
		{interval + " lower", p.Lower},
		{interval + " upper", p.Upper},
		{"Probability of budget increase", p.ProbIncrease},
		{"Mean PMPM", p.MeanPMPM},
	}
	for _, pair := range kv {
		row := sheet.AddRow()
		row.AddCell().SetString(pair[0].(string))
		setCell(row.AddCell(), pair[1])
	}

	if len(p.Samples) > 0 {
		sheet.AddRow()
		header := sheet.AddRow()
		for _, h := range []string{"Iteration", "Budget impact", "PMPM", "Clamped draws"} {
			header.AddCell().SetString(h)
		}
		for _, sample := range p.Samples {
			row := sheet.AddRow()
			row.AddCell().SetInt(sample.Iteration)
			row.AddCell().SetFloat(sample.BudgetImpact)
			row.AddCell().SetFloat(sample.PMPM)
			row.AddCell().SetInt(len(sample.Clamps))
		}
	}
	return nil
}

func setCell(cell *xlsx.Cell, v any) {
	switch val := v.(type) {
	case string:
		cell.SetString(val)
	case int:
		cell.SetInt(val)
	case float64:
		cell.SetFloat(val)
	default:
		cell.SetValue(val)
	}
}

// allWarnings returns the run-level warning aggregate, which already
// carries every year's warnings in order.
func allWarnings(r *model.RunResult) []model.Warning {
	return append([]model.Warning(nil), r.Warnings...)
}
