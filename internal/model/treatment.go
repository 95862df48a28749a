// Package model holds the shared value types for the budget impact model:
// treatment and event enumerations, per-year and per-run results, and the
// stored analysis record.
package model

// Treatment identifies one arm of the 4th-line antihypertensive market.
type Treatment string

const (
	// TreatmentNew is the entering therapy whose budget impact is modeled.
	TreatmentNew Treatment = "new_therapy"
	// TreatmentSpiro is generic spironolactone, the dominant incumbent.
	TreatmentSpiro Treatment = "spironolactone"
	// TreatmentEplerenone is the branded alternative MRA.
	TreatmentEplerenone Treatment = "eplerenone"
	// TreatmentNone is the untreated (no 4th-line therapy) pool.
	TreatmentNone Treatment = "no_treatment"
)

// Treatments lists every market arm in display order. Per-treatment tables
// must carry an entry for each member.
var Treatments = []Treatment{TreatmentNew, TreatmentSpiro, TreatmentEplerenone, TreatmentNone}

// Incumbents lists the arms that exist before the new therapy launches,
// i.e. the arms the new therapy displaces share from.
var Incumbents = []Treatment{TreatmentSpiro, TreatmentEplerenone, TreatmentNone}

// Label returns a human-readable name for CLI tables and workbook sheets.
func (t Treatment) Label() string {
	switch t {
	case TreatmentNew:
		return "New Therapy"
	case TreatmentSpiro:
		return "Spironolactone"
	case TreatmentEplerenone:
		return "Eplerenone"
	case TreatmentNone:
		return "No 4th-Line"
	default:
		return string(t)
	}
}

// EventType identifies a clinical event tracked by the outcomes model.
type EventType string

const (
	EventStroke        EventType = "stroke"
	EventMI            EventType = "mi"
	EventHF            EventType = "hf"
	EventCKD           EventType = "ckd_progression"
	EventESRD          EventType = "esrd"
	EventCVDeath       EventType = "cv_death"
	EventAllCauseDeath EventType = "all_cause_death"
)

// EventTypes lists every tracked event in display order.
var EventTypes = []EventType{
	EventStroke, EventMI, EventHF, EventCKD, EventESRD, EventCVDeath, EventAllCauseDeath,
}

// Label returns a human-readable name for the event type.
func (e EventType) Label() string {
	switch e {
	case EventStroke:
		return "Stroke"
	case EventMI:
		return "Myocardial Infarction"
	case EventHF:
		return "HF Hospitalization"
	case EventCKD:
		return "CKD Progression"
	case EventESRD:
		return "ESRD"
	case EventCVDeath:
		return "CV Death"
	case EventAllCauseDeath:
		return "All-Cause Death"
	default:
		return string(e)
	}
}

// Scenario selects an uptake curve for the new therapy.
type Scenario string

const (
	ScenarioConservative Scenario = "conservative"
	ScenarioModerate     Scenario = "moderate"
	ScenarioOptimistic   Scenario = "optimistic"
)

// Scenarios lists the built-in uptake scenarios.
var Scenarios = []Scenario{ScenarioConservative, ScenarioModerate, ScenarioOptimistic}

// SubgroupDimension identifies one stratification axis. Dimensions are
// analyzed independently against the full eligible population; the model
// does not cross-tabulate them.
type SubgroupDimension string

const (
	DimensionAge      SubgroupDimension = "age"
	DimensionCKDStage SubgroupDimension = "ckd_stage"
	DimensionPriorCV  SubgroupDimension = "prior_cv"
	DimensionDiabetes SubgroupDimension = "diabetes"
)

// SubgroupDimensions lists the stratification axes in display order.
var SubgroupDimensions = []SubgroupDimension{
	DimensionAge, DimensionCKDStage, DimensionPriorCV, DimensionDiabetes,
}
