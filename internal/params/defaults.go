package params

import (
	"github.com/sells-group/bim-cli/internal/config"
	"github.com/sells-group/bim-cli/internal/model"
)

// Default returns the US base case.
func Default() *ParameterSet {
	us, _ := config.CountryByCode("US")
	return ForCountry(us)
}

// ForCountry builds a ParameterSet from a country preset: plan demographics
// from the preset, every cost scaled by the preset's multiplier. The result
// validates clean by construction.
func ForCountry(c config.Country) *ParameterSet {
	m := c.CostMultiplier

	return &ParameterSet{
		Country: c.Code,
		Population: Population{
			TotalPopulation:      c.Population,
			AdultFraction:        c.AdultFraction,
			Prevalence:           c.Prevalence,
			ResistantFraction:    c.ResistantFrac,
			UncontrolledFraction: 0.50,
			SeekingFraction:      0.80,
		},
		Market: Market{
			BaselineShares: map[model.Treatment]float64{
				model.TreatmentSpiro:      0.60,
				model.TreatmentEplerenone: 0.15,
				model.TreatmentNone:       0.25,
			},
			UptakeCurves: map[model.Scenario][]float64{
				model.ScenarioConservative: {0.05, 0.10, 0.15, 0.18, 0.20},
				model.ScenarioModerate:     {0.10, 0.20, 0.30, 0.35, 0.40},
				model.ScenarioOptimistic:   {0.15, 0.30, 0.45, 0.50, 0.55},
			},
			DisplacementWeights: map[model.Treatment]float64{
				model.TreatmentSpiro:      0.70,
				model.TreatmentEplerenone: 0.20,
				model.TreatmentNone:       0.10,
			},
		},
		Costs: Costs{
			Currency: c.Currency,
			Drug: map[model.Treatment]float64{
				model.TreatmentNew:        6_000.0 * m,
				model.TreatmentSpiro:      180.0 * m,
				model.TreatmentEplerenone: 1_800.0 * m,
				model.TreatmentNone:       0,
			},
			Monitoring: map[model.Treatment]float64{
				model.TreatmentNew:        180.0 * m,
				model.TreatmentSpiro:      240.0 * m,
				model.TreatmentEplerenone: 240.0 * m,
				model.TreatmentNone:       120.0 * m,
			},
			OfficeVisits: 300.0 * m,
			AdverseEvent: map[model.Treatment]float64{
				model.TreatmentNew:        100.0 * m,
				model.TreatmentSpiro:      300.0 * m,
				model.TreatmentEplerenone: 200.0 * m,
				model.TreatmentNone:       0,
			},
			Offset: map[model.Treatment]float64{
				model.TreatmentNew:        1_200.0 * m,
				model.TreatmentSpiro:      800.0 * m,
				model.TreatmentEplerenone: 600.0 * m,
				model.TreatmentNone:       0,
			},
		},
		Events: Events{
			// Untreated rates per patient-year from trial and registry data.
			BaseRates: map[model.EventType]float64{
				model.EventStroke:        0.018,
				model.EventMI:            0.014,
				model.EventHF:            0.035,
				model.EventCKD:           0.040,
				model.EventESRD:          0.008,
				model.EventCVDeath:       0.010,
				model.EventAllCauseDeath: 0.024,
			},
			RRR: map[model.EventType]map[model.Treatment]float64{
				model.EventStroke:        rrrRow(0.56, 0.33, 0.22),
				model.EventMI:            rrrRow(0.57, 0.36, 0.29),
				model.EventHF:            rrrRow(0.57, 0.37, 0.29),
				model.EventCKD:           rrrRow(0.50, 0.30, 0.25),
				model.EventESRD:          rrrRow(0.62, 0.38, 0.31),
				model.EventCVDeath:       rrrRow(0.60, 0.40, 0.30),
				model.EventAllCauseDeath: rrrRow(0.50, 0.33, 0.25),
			},
		},
		EventCosts: EventCosts{
			Acute: map[model.EventType]float64{
				model.EventStroke:        35_000.0 * m,
				model.EventMI:            28_000.0 * m,
				model.EventHF:            18_000.0 * m,
				model.EventCKD:           5_000.0 * m,
				model.EventESRD:          50_000.0 * m,
				model.EventCVDeath:       45_000.0 * m,
				model.EventAllCauseDeath: 35_000.0 * m,
			},
			FollowupAnnual: map[model.EventType]float64{
				model.EventStroke:        8_000.0 * m,
				model.EventMI:            5_000.0 * m,
				model.EventHF:            12_000.0 * m,
				model.EventCKD:           8_000.0 * m,
				model.EventESRD:          90_000.0 * m,
				model.EventCVDeath:       0,
				model.EventAllCauseDeath: 0,
			},
		},
		Persistence: Persistence{
			// Calibrated to observed year-1 discontinuation of roughly 15%,
			// 25%, and 20% respectively.
			Curves: map[model.Treatment]WeibullCurve{
				model.TreatmentNew:        {Shape: 0.80, Scale: 0.022},
				model.TreatmentSpiro:      {Shape: 0.85, Scale: 0.035},
				model.TreatmentEplerenone: {Shape: 0.85, Scale: 0.027},
			},
		},
		Subgroups:   defaultSubgroups(),
		Sensitivity: defaultSensitivity(m),
		Analysis: Analysis{
			HorizonYears:       5,
			Scenario:           model.ScenarioModerate,
			IncludeOffsets:     true,
			IncludePersistence: true,
			IncludeEvents:      true,
		},
	}
}

// rrrRow builds a per-treatment RRR map with the untreated arm at zero.
func rrrRow(newTherapy, spiro, eplerenone float64) map[model.Treatment]float64 {
	return map[model.Treatment]float64{
		model.TreatmentNew:        newTherapy,
		model.TreatmentSpiro:      spiro,
		model.TreatmentEplerenone: eplerenone,
		model.TreatmentNone:       0,
	}
}

func defaultSubgroups() Subgroups {
	return Subgroups{
		Dimensions: map[model.SubgroupDimension][]SubgroupCategory{
			model.DimensionAge: {
				{
					Code: "age_lt65", Label: "Age <65", Proportion: 0.35,
					RiskMultipliers:  riskRow(0.6, 0.7, 0.5, 0.7, 0.4),
					EfficacyModifier: 1.10,
				},
				{
					Code: "age_65_74", Label: "Age 65-74", Proportion: 0.40,
					RiskMultipliers:  riskRow(1.0, 1.0, 1.0, 1.0, 1.0),
					EfficacyModifier: 1.0,
				},
				{
					Code: "age_75plus", Label: "Age 75+", Proportion: 0.25,
					RiskMultipliers:  riskRow(1.8, 1.5, 2.0, 1.5, 2.5),
					EfficacyModifier: 0.90,
				},
			},
			model.DimensionCKDStage: {
				{
					Code: "ckd_1_2", Label: "CKD Stage 1-2 (eGFR>=60)", Proportion: 0.50,
					RiskMultipliers:  riskRow(0.8, 0.8, 0.7, 0.5, 0.7),
					EfficacyModifier: 1.0,
				},
				{
					Code: "ckd_3", Label: "CKD Stage 3 (eGFR 30-59)", Proportion: 0.35,
					RiskMultipliers:  riskRow(1.2, 1.3, 1.4, 1.5, 1.4),
					EfficacyModifier: 1.0,
				},
				{
					Code: "ckd_4", Label: "CKD Stage 4 (eGFR 15-29)", Proportion: 0.15,
					RiskMultipliers:  riskRow(1.8, 1.8, 2.2, 3.0, 2.5),
					EfficacyModifier: 0.85,
				},
			},
			model.DimensionPriorCV: {
				{
					Code: "no_prior_cv", Label: "No Prior CV Events", Proportion: 0.70,
					RiskMultipliers:  riskRow(0.7, 0.6, 0.6, 0.9, 0.6),
					EfficacyModifier: 1.0,
				},
				{
					Code: "prior_cv", Label: "Prior CV Events", Proportion: 0.30,
					RiskMultipliers:  riskRow(2.0, 2.5, 2.5, 1.3, 2.5),
					EfficacyModifier: 1.10,
				},
			},
			model.DimensionDiabetes: {
				{
					Code: "no_diabetes", Label: "No Diabetes", Proportion: 0.55,
					RiskMultipliers:  riskRow(0.8, 0.7, 0.7, 0.6, 0.7),
					EfficacyModifier: 1.0,
				},
				{
					Code: "with_diabetes", Label: "With Diabetes", Proportion: 0.45,
					RiskMultipliers:  riskRow(1.3, 1.5, 1.5, 1.8, 1.5),
					EfficacyModifier: 1.05,
				},
			},
		},
	}
}

// riskRow expands the five published multipliers (stroke, MI, HF, renal,
// death) onto the full event set: the renal multiplier covers CKD
// progression and ESRD, the death multiplier both death types.
func riskRow(stroke, mi, hf, renal, death float64) map[model.EventType]float64 {
	return map[model.EventType]float64{
		model.EventStroke:        stroke,
		model.EventMI:            mi,
		model.EventHF:            hf,
		model.EventCKD:           renal,
		model.EventESRD:          renal,
		model.EventCVDeath:       death,
		model.EventAllCauseDeath: death,
	}
}

// defaultSensitivity scales cost-denominated distribution means by the
// country cost multiplier so PSA draws stay in local currency.
func defaultSensitivity(m float64) Sensitivity {
	return Sensitivity{
		Tornado: []TornadoSpec{
			{Parameter: ParamDrugCostNew, LowMul: 0.75, HighMul: 1.25},
			{Parameter: ParamResistantFraction, LowMul: 0.75, HighMul: 1.25},
			{Parameter: ParamSeekingFraction, LowMul: 0.80, HighMul: 1.20},
			{Parameter: ParamOffsetNew, LowMul: 0.50, HighMul: 1.50},
			{Parameter: ParamDisplacementSpiro, LowMul: 0.80, HighMul: 1.20},
			{Parameter: ParamPrevalence, LowMul: 0.85, HighMul: 1.15},
			{Parameter: ParamPersistScaleNew, LowMul: 0.50, HighMul: 1.50},
		},
		Distributions: []DistributionSpec{
			{Parameter: ParamDrugCostNew, Kind: DistLognormal, Mean: 6_000 * m, StdDev: 600 * m},
			{Parameter: ParamDrugCostSpiro, Kind: DistLognormal, Mean: 180 * m, StdDev: 20 * m},
			{Parameter: ParamResistantFraction, Kind: DistBeta, Mean: 0.12, StdDev: 0.03},
			{Parameter: ParamSeekingFraction, Kind: DistBeta, Mean: 0.80, StdDev: 0.04},
			{Parameter: ParamBaseRateStroke, Kind: DistLognormal, Mean: 0.018, StdDev: 0.004},
			{Parameter: ParamBaseRateMI, Kind: DistLognormal, Mean: 0.014, StdDev: 0.003},
			{Parameter: ParamBaseRateHF, Kind: DistLognormal, Mean: 0.035, StdDev: 0.008},
		},
		Iterations: 1000,
		Confidence: 0.95,
	}
}
