package config

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Country is an immutable preset of plan demographics and cost scaling for
// one market. Presets are passed into parameter construction; nothing here
// is process-global or mutable.
type Country struct {
	Code           string  `yaml:"code" json:"code"`
	Name           string  `yaml:"name" json:"name"`
	Currency       string  `yaml:"currency" json:"currency"`
	CurrencySymbol string  `yaml:"currency_symbol" json:"currency_symbol"`
	Population     int     `yaml:"population" json:"population"`
	AdultFraction  float64 `yaml:"adult_fraction" json:"adult_fraction"`
	Prevalence     float64 `yaml:"prevalence" json:"prevalence"`
	ResistantFrac  float64 `yaml:"resistant_fraction" json:"resistant_fraction"`

	// CostMultiplier scales every US-denominated default cost.
	CostMultiplier float64 `yaml:"cost_multiplier" json:"cost_multiplier"`
	// USDExchange converts local currency to USD for cross-market reporting.
	USDExchange float64 `yaml:"usd_exchange" json:"usd_exchange"`
}

var countries = map[string]Country{
	"US": {
		Code: "US", Name: "United States", Currency: "USD", CurrencySymbol: "$",
		Population: 1_000_000, AdultFraction: 0.78, Prevalence: 0.30, ResistantFrac: 0.12,
		CostMultiplier: 1.0, USDExchange: 1.0,
	},
	"UK": {
		Code: "UK", Name: "United Kingdom", Currency: "GBP", CurrencySymbol: "£",
		Population: 500_000, AdultFraction: 0.80, Prevalence: 0.28, ResistantFrac: 0.10,
		CostMultiplier: 0.40, USDExchange: 1.27,
	},
	"DE": {
		Code: "DE", Name: "Germany", Currency: "EUR", CurrencySymbol: "€",
		Population: 500_000, AdultFraction: 0.81, Prevalence: 0.32, ResistantFrac: 0.11,
		CostMultiplier: 0.50, USDExchange: 1.08,
	},
	"FR": {
		Code: "FR", Name: "France", Currency: "EUR", CurrencySymbol: "€",
		Population: 500_000, AdultFraction: 0.79, Prevalence: 0.30, ResistantFrac: 0.11,
		CostMultiplier: 0.45, USDExchange: 1.08,
	},
	"IT": {
		Code: "IT", Name: "Italy", Currency: "EUR", CurrencySymbol: "€",
		Population: 500_000, AdultFraction: 0.81, Prevalence: 0.33, ResistantFrac: 0.12,
		CostMultiplier: 0.42, USDExchange: 1.08,
	},
	"ES": {
		Code: "ES", Name: "Spain", Currency: "EUR", CurrencySymbol: "€",
		Population: 500_000, AdultFraction: 0.82, Prevalence: 0.33, ResistantFrac: 0.11,
		CostMultiplier: 0.38, USDExchange: 1.08,
	},
}

// CountryByCode returns the preset for the given ISO-like code.
func CountryByCode(code string) (Country, error) {
	c, ok := countries[code]
	if !ok {
		return Country{}, eris.Errorf("config: unknown country %q", code)
	}
	return c, nil
}

// CountryCodes returns all known preset codes, sorted.
func CountryCodes() []string {
	codes := make([]string, 0, len(countries))
	for code := range countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
