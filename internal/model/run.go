package model

import "time"

// AnalysisStatus represents the state of a stored analysis run.
type AnalysisStatus string

const (
	AnalysisStatusComplete AnalysisStatus = "complete"
	AnalysisStatusFailed   AnalysisStatus = "failed"
)

// Analysis is a persisted calculation run: the inputs it used and the
// result it produced, for later listing and export.
type Analysis struct {
	ID        string         `json:"id"`
	Country   string         `json:"country"`
	Scenario  Scenario       `json:"scenario"`
	Status    AnalysisStatus `json:"status"`
	Params    []byte         `json:"-"`      // ParameterSet snapshot, JSON
	Result    *RunResult     `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
