package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/config"
	"github.com/sells-group/bim-cli/internal/engine"
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
	"github.com/sells-group/bim-cli/internal/sensitivity"
	"github.com/sells-group/bim-cli/internal/store"
	"github.com/sells-group/bim-cli/internal/subgroup"
)

// runRequest selects inputs for an engine invocation. Zero-valued fields
// fall back to the country preset and server defaults.
type runRequest struct {
	Country      string `json:"country"`
	Scenario     string `json:"scenario"`
	HorizonYears int    `json:"horizon_years"`

	IncludeOffsets     *bool `json:"include_offsets"`
	IncludePersistence *bool `json:"include_persistence"`
	IncludeEvents      *bool `json:"include_events"`

	// Save persists the run in the analysis archive.
	Save bool `json:"save"`
}

func (s *Server) buildParams(req runRequest) (*params.ParameterSet, error) {
	country := req.Country
	if country == "" {
		country = s.cfg.Analysis.Country
	}
	preset, err := config.CountryByCode(country)
	if err != nil {
		return nil, err
	}

	ps := params.ForCountry(preset)
	if req.Scenario != "" {
		ps.Analysis.Scenario = model.Scenario(req.Scenario)
	}
	if req.HorizonYears > 0 {
		ps.Analysis.HorizonYears = req.HorizonYears
	}
	if req.IncludeOffsets != nil {
		ps.Analysis.IncludeOffsets = *req.IncludeOffsets
	}
	if req.IncludePersistence != nil {
		ps.Analysis.IncludePersistence = *req.IncludePersistence
	}
	if req.IncludeEvents != nil {
		ps.Analysis.IncludeEvents = *req.IncludeEvents
	}
	return ps, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCountries(w http.ResponseWriter, _ *http.Request) {
	codes := config.CountryCodes()
	out := make([]config.Country, 0, len(codes))
	for _, code := range codes {
		c, _ := config.CountryByCode(code)
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleParameters(w http.ResponseWriter, _ *http.Request) {
	type parameter struct {
		Name  string  `json:"name"`
		Label string  `json:"label"`
		Min   float64 `json:"min"`
		Max   float64 `json:"max,omitempty"`
	}
	out := make([]parameter, 0)
	for _, name := range params.Names() {
		acc, _ := params.Lookup(name)
		p := parameter{Name: acc.Name, Label: acc.Label, Min: acc.Min}
		if !math.IsInf(acc.Max, 1) {
			p.Max = acc.Max
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRunRequest(w, r)
	if !ok {
		return
	}

	ps, err := s.buildParams(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	calc, err := engine.New(ps)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	res, err := calc.Run()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var analysisID string
	if req.Save {
		id, err := s.saveAnalysis(r, ps, res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		analysisID = id
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analysis_id": analysisID,
		"result":      res,
	})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRunRequest(w, r)
	if !ok {
		return
	}

	ps, err := s.buildParams(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	calc, err := engine.New(ps)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	out := make(map[model.Scenario]*model.RunResult, len(model.Scenarios))
	for _, scenario := range model.Scenarios {
		res, err := calc.RunScenario(scenario)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		out[scenario] = res
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSubgroups(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRunRequest(w, r)
	if !ok {
		return
	}

	ps, err := s.buildParams(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := subgroup.Analyze(ps)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleTornado(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRunRequest(w, r)
	if !ok {
		return
	}

	ps, err := s.buildParams(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rows, err := sensitivity.Tornado(ps)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handlePSA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		runRequest
		Iterations int     `json:"iterations"`
		Seed       *int64  `json:"seed"`
		Confidence float64 `json:"confidence"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, eris.Wrap(err, "decode request"))
			return
		}
	}

	ps, err := s.buildParams(req.runRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	seed := s.cfg.PSA.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	iterations := req.Iterations
	if iterations <= 0 {
		iterations = s.cfg.PSA.Iterations
	}

	summary, err := sensitivity.PSA(r.Context(), ps, sensitivity.PSAOptions{
		Iterations: iterations,
		Seed:       seed,
		Confidence: req.Confidence,
		Workers:    s.cfg.PSA.Workers,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		runRequest
		Target float64 `json:"target"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, eris.Wrap(err, "decode request"))
			return
		}
	}

	ps, err := s.buildParams(req.runRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	price, err := engine.PriceThreshold(ps, req.Target)
	if err != nil {
		if eris.Is(err, engine.ErrNoThreshold) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"target": req.Target,
		"price":  price,
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, eris.New("no store configured"))
		return
	}

	q := r.URL.Query()
	filter := store.AnalysisFilter{
		Country:  q.Get("country"),
		Scenario: model.Scenario(q.Get("scenario")),
	}
	analyses, err := s.store.ListAnalyses(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, eris.New("no store configured"))
		return
	}

	analysis, err := s.store.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, eris.New("no store configured"))
		return
	}

	if err := s.store.DeleteAnalysis(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) saveAnalysis(r *http.Request, ps *params.ParameterSet, res *model.RunResult) (string, error) {
	if s.store == nil {
		return "", eris.New("no store configured")
	}

	raw, err := json.Marshal(ps)
	if err != nil {
		return "", eris.Wrap(err, "marshal params")
	}
	analysis := &model.Analysis{
		Country:  ps.Country,
		Scenario: res.Scenario,
		Status:   model.AnalysisStatusComplete,
		Params:   raw,
		Result:   res,
	}
	if err := s.store.CreateAnalysis(r.Context(), analysis); err != nil {
		return "", err
	}
	return analysis.ID, nil
}

func decodeRunRequest(w http.ResponseWriter, r *http.Request) (runRequest, bool) {
	var req runRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, eris.Wrap(err, "decode request"))
			return req, false
		}
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
