package models

import (
	"encoding/json"
)

type UploadRequest struct {
	File        []byte
	Filename    string
	ContentType string
}

// AnalysisResult is the object the model returned. The four report fields are
// always serialized, nil collections as empty; any other top-level keys are
// kept in Extra and written back verbatim.
type AnalysisResult struct {
	PatientInfo     PatientInfo
	AbnormalResults []ResultItem
	AllResults      []ResultItem
	Recommendations []string
	Extra           map[string]json.RawMessage
}

// PatientInfo usually carries name, age, gender and date, as reported.
type PatientInfo map[string]any

// ResultItem is one measurement row. Numbers are kept as json.Number so they
// round-trip with their original literal.
type ResultItem map[string]any

// EmptyAnalysis returns a result with every field at its empty default.
func EmptyAnalysis() *AnalysisResult {
	return &AnalysisResult{
		PatientInfo:     PatientInfo{},
		AbnormalResults: []ResultItem{},
		AllResults:      []ResultItem{},
		Recommendations: []string{},
	}
}

func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}

	patientInfo := r.PatientInfo
	if patientInfo == nil {
		patientInfo = PatientInfo{}
	}
	abnormal := r.AbnormalResults
	if abnormal == nil {
		abnormal = []ResultItem{}
	}
	all := r.AllResults
	if all == nil {
		all = []ResultItem{}
	}
	recommendations := r.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	out["patientInfo"] = patientInfo
	out["abnormalResults"] = abnormal
	out["allResults"] = all
	out["recommendations"] = recommendations
	return json.Marshal(out)
}

// String returns the string form of key, or "" when it is absent or not a string.
func (i ResultItem) String(key string) string {
	s, _ := i[key].(string)
	return s
}
