package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/BerylCAtieno/blood-report-api/internal/models"
)

const (
	fieldPatientInfo     = "patientInfo"
	fieldAbnormalResults = "abnormalResults"
	fieldAllResults      = "allResults"
	fieldRecommendations = "recommendations"
)

const (
	objectSchema = `{"type": "object"}`
	arraySchema  = `{"type": "array"}`

	abnormalItemSchema = `{
  "type": "object",
  "properties": {
    "parameter":      {"type": ["string", "null"]},
    "value":          {"type": ["number", "string", "null"]},
    "unit":           {"type": ["string", "null"]},
    "interpretation": {"type": ["string", "null"]}
  }
}`

	resultItemSchema = `{
  "type": "object",
  "properties": {
    "parameter":      {"type": ["string", "null"]},
    "value":          {"type": ["number", "string", "null"]},
    "unit":           {"type": ["string", "null"]},
    "referenceRange": {"type": ["string", "null"]},
    "status":         {"type": ["string", "null"]}
  }
}`

	recommendationSchema = `{"type": "string"}`
)

// fieldSchema checks the container of a top-level field; item, when set,
// checks each element of an array field on its own.
type fieldSchema struct {
	container *jsonschema.Schema
	item      *jsonschema.Schema
}

var fieldSchemas = map[string]fieldSchema{
	fieldPatientInfo: {
		container: mustCompileFragment(fieldPatientInfo, objectSchema),
	},
	fieldAbnormalResults: {
		container: mustCompileFragment(fieldAbnormalResults, arraySchema),
		item:      mustCompileFragment(fieldAbnormalResults+"-item", abnormalItemSchema),
	},
	fieldAllResults: {
		container: mustCompileFragment(fieldAllResults, arraySchema),
		item:      mustCompileFragment(fieldAllResults+"-item", resultItemSchema),
	},
	fieldRecommendations: {
		container: mustCompileFragment(fieldRecommendations, arraySchema),
		item:      mustCompileFragment(fieldRecommendations+"-item", recommendationSchema),
	},
}

func compileFragment(name, schema string) (*jsonschema.Schema, error) {
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return compiled, nil
}

func mustCompileFragment(name, schema string) *jsonschema.Schema {
	compiled, err := compileFragment(name, schema)
	if err != nil {
		panic(err)
	}
	return compiled
}

// Repair is one change made to the model payload.
type Repair struct {
	Field  string
	Reason string
	// Dropped counts array items removed for failing their item schema.
	Dropped int
}

// repairAnalysis turns the located payload into a result. Present fields pass
// through as returned, unknown keys included. A missing field, or one whose
// container has the wrong type, gets its empty default; array items that fail
// their item schema are dropped one by one.
func repairAnalysis(payload map[string]json.RawMessage) (*models.AnalysisResult, []Repair) {
	result := models.EmptyAnalysis()
	var repairs []Repair

	for key, raw := range payload {
		schema, known := fieldSchemas[key]
		if !known {
			if result.Extra == nil {
				result.Extra = make(map[string]json.RawMessage)
			}
			result.Extra[key] = raw
			continue
		}

		value, err := decodeJSON(raw)
		if err == nil {
			err = schema.container.Validate(value)
		}
		if err != nil {
			repairs = append(repairs, Repair{Field: key, Reason: "wrong type"})
			continue
		}

		dropped := assignField(result, key, value, schema.item)
		if dropped > 0 {
			repairs = append(repairs, Repair{Field: key, Reason: "invalid items", Dropped: dropped})
		}
	}

	for _, key := range []string{fieldPatientInfo, fieldAbnormalResults, fieldAllResults, fieldRecommendations} {
		if _, ok := payload[key]; !ok {
			repairs = append(repairs, Repair{Field: key, Reason: "missing"})
		}
	}

	return result, repairs
}

// assignField stores an already container-checked value on result and returns
// how many array items were dropped.
func assignField(result *models.AnalysisResult, key string, value any, item *jsonschema.Schema) int {
	if key == fieldPatientInfo {
		result.PatientInfo = models.PatientInfo(value.(map[string]any))
		return 0
	}

	kept, dropped := validItems(value.([]any), item)
	switch key {
	case fieldAbnormalResults:
		result.AbnormalResults = toResultItems(kept)
	case fieldAllResults:
		result.AllResults = toResultItems(kept)
	case fieldRecommendations:
		result.Recommendations = make([]string, 0, len(kept))
		for _, v := range kept {
			result.Recommendations = append(result.Recommendations, v.(string))
		}
	}
	return dropped
}

func validItems(items []any, schema *jsonschema.Schema) (kept []any, dropped int) {
	kept = make([]any, 0, len(items))
	for _, v := range items {
		if err := schema.Validate(v); err != nil {
			dropped++
			continue
		}
		kept = append(kept, v)
	}
	return kept, dropped
}

func toResultItems(items []any) []models.ResultItem {
	out := make([]models.ResultItem, 0, len(items))
	for _, v := range items {
		out = append(out, models.ResultItem(v.(map[string]any)))
	}
	return out
}

// decodeJSON keeps numbers as json.Number so values round-trip unchanged.
func decodeJSON(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}
