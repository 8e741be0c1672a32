package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

var ErrMalformedModelOutput = errors.New("malformed model output")

const resultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "minProperties": 1
}`

var compiledResultSchema = jsonschema.MustCompileString("analysis-result.json", resultSchema)

// Validate parses raw model output into an AnalysisResult. Output that is not
// a non-empty JSON object is rejected; individual fields that are missing or
// have the wrong shape fall back to their empty value.
func Validate(raw string) (*models.AnalysisResult, error) {
	result, _, err := validate(raw)
	return result, err
}

// validate also reports which fields or items were dropped.
func validate(raw string) (*models.AnalysisResult, []string, error) {
	content := extractJSON(strings.TrimSpace(raw))

	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}
	if err := compiledResultSchema.Validate(v); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	var dropped []string
	result := models.AnalysisResult{}

	if raw, ok := fields["summary"]; ok {
		if s, ok := decodeString(raw); ok {
			result.Summary = s
		} else {
			dropped = append(dropped, "summary")
		}
	}

	result.KeyTerms = decodeItems(fields, "keyTerms", &dropped, func(obj map[string]json.RawMessage) (models.KeyTerm, bool) {
		term, ok1 := decodeString(obj["term"])
		explanation, ok2 := decodeString(obj["explanation"])
		return models.KeyTerm{Term: term, Explanation: explanation}, ok1 && ok2
	})

	result.MainConcepts = decodeItems(fields, "mainConcepts", &dropped, func(obj map[string]json.RawMessage) (models.MainConcept, bool) {
		title, ok1 := decodeString(obj["title"])
		description, ok2 := decodeString(obj["description"])
		return models.MainConcept{Title: title, Description: description}, ok1 && ok2
	})

	result.NumericalData = decodeItems(fields, "numericalData", &dropped, func(obj map[string]json.RawMessage) (models.NumericalFinding, bool) {
		value, ok1 := decodeString(obj["value"])
		context, ok2 := decodeString(obj["context"])
		significance, ok3 := decodeString(obj["significance"])
		return models.NumericalFinding{Value: value, Context: context, Significance: significance}, ok1 && ok2 && ok3
	})

	if raw, ok := fields["keyPoints"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			dropped = append(dropped, "keyPoints")
		} else {
			for i, item := range items {
				s, ok := decodeString(item)
				if !ok {
					dropped = append(dropped, fmt.Sprintf("keyPoints[%d]", i))
					continue
				}
				result.KeyPoints = append(result.KeyPoints, s)
			}
		}
	}

	result = result.WithDefaults()
	return &result, dropped, nil
}

// decodeItems decodes an array of objects field by field. Items that are not
// objects, or whose members have the wrong type, are skipped.
func decodeItems[T any](fields map[string]json.RawMessage, key string, dropped *[]string, convert func(map[string]json.RawMessage) (T, bool)) []T {
	raw, ok := fields[key]
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		*dropped = append(*dropped, key)
		return nil
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			*dropped = append(*dropped, fmt.Sprintf("%s[%d]", key, i))
			continue
		}
		v, ok := convert(obj)
		if !ok {
			*dropped = append(*dropped, fmt.Sprintf("%s[%d]", key, i))
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeString accepts strings, numbers and booleans. Missing and null values
// decode to the empty string.
func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", true
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}

	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case float64:
		return strings.TrimSpace(string(raw)), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// extractJSON strips a surrounding markdown code fence, if any.
func extractJSON(content string) string {
	if len(content) > 7 && content[:3] == "```" {
		start := 0
		end := len(content)

		for i := 3; i < len(content); i++ {
			if content[i] == '\n' {
				start = i + 1
				break
			}
		}

		for i := len(content) - 1; i >= 0; i-- {
			if i >= 2 && content[i-2:i+1] == "```" {
				end = i - 2
				break
			}
		}

		if start < end {
			content = content[start:end]
		}
	}

	return content
}
