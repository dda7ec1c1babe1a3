package followup

import (
	"bytes"
	"encoding/json"
	"strings"
)

// PredictionMarker prefixes the payload in plain-text responses.
const PredictionMarker = "Vitalstory:"

// prediction is the payload carried inside a response envelope. Exactly one
// of raw (a JSON value) or text is meaningful.
type prediction struct {
	raw  json.RawMessage
	text string
}

// envelopeShape recognizes one response layout.
type envelopeShape func(body string) (prediction, bool)

// envelopeShapes are tried in order; the first match wins.
var envelopeShapes = []struct {
	name  string
	match envelopeShape
}{
	{"prediction", predictionField},
	{"marker", markerText},
	{"raw", rawText},
}

// Parse turns a raw response body into a batch. Errors wrap
// ErrMalformedResponse.
func Parse(body string) (Batch, error) {
	b, _, err := parse(body)
	return b, err
}

// parse is Parse that also names the envelope shape that matched.
func parse(body string) (Batch, string, error) {
	for _, shape := range envelopeShapes {
		p, ok := shape.match(body)
		if !ok {
			continue
		}
		elems, err := p.elements()
		if err != nil {
			return Batch{}, shape.name, err
		}
		b, err := coerce(elems)
		return b, shape.name, err
	}
	return Batch{}, "", malformed("unrecognized response")
}

// predictionField matches a JSON object with a "Prediction" member.
func predictionField(body string) (prediction, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &obj); err != nil {
		return prediction{}, false
	}
	raw, ok := obj["Prediction"]
	if !ok {
		return prediction{}, false
	}
	return prediction{raw: raw}, true
}

// markerText matches plain text carrying the "Vitalstory:" marker.
func markerText(body string) (prediction, bool) {
	_, after, found := strings.Cut(body, PredictionMarker)
	if !found {
		return prediction{}, false
	}
	return prediction{text: strings.TrimSpace(after)}, true
}

// rawText treats the whole body as the payload.
func rawText(body string) (prediction, bool) {
	return prediction{text: body}, true
}

// elements normalizes the payload into a list of question-like JSON values.
func (p prediction) elements() ([]json.RawMessage, error) {
	if p.raw == nil {
		return arrayInText(p.text)
	}

	raw := bytes.TrimSpace(p.raw)
	if len(raw) == 0 {
		return nil, malformed("empty prediction")
	}
	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, malformed("prediction array: %v", err)
		}
		return elems, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, malformed("prediction string: %v", err)
		}
		return arrayInText(s)
	default:
		return nil, malformed("prediction is neither an array nor a string")
	}
}

// arrayInText parses the first bracket-delimited substring of s.
func arrayInText(s string) ([]json.RawMessage, error) {
	candidate, ok := firstArray(s)
	if !ok {
		return nil, malformed("no JSON array in prediction")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &elems); err != nil {
		return nil, malformed("embedded array: %v", err)
	}
	return elems, nil
}

// firstArray returns the balanced [...] substring starting at the first '['.
// Brackets inside JSON string literals are ignored.
func firstArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// coerce keeps the first BatchSize elements and renumbers them by position.
func coerce(elems []json.RawMessage) (Batch, error) {
	if len(elems) < BatchSize {
		return Batch{}, malformed("got %d questions, need %d", len(elems), BatchSize)
	}

	var texts [BatchSize]string
	for i := range texts {
		text, err := questionText(elems[i])
		if err != nil {
			return Batch{}, malformed("element %d: %v", i, err)
		}
		texts[i] = text
	}
	return NewBatch(texts), nil
}

// questionText reads an object's "question" member, or a bare scalar.
func questionText(elem json.RawMessage) (string, error) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 {
		return "", malformed("empty element")
	}

	var text string
	switch elem[0] {
	case '{':
		var obj struct {
			Question *string `json:"question"`
		}
		if err := json.Unmarshal(elem, &obj); err != nil {
			return "", err
		}
		if obj.Question == nil {
			return "", malformed("object has no string \"question\"")
		}
		text = *obj.Question
	case '"':
		if err := json.Unmarshal(elem, &text); err != nil {
			return "", err
		}
	case '[', 'n':
		return "", malformed("unsupported element %s", elem)
	default:
		text = string(elem)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", malformed("empty question text")
	}
	return text, nil
}
