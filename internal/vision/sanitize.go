package vision

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SanitizeExtraction normalizes a raw model answer so the overall document
// can still validate: nulls become empty strings, bare numbers become their
// digit strings (NIKs exceed float precision, hence UseNumber), stray keys
// are dropped, and document_type is uppercased. Returns the cleaned JSON and
// the keys that were dropped.
func SanitizeExtraction(doc []byte) ([]byte, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, nil, err
	}

	known := make(map[string]struct{}, len(extractionStringKeys)+1)
	known["document_type"] = struct{}{}
	for _, k := range extractionStringKeys {
		known[k] = struct{}{}
	}

	out := make(map[string]any, len(known))
	var dropped []string
	for k, v := range m {
		if _, ok := known[k]; !ok {
			dropped = append(dropped, k)
			continue
		}
		switch t := v.(type) {
		case nil:
			out[k] = "" // the prompt asks for "", models still emit null
		case string:
			out[k] = strings.TrimSpace(t)
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = ""
			dropped = append(dropped, k)
		default:
			// arrays and objects have no place in a flat record
			out[k] = ""
			dropped = append(dropped, k)
		}
	}

	if v, ok := out["document_type"].(string); ok {
		out["document_type"] = strings.ToUpper(v)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
