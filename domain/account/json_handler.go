package account

import "encoding/json"

// JSONHandler serializes and deserializes the open bag of SCIM attributes
// carried in Attributes.Extra to and from the store's single `attributes`
// blob column, per the configuration surface's injected "jsonHandler".
type JSONHandler interface {
	Marshal(extra map[string]any) (string, error)
	Unmarshal(blob string) (map[string]any, error)
}

type stdJSONHandler struct{}

func (stdJSONHandler) Marshal(extra map[string]any) (string, error) {
	if len(extra) == 0 {
		return "", nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (stdJSONHandler) Unmarshal(blob string) (map[string]any, error) {
	if blob == "" {
		return nil, nil
	}
	var extra map[string]any
	if err := json.Unmarshal([]byte(blob), &extra); err != nil {
		return nil, err
	}
	return extra, nil
}

// DefaultJSONHandler is the encoding/json-backed handler used unless a
// deployment injects its own.
var DefaultJSONHandler JSONHandler = stdJSONHandler{}
