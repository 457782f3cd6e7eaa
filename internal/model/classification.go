package model

// ClassificationResult is what the external classifier returns for one utterance.
type ClassificationResult struct {
	Entities   map[string]string `json:"entities"`
	Intent     Intent            `json:"intent"`
	Confidence float64           `json:"confidence,omitempty"`
}

// Entity returns the raw value extracted for field, or "".
func (r ClassificationResult) Entity(field Field) string {
	if r.Entities == nil {
		return ""
	}
	return r.Entities[field]
}
