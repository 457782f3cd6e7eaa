package classifier

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

const maxLineSize = 1 << 20

// payload mirrors the JSON line the classifier prints. Entity values may arrive as
// numbers, so they are decoded loosely and stringified.
type payload struct {
	Entities   map[string]any `json:"entities"`
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
}

// ParseOutput finds the last line of output that looks like a JSON object and decodes
// it as a classification result.
func ParseOutput(output string) (model.ClassificationResult, error) {
	jsonLine, err := lastJSONLine(output)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: read output: %w", common.ErrClassificationFailed, err)
	}
	if jsonLine == "" {
		return model.ClassificationResult{}, fmt.Errorf("%w: no JSON line in output", common.ErrClassificationFailed)
	}

	var p payload
	if err := json.Unmarshal([]byte(jsonLine), &p); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: decode %q: %w", common.ErrClassificationFailed, jsonLine, err)
	}
	if strings.TrimSpace(p.Intent) == "" {
		return model.ClassificationResult{}, fmt.Errorf("%w: missing intent", common.ErrClassificationFailed)
	}

	entities := make(map[string]string, len(p.Entities))
	for k, v := range p.Entities {
		switch val := v.(type) {
		case nil:
		case string:
			entities[k] = val
		default:
			entities[k] = fmt.Sprint(val)
		}
	}

	return model.ClassificationResult{
		Intent:     model.Intent(strings.TrimSpace(p.Intent)),
		Entities:   entities,
		Confidence: p.Confidence,
	}, nil
}

// lastJSONLine fails rather than returning an earlier line when the output
// cannot be scanned to the end, e.g. a line longer than maxLineSize.
func lastJSONLine(output string) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var jsonLine string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "{") && strings.HasSuffix(line, "}") {
			jsonLine = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return jsonLine, nil
}
