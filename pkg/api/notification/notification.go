package notification

import (
	"encoding/json"
	"fmt"

	"github.com/ossf/passive-analysis/pkg/api/finding"
)

// ScanComplete is a struct representing the message sent to notify when the
// scan of a single exchange is complete and its record has been saved.
type ScanComplete struct {
	URL       string         `json:"url"`
	ResultKey string         `json:"result_key,omitempty"`
	Findings  int            `json:"findings"`
	Kinds     []finding.Kind `json:"kinds,omitempty"`
}

// ParseJSON takes in a notification JSON and returns a ScanComplete struct.
func ParseJSON(body []byte) (ScanComplete, error) {
	n := ScanComplete{}
	if err := json.Unmarshal(body, &n); err != nil {
		return n, fmt.Errorf("error unmarshalling json: %w", err)
	}
	return n, nil
}
