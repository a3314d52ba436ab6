package model

import "encoding/json"

// Request is one flatten job: raw input for a single domain, in any of the
// accepted input shapes.
type Request struct {
	ID     string          `json:"id,omitempty"`
	Domain Domain          `json:"domain"`
	Data   json.RawMessage `json:"data"`
}

// Result carries the flattened record produced for a Request.
// Record holds one of the flatten.*Record value types.
type Result struct {
	ID     string `json:"id"`
	Domain Domain `json:"domain"`
	Record any    `json:"record"`
}
