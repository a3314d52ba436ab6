package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aiworkoutgenerator/workoutflat/internal/model"
)

// Verbosity controls which record fields reach an output.
type Verbosity int

const (
	Full    Verbosity = iota // every field
	Compact                  // backup payload (*_data_json) stripped
)

// ParseVerbosity maps "full" or "compact" to a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(s) {
	case "", "full":
		return Full, nil
	case "compact":
		return Compact, nil
	}
	return Full, fmt.Errorf("output: unknown verbosity %q", s)
}

func (v Verbosity) String() string {
	if v == Compact {
		return "compact"
	}
	return "full"
}

const dataJSONSuffix = "_data_json"

// FormatResult returns the result with record fields stripped according to
// verbosity. At Compact the record is re-encoded as a field map without the
// backup payload; at Full it is returned unchanged.
func FormatResult(res model.Result, verbosity Verbosity) (model.Result, error) {
	if verbosity != Compact || res.Record == nil {
		return res, nil
	}
	data, err := json.Marshal(res.Record)
	if err != nil {
		return res, fmt.Errorf("output: format: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return res, fmt.Errorf("output: format: %w", err)
	}
	for k := range fields {
		if strings.HasSuffix(k, dataJSONSuffix) {
			delete(fields, k)
		}
	}
	res.Record = fields
	return res, nil
}
