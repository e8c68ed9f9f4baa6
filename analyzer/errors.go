package analyzer

import "errors"

// ErrInvalid is the analyzer package's error sentinel. No function in
// the package returns or wraps it: recoverable conditions such as
// InputTooShort and FrequencyCapExceeded are reported as Warning
// values, not as errors.
var ErrInvalid = errors.New("analyzer: invalid")

// WarningKind enumerates the recoverable, non-fatal conditions a run
// can surface.
type WarningKind string

const (
	WarnInputTooShort        WarningKind = "InputTooShort"
	WarnFrequencyCapExceeded WarningKind = "FrequencyCapExceeded"
	WarnResidualBitsDiscarded WarningKind = "ResidualBitsDiscarded"
	WarnZstdFailure          WarningKind = "ZstdFailure"
)

// Warning is a non-fatal condition surfaced alongside a result.
type Warning struct {
	Kind    WarningKind
	Field   string // empty when not field-specific
	Message string
}

func (w Warning) String() string {
	if w.Field == "" {
		return string(w.Kind) + ": " + w.Message
	}
	return string(w.Kind) + " (" + w.Field + "): " + w.Message
}
