package checkout

import "strings"

// ReturnSignal is the gateway's redirect-back status, parsed strictly at the
// boundary. Raw query strings never travel further into the system.
type ReturnSignal int

const (
	SignalUnknown ReturnSignal = iota
	SignalSuccess
	SignalFailed
)

// ParseReturnSignal maps the return URL's status parameter to a signal.
// Anything other than the two gateway-defined values is Unknown.
func ParseReturnSignal(raw string) ReturnSignal {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return SignalSuccess
	case "failed":
		return SignalFailed
	default:
		return SignalUnknown
	}
}

func (s ReturnSignal) String() string {
	switch s {
	case SignalSuccess:
		return "success"
	case SignalFailed:
		return "failed"
	default:
		return "unknown"
	}
}
