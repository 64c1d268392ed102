package models

// Strategy identifies which extraction step produced a result.
// Diagnostic only: downstream consumers see URLs, not strategies.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategySelector
	StrategyCapture
	StrategyMedia
	StrategyFrame
)

func (s Strategy) String() string {
	switch s {
	case StrategySelector:
		return "selector"
	case StrategyCapture:
		return "capture"
	case StrategyMedia:
		return "media"
	case StrategyFrame:
		return "frame"
	default:
		return "none"
	}
}

// ExtractionResult is the outcome of one fetch-and-extract cycle.
// A zero ExtractionResult means no download URL was found.
type ExtractionResult struct {
	URL      string
	Strategy Strategy
}

// Found reports whether the fetch produced a download URL.
func (r ExtractionResult) Found() bool {
	return r.URL != ""
}
