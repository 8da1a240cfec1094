package nscache

// Status tags the outcome of a Lookup.
type Status uint8

const (
	StatusNotFound Status = iota
	StatusFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result separates a hit, a miss and a failure, which Get folds into "".
type Result struct {
	Status Status
	Value  string // set only for StatusFound
	Err    error  // ErrNotConnected or *OperationError; set only for StatusFailed
}

func (r Result) Hit() bool { return r.Status == StatusFound }
