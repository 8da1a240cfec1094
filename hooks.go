package nscache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; they run inline with the
// operation that triggered them. Wrap slow sinks with hooks/async.
type Hooks interface {
	// A set/get/del/flush call failed in the backend. err is an *OperationError.
	BackendError(op Op, storageKey string, err error)

	// Provider returned ok=false on Set (backpressure/admission).
	SetRejected(storageKey string)

	// A flush completed; removed is the number of keys the backend deleted.
	Flushed(prefix string, removed int64)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) BackendError(Op, string, error) {}
func (NopHooks) SetRejected(string)             {}
func (NopHooks) Flushed(string, int64)          {}
