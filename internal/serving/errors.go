package serving

// unknownAdapterError indicates a name that was never registered.
type unknownAdapterError struct{ name string }

func (e unknownAdapterError) Error() string { return "unknown adapter: " + e.name }

// ErrUnknownAdapter constructs an unknownAdapterError.
func ErrUnknownAdapter(name string) error { return unknownAdapterError{name: name} }

// IsUnknownAdapter reports whether err indicates an unregistered adapter name.
func IsUnknownAdapter(err error) bool {
	_, ok := err.(unknownAdapterError)
	return ok
}

// duplicateNameError indicates a registration conflict: the name is already
// registered with a different locator.
type duplicateNameError struct{ name string }

func (e duplicateNameError) Error() string {
	return "adapter already registered with a different locator: " + e.name
}

// ErrDuplicateName constructs a duplicateNameError.
func ErrDuplicateName(name string) error { return duplicateNameError{name: name} }

// IsDuplicateName reports whether err indicates a registration conflict.
func IsDuplicateName(err error) bool {
	_, ok := err.(duplicateNameError)
	return ok
}

// loadError wraps a weight-loading failure with its cause. Retryable by the
// caller once the underlying condition is fixed.
type loadError struct {
	name  string
	cause error
}

func (e loadError) Error() string { return "load adapter " + e.name + ": " + e.cause.Error() }
func (e loadError) Unwrap() error { return e.cause }

// ErrLoadFailed constructs a loadError carrying the underlying cause.
func ErrLoadFailed(name string, cause error) error { return loadError{name: name, cause: cause} }

// IsLoadFailed reports whether err indicates a failed weight load.
func IsLoadFailed(err error) bool {
	_, ok := err.(loadError)
	return ok
}

// incompatibleAdapterError indicates a shape/rank or base-model mismatch.
// Never retryable with the same adapter.
type incompatibleAdapterError struct {
	name   string
	reason string
}

func (e incompatibleAdapterError) Error() string {
	return "incompatible adapter " + e.name + ": " + e.reason
}

// ErrIncompatibleAdapter constructs an incompatibleAdapterError.
func ErrIncompatibleAdapter(name, reason string) error {
	return incompatibleAdapterError{name: name, reason: reason}
}

// IsIncompatibleAdapter reports whether err indicates an adapter that cannot
// be composed onto the base model.
func IsIncompatibleAdapter(err error) bool {
	_, ok := err.(incompatibleAdapterError)
	return ok
}

// adapterInUseError indicates an eviction attempt on an adapter that is
// composed, pinned by an in-flight switch, or still loading.
type adapterInUseError struct{ name string }

func (e adapterInUseError) Error() string { return "adapter in use: " + e.name }

// ErrAdapterInUse constructs an adapterInUseError.
func ErrAdapterInUse(name string) error { return adapterInUseError{name: name} }

// IsAdapterInUse reports whether err indicates an eviction of a busy adapter.
func IsAdapterInUse(err error) bool {
	_, ok := err.(adapterInUseError)
	return ok
}

// resourceUnavailableError indicates the base model is unusable. Fatal,
// process-level condition surfaced to all callers.
type resourceUnavailableError struct{ msg string }

func (e resourceUnavailableError) Error() string { return e.msg }

// ErrResourceUnavailable constructs a resourceUnavailableError.
func ErrResourceUnavailable(msg string) error { return resourceUnavailableError{msg: msg} }

// IsResourceUnavailable reports whether err indicates an unusable base model.
func IsResourceUnavailable(err error) bool {
	_, ok := err.(resourceUnavailableError)
	return ok
}

// tooBusyError signals admission timeout/backpressure for 429 mapping.
type tooBusyError struct{ op string }

func (e tooBusyError) Error() string { return "too busy: " + e.op }

// ErrTooBusy reports that op could not be admitted before its deadline.
func ErrTooBusy(op string) error { return tooBusyError{op: op} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}
