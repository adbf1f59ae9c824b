package heightmap

import "fmt"

// ErrorKind is the taxonomy from spec §7.
type ErrorKind string

const (
	KindConfigInvalid     ErrorKind = "ConfigInvalid"
	KindGenerationFailure ErrorKind = "GenerationFailure"
	KindCapacityExceeded  ErrorKind = "CapacityExceeded"
	KindIOFailure         ErrorKind = "IOFailure"
	KindCancelled         ErrorKind = "Cancelled"
)

// GenerationError is the single structured error type returned by the
// pipeline and its stages, per spec §7: "a failure returns a single
// structured error (kind, message, optional field path, optional stage
// name)".
type GenerationError struct {
	Kind      ErrorKind
	Message   string
	FieldPath string // set for ConfigInvalid
	Stage     string // set when a stage produced the failure
	Err       error
}

func (e *GenerationError) Error() string {
	switch {
	case e.FieldPath != "":
		return fmt.Sprintf("%s: %s (field %q)", e.Kind, e.Message, e.FieldPath)
	case e.Stage != "":
		return fmt.Sprintf("%s: %s (stage %q)", e.Kind, e.Message, e.Stage)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *GenerationError) Unwrap() error { return e.Err }

func errConfigInvalid(field, format string, args ...interface{}) *GenerationError {
	return &GenerationError{
		Kind:      KindConfigInvalid,
		Message:   fmt.Sprintf(format, args...),
		FieldPath: field,
	}
}

func errGeneration(stage, format string, args ...interface{}) *GenerationError {
	return &GenerationError{
		Kind:    KindGenerationFailure,
		Message: fmt.Sprintf(format, args...),
		Stage:   stage,
	}
}

func errCapacity(format string, args ...interface{}) *GenerationError {
	return &GenerationError{
		Kind:    KindCapacityExceeded,
		Message: fmt.Sprintf(format, args...),
	}
}

func errIO(stage string, err error) *GenerationError {
	return &GenerationError{
		Kind:    KindIOFailure,
		Message: err.Error(),
		Stage:   stage,
		Err:     err,
	}
}

func errCancelled(stage string) *GenerationError {
	return &GenerationError{
		Kind:    KindCancelled,
		Message: "operation cancelled",
		Stage:   stage,
	}
}

// IsCancelled reports whether err is (or wraps) a Cancelled GenerationError.
func IsCancelled(err error) bool {
	var ge *GenerationError
	if ok := asGenerationError(err, &ge); ok {
		return ge.Kind == KindCancelled
	}
	return false
}

func asGenerationError(err error, target **GenerationError) bool {
	for err != nil {
		if ge, ok := err.(*GenerationError); ok {
			*target = ge
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
