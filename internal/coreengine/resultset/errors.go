package resultset

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput reports input that does not have the shape of a
	// result set or result record.
	ErrMalformedInput = errors.New("malformed input")

	// ErrIngestion reports that the result source signalled a failure
	// instead of delivering results.
	ErrIngestion = errors.New("ingestion failed")

	// ErrJobTypeMismatch reports a comparison across incompatible job types.
	ErrJobTypeMismatch = errors.New("job type mismatch")

	// ErrUnknownKey reports a result key that is not in the set.
	ErrUnknownKey = errors.New("unknown result key")
)

// IngestionError carries the message of an "error" entry in the input.
type IngestionError struct {
	Message string
}

func (e *IngestionError) Error() string {
	return "ingestion failed: " + e.Message
}

func (e *IngestionError) Is(target error) bool { return target == ErrIngestion }

// JobTypeMismatchError names the two job types that could not be compared.
type JobTypeMismatchError struct {
	A, B JobType
}

func (e *JobTypeMismatchError) Error() string {
	return fmt.Sprintf("job type mismatch: %q vs %q", e.A, e.B)
}

func (e *JobTypeMismatchError) Is(target error) bool { return target == ErrJobTypeMismatch }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
