package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when a caller supplied malformed input.
	InvalidArgument = ErrorKind("Invalid Argument")

	// ArgumentRequired is returned when a required input is missing.
	ArgumentRequired = ErrorKind("Argument Required")

	// Unsupported is returned when a feature is not available in this build or configuration.
	Unsupported = ErrorKind("Unsupported")

	// Unavailable is returned when a dependency such as the Bitcoin node can't be reached.
	Unavailable = ErrorKind("Unavailable")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
