package uploadresp

import "fmt"

// Status is the outcome classification that travels in the response body.
type Status int

const (
	Success Status = iota
	IOException
	FileTooLarge
	NotProjectArchive
	NameCollision
	NotFound
	BadRequest
	MissingFields
)

var statusTokens = [...]string{
	Success:           "SUCCESS",
	IOException:       "IO_EXCEPTION",
	FileTooLarge:      "FILE_TOO_LARGE",
	NotProjectArchive: "NOT_PROJECT_ARCHIVE",
	NameCollision:     "NAME_COLLISION",
	NotFound:          "NOT_FOUND",
	BadRequest:        "BAD_REQUEST",
	MissingFields:     "MISSING_FIELDS",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusTokens) {
		return fmt.Sprintf("Status(%d)", int(s))
	}

	return statusTokens[s]
}

// ParseStatus maps a wire token back to its Status.
func ParseStatus(token string) (Status, error) {
	for i, t := range statusTokens {
		if t == token {
			return Status(i), nil
		}
	}

	return IOException, fmt.Errorf("unknown upload status %q", token)
}

// Result is what an upload request produces. For a success Code holds a modification
// timestamp or an assigned identifier (or 0) and Info an optional opaque string. For
// a failure Info holds the human-readable message.
type Result struct {
	Status Status
	Code   int64
	Info   string
}

func (r Result) IsSuccess() bool {
	return r.Status == Success
}

func NewSuccess(code int64, info string) Result {
	return Result{Status: Success, Code: code, Info: info}
}

func NewFailure(status Status, msg string) Result {
	return Result{Status: status, Info: msg}
}

// Error is a failure raised by the import subsystem that already carries the
// Result to send back. Callers pass it through verbatim.
type Error struct {
	Result Result
}

func NewError(status Status, format string, args ...interface{}) *Error {
	return &Error{Result: NewFailure(status, fmt.Sprintf(format, args...))}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Result.Status, e.Result.Info)
}
