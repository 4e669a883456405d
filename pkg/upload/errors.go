package upload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lakshyashishir/appinventor-sources/pkg/upload/uploadresp"
)

// Classification errors: decided from the path or the request shape, before any
// import is attempted.
var (
	ErrUnknownKind        = errors.New("unknown upload kind")
	ErrMissingPathParam   = errors.New("missing path parameter")
	ErrMalformedPathParam = errors.New("malformed path parameter")
	ErrNotMultipart       = errors.New("request is not multipart")
)

// Extraction errors.
var (
	ErrMissingFileField = errors.New("missing required file field")

	// ErrPartIO wraps failures reading the multipart body itself.
	ErrPartIO = errors.New("error reading upload")

	// ErrFieldTooLarge is always wrapped together with ErrPartIO.
	ErrFieldTooLarge = errors.New("form field too large")
)

// MissingFieldsError names every required field that never arrived.
type MissingFieldsError struct {
	Kind   Kind
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields for %s upload: %s", e.Kind, strings.Join(e.Fields, ", "))
}

// statusFor classifies an error raised before the import call.
func statusFor(err error) uploadresp.Status {
	var missing *MissingFieldsError

	switch {
	case errors.Is(err, ErrUnknownKind),
		errors.Is(err, ErrMissingPathParam),
		errors.Is(err, ErrMalformedPathParam),
		errors.Is(err, ErrNotMultipart):
		return uploadresp.BadRequest
	case errors.Is(err, ErrMissingFileField), errors.As(err, &missing):
		return uploadresp.MissingFields
	default:
		return uploadresp.IOException
	}
}
