package formspark

import (
	"fmt"
	"net/http"
)

// Error is the structured failure value returned by the parser. It carries
// the HTTP status code the enclosing request layer should respond with, a
// machine-readable code for branching, and a human-readable message.
//
// Callers branch on the error kind with errors.Is against the predefined
// sentinel values; two Errors match when their Codes are equal, so detail
// differences in Message or Details never break the comparison.
type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

// Is reports whether target is an Error with the same Code.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of the error with a custom message.
func (e Error) WithMessage(format string, args ...any) Error {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e Error) WithDetails(details map[string]string) Error {
	e.Details = details
	return e
}

// Configuration and size-limit errors, detected before any stream read.
var (
	ErrNotMultipart       = Error{Status: http.StatusBadRequest, Code: "NOT_MULTIPART", Message: "content type is not multipart/form-data"}
	ErrMissingBoundary    = Error{Status: http.StatusBadRequest, Code: "MISSING_BOUNDARY", Message: "missing boundary in Content-Type header"}
	ErrUnsupportedCharset = Error{Status: http.StatusBadRequest, Code: "UNSUPPORTED_CHARSET", Message: "unsupported charset"}
	ErrLengthRequired     = Error{Status: http.StatusLengthRequired, Code: "LENGTH_REQUIRED", Message: "content length required"}
	ErrBodyTooLarge       = Error{Status: http.StatusRequestEntityTooLarge, Code: "BODY_TOO_LARGE", Message: "request entity too large"}
)

// Protocol errors raised while consuming the stream. Each stage of the scan
// has its own message so a malformed body is diagnosable from logs alone.
var (
	ErrUnknownDelimiter   = Error{Status: http.StatusBadRequest, Code: "UNKNOWN_DELIMITER", Message: "invalid multipart/form-data: unable to determine line delimiter"}
	ErrMissingDisposition = Error{Status: http.StatusBadRequest, Code: "MISSING_DISPOSITION", Message: "missing Content-Disposition header"}
	ErrMissingName        = Error{Status: http.StatusBadRequest, Code: "MISSING_NAME", Message: "missing name parameter in Content-Disposition header"}
	ErrMalformedHeaders   = Error{Status: http.StatusBadRequest, Code: "MALFORMED_HEADERS", Message: "invalid multipart/form-data: malformed part headers"}
	ErrHeaderTerminator   = Error{Status: http.StatusBadRequest, Code: "HEADER_TERMINATOR", Message: "invalid multipart/form-data: part header terminator not found"}
	ErrNoClosingBoundary  = Error{Status: http.StatusBadRequest, Code: "NO_CLOSING_BOUNDARY", Message: "invalid multipart/form-data: closing boundary not found"}
	ErrNoBodyTerminator   = Error{Status: http.StatusBadRequest, Code: "NO_BODY_TERMINATOR", Message: "invalid multipart/form-data: part body terminator not found"}
	ErrFieldDecode        = Error{Status: http.StatusBadRequest, Code: "FIELD_DECODE", Message: "unable to decode form field"}
	ErrStreamRead         = Error{Status: http.StatusBadRequest, Code: "STREAM_READ", Message: "failed to read request body"}
)
