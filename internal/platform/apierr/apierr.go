package apierr

import "fmt"

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(code string, err error) *Error {
	return &Error{Status: 400, Code: code, Err: err}
}

func Unauthorized(code string, err error) *Error {
	return &Error{Status: 401, Code: code, Err: err}
}

func Forbidden(code string, err error) *Error {
	return &Error{Status: 403, Code: code, Err: err}
}

func NotFound(code string, err error) *Error {
	return &Error{Status: 404, Code: code, Err: err}
}

func Conflict(code string, err error) *Error {
	return &Error{Status: 409, Code: code, Err: err}
}

func Internal(code string, err error) *Error {
	return &Error{Status: 500, Code: code, Err: err}
}
