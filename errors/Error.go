package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a coded error. The code classifies the failure, the message describes it,
// the wrapped error is the cause and data carries typed details for the caller.
type Error struct {
	code       ERR
	message    string
	wrappedErr error
	data       ErrDataI
}

// New creates a coded error. A trailing error parameter becomes the wrapped cause, the
// other parameters format message.
func New(code ERR, message string, params ...interface{}) *Error {
	var cause error

	if n := len(params); n > 0 {
		if err, ok := params[n-1].(error); ok {
			cause = err
			params = params[:n-1]
		}
	}

	if _, ok := ERR_name[int32(code)]; !ok {
		return &Error{code: code, message: "invalid error code", wrappedErr: cause}
	}

	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	return &Error{code: code, message: message, wrappedErr: cause}
}

// NewWithData creates a coded error carrying typed error data.
func NewWithData(code ERR, data ErrDataI, message string, params ...interface{}) *Error {
	e := New(code, message, params...)
	e.data = data

	return e
}

// Error renders "CODE (n): message", then the data if it says more than the message,
// then the cause.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%d): %s", e.code, e.code, e.message)

	if e.data != nil {
		if d := e.data.Error(); d != e.message {
			sb.WriteString(", data: ")
			sb.WriteString(d)
		}
	}

	if e.wrappedErr != nil {
		fmt.Fprintf(&sb, " -> %v", e.wrappedErr)
	}

	return sb.String()
}

// Is matches target by code, here or in any coded error directly wrapped below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	for cur := e; cur != nil; {
		if cur.code == t.code {
			return true
		}

		next, ok := cur.wrappedErr.(*Error)
		if !ok {
			return false
		}

		cur = next
	}

	return false
}

// As fills a **Error target with e, or any other target from the data or the cause.
func (e *Error) As(target interface{}) bool {
	if e == nil {
		return false
	}

	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}

	if e.data != nil && errors.As(e.data, target) {
		return true
	}

	return e.wrappedErr != nil && errors.As(e.wrappedErr, target)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

func (e *Error) Code() ERR {
	if e == nil {
		return ERR_UNKNOWN
	}

	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}

	return e.message
}

func (e *Error) WrappedErr() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

func (e *Error) Data() ErrDataI {
	if e == nil {
		return nil
	}

	return e.data
}

func (e *Error) SetData(key string, value interface{}) {
	if e.data == nil {
		e.data = &ErrData{}
	}

	e.data.SetData(key, value)
}

func (e *Error) GetData(key string) interface{} {
	if e.data == nil {
		return nil
	}

	return e.data.GetData(key)
}

// CodeOf returns the code of the outermost coded error in err's chain, ERR_UNKNOWN if
// there is none.
func CodeOf(err error) ERR {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}

	return ERR_UNKNOWN
}

func Join(errs ...error) error {
	var messages []string

	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}

	if len(messages) == 0 {
		return nil
	}

	return errors.New(strings.Join(messages, ", "))
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// AsData looks for error data assignable to target along the chain of coded errors.
func AsData(err error, target interface{}) bool {
	for err != nil {
		e, ok := err.(*Error)
		if !ok {
			return false
		}

		if e.data != nil && errors.As(e.data, target) {
			return true
		}

		err = e.wrappedErr
	}

	return false
}
