package errorx

import "fmt"

type Error struct {
	Code    Code
	Message string
}

var Unknown = Error{Code: Internal, Message: "Request failed"}

func New(code Code, format string, args ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}

	return e.Code == t.Code
}
