package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorInvalidCheckConfig is returned when a custom check declares a rule
// type without the parameters that type requires. Raised at registration,
// before any data is evaluated.
var ErrorInvalidCheckConfig = errors.New("invalid check configuration")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
