package logger

import (
	"errors"
	"fmt"
	"os"
)

// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
var ErrServiceNameIsEmpty = errors.New("config log.service_name can not be empty")

// ErrorHandler reports zerolog write failures on stderr.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "zerolog: could not write event: %v\n", err)
}
