package check

import (
	"fmt"
)

// These functions are meant to simplify panicking in the wiring code of binaries.
// Always consider returning errors instead of panicking!

// PanicIfNotf panics on false with the given message.
func PanicIfNotf(flag bool, format string, args ...any) {
	if !flag {
		panic(fmt.Sprintf(format, args...))
	}
}

// PanicIfErr calls panic(err) if err is not nil.
func PanicIfErr(err error) {
	if err != nil {
		panic(err)
	}
}
