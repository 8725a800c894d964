package dialog

import "fmt"

// DialogError carries a stable machine code next to a human message so the
// HTTP layer can map failures without string matching.
type DialogError struct {
	Code    string
	Message string
}

func (e *DialogError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newDialogError(code, msg string) error {
	return &DialogError{Code: code, Message: msg}
}
