package user

import "errors"

// sentinel errors for the account domain, translated to the response
// envelope at the handler boundary
var (
	ErrUsernameTaken    = errors.New("username already exists")
	ErrPhoneTaken       = errors.New("phone number already exists")
	ErrAccountNotFound  = errors.New("account does not exist")
	ErrAccountDisabled  = errors.New("account disabled")
	ErrWrongPassword    = errors.New("wrong password")
	ErrOldPasswordWrong = errors.New("original password is incorrect")
)

// ValidationError reports the first violated input rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
