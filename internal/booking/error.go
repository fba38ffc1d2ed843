package booking

import (
	"errors"
	"fmt"
)

var (
	ErrIdempotencyKey     = errors.New("idempotency key not found")
	ErrNextID             = errors.New("get next id from generator")
	ErrRecordNotFound     = errors.New("record not found")
	ErrVersionConflict    = errors.New("property was modified concurrently")
	ErrPropertyBusy       = errors.New("property is locked by another writer")
	ErrAdvisorUnavailable = errors.New("pricing advisor unavailable")
)

type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputErr *InputError

	if errors.As(err, &inputErr) {
		return inputErr
	}

	return nil
}

func (ie *InputError) fieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) addError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

// orNil returns the error only when a field failed.
func (ie *InputError) orNil() error {
	if ie.fieldsCount() > 0 {
		return ie
	}

	return nil
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}
