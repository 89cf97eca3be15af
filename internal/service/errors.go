package service

import (
	"errors"
	"fmt"

	"shareit/internal/database"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrAccessDenied            = errors.New("access denied")
	ErrUnavailableItem         = errors.New("item is unavailable")
	ErrUnavailableToAddComment = errors.New("no finished approved booking to comment on")
	ErrWrongStateParameter     = errors.New("wrong state parameter")
	ErrEmailNotUnique          = errors.New("email is already in use")
	ErrValidation              = errors.New("validation failed")
)

// storeErr переводит ошибки хранилища в доменные
func storeErr(err error, what string, id interface{}) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return err
}

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
}
