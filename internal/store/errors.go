package store

import (
	"errors"
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	errNotFound   = apierror.ErrNotFound
	errConstraint = apierror.ErrConstraintViolation
)

// translate maps driver and gorm errors onto the apierror taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errNotFound
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s", errConstraint, se.Error())
	}
	return err
}
