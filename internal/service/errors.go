package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage error")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrInvalidSnapshot     = fmt.Errorf("%w: invalid backup document, metadata and data are required", ErrValidation)
	ErrInvalidConfirmation = fmt.Errorf("%w: invalid confirmation token", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: status must be disponivel, vendido or reservado", ErrValidation)
	ErrInvalidConfigType   = fmt.Errorf("%w: tipo must be string, number, boolean or json", ErrValidation)
	ErrLotCodeExists       = fmt.Errorf("%w: a lot with this codigo already exists", ErrConflict)
	ErrConfigKeyExists     = fmt.Errorf("%w: a config entry with this chave already exists", ErrConflict)
	ErrUsernameExists      = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrInvalidCreds        = errors.New("invalid username or password")
	ErrRegistrationClosed  = fmt.Errorf("%w: registration is closed, an admin already exists", ErrForbidden)
	ErrLotNotFound         = fmt.Errorf("%w: lot", ErrNotFound)
	ErrSlideNotFound       = fmt.Errorf("%w: slide", ErrNotFound)
	ErrConfigNotFound      = fmt.Errorf("%w: config entry", ErrNotFound)
	ErrBackupNotFound      = fmt.Errorf("%w: backup", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// translate maps a repository error to a service error. notFound is
// returned for gorm.ErrRecordNotFound; other errors become ErrStorage.
func translate(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict), errors.Is(err, ErrStorage), errors.Is(err, ErrForbidden):
		return err
	default:
		return storageErr(err)
	}
}
