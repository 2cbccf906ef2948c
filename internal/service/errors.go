package service

import (
	"errors"

	customError "github.com/segyhp/chama-engine/pkg/errors"
)

// businessError passes BusinessErrors through and wraps anything else (begin,
// commit) as a database failure of op.
func businessError(op string, err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return be
	}
	return customError.WrapDatabaseError(op, err)
}
