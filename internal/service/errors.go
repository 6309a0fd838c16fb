package service

import (
	"errors"
	"fmt"

	"agrirent-backend/internal/domain"
)

// storeError keeps ErrNotFound and folds every other store failure, timeouts
// included, into ErrStoreUnavailable.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
