package service

import (
	"fmt"

	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/store"
)

// storeErr converts a persistence failure into a domain error. Missing
// records become NOT_FOUND; everything else is STORE_UNAVAILABLE.
func storeErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if store.IsNotFound(err) {
		return domainerrors.Wrap(err, domainerrors.CodeNotFound, op+": not found")
	}
	if domainerrors.Is(err, store.ErrAlreadyExists) {
		return domainerrors.Wrap(err, domainerrors.CodeAlreadyExists, op+": already exists")
	}
	if domainerrors.Is(err, store.ErrNotEmpty) {
		return domainerrors.Wrap(err, domainerrors.CodeConflict, op+": owner already has data")
	}
	if domainerrors.Is(err, store.ErrInvalidInput) {
		return domainerrors.Wrap(err, domainerrors.CodeValidation, op+": invalid input")
	}
	return domainerrors.StoreUnavailable(err, fmt.Sprintf("%s failed", op))
}
