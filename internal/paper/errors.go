package paper

import (
	"investopaper/internal/apperr"
)

func errNotInitialized() error {
	return apperr.NotFound("paper portfolio is not initialized")
}

func errMissingPrice(symbol string) error {
	return apperr.Validation("missing last price for %s", symbol)
}

func errInsufficientCash() error {
	return apperr.Validation("insufficient cash for this order")
}

func errInsufficientQty() error {
	return apperr.Validation("insufficient position quantity to sell")
}
