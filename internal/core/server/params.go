package server

import (
	"strconv"

	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/validation"

	"github.com/gofiber/fiber/v2"
)

// ErrInvalidBody is returned when the request body is not valid JSON for the endpoint.
var ErrInvalidBody = apperr.New(apperr.KindValidation, "invalid_body", "invalid request body")

// ParamID parses a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(name, name+" must be a positive integer")
	}
	return id, nil
}

// QueryID parses an optional positive integer query parameter; absent means zero.
func QueryID(c *fiber.Ctx, name string) (uint64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(name, name+" must be a positive integer")
	}
	return id, nil
}

// Bind decodes the JSON body into dst and runs its validate tags.
func Bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	return validation.Struct(dst)
}
