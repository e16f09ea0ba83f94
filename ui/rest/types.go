package rest

import (
	"errors"

	pkgError "github.com/AzielCF/az-plant/pkg/error"
	"github.com/AzielCF/az-plant/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, message string, results any) error {
	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: message,
		Results: results,
	})
}

// fail renders typed errors with their own status and code, anything else as 500.
func fail(c *fiber.Ctx, err error) error {
	res := utils.ResponseData{
		Status:  fiber.StatusInternalServerError,
		Code:    "INTERNAL_SERVER_ERROR",
		Message: err.Error(),
	}
	var generic pkgError.GenericError
	if errors.As(err, &generic) {
		res.Status = generic.StatusCode()
		res.Code = generic.ErrCode()
	}
	return c.Status(res.Status).JSON(res)
}

func unavailable(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
		Status:  fiber.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: what + " is not enabled in this process",
	})
}
