package utils

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// PlayRateLimitKey scopes participant rate limiting to one campaign and client address
func PlayRateLimitKey(publicID, ip string) string {
	return fmt.Sprintf("rl:play:%s:%s", publicID, ip)
}

// ParseUint reads a positive numeric route parameter
func ParseUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(v), nil
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}
