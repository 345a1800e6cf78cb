// Package serviceutils holds the JSON envelope shared by the HTTP handlers.
package serviceutils

import (
	"github.com/labstack/echo/v4"

	"github.com/locvowork/xlsxsplit/internal/logger"
)

// Response is the JSON envelope of every non-binary API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResponseSuccess writes a successful envelope.
func ResponseSuccess(c echo.Context, status int, msg string, data interface{}) error {
	return c.JSON(status, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// ResponseError logs err and writes a failed envelope carrying its message.
func ResponseError(c echo.Context, status int, msg string, err error) error {
	resp := Response{Message: msg}
	if err != nil {
		resp.Error = err.Error()
		ctx := c.Request().Context()
		if status >= 500 {
			logger.ErrorLog(ctx, msg, err)
		} else {
			logger.WarnLog(ctx, "%s: %v", msg, err)
		}
	}
	return c.JSON(status, resp)
}
