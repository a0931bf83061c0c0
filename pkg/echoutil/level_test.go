package echoutil_test

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func levelName(e *echo.Echo) string {
	switch e.Logger.Level() {
	case log.DEBUG:
		return "DEBUG"
	case log.INFO:
		return "INFO"
	case log.WARN:
		return "WARN"
	case log.ERROR:
		return "ERROR"
	case log.OFF:
		return "OFF"
	}
	return "unknown"
}
