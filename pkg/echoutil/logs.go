package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL
		BEGIN := time.Now()
		c.Logger().Infof("< request @[%s] %s %s", BEGIN, meth, path)

		err := next(c)

		END := time.Now()
		c.Logger().Infof(
			"> response @[%s] status = %d (for request @[%s] %s %s) in %v / error = %+v",
			END, c.Response().Status, BEGIN, meth, path, END.Sub(BEGIN), err,
		)
		return err
	}
}

// SetLevel sets log level of e by name: debug, info, warn, error or off.
//
// Empty or unknown name means warn.
func SetLevel(e *echo.Echo, loglevel string) {
	switch strings.ToLower(loglevel) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "warn", "":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
}
