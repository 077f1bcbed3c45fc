package adminauth

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kartevonmorgen/kvmflows/internal/config"
)

// Middleware authenticates operator endpoints with the static bearer token
// from ADMIN_TOKEN. The comparison is constant time.
func Middleware(cfg config.Config) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:Authorization",
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			if cfg.AdminToken == "" {
				return false, nil
			}
			return subtle.ConstantTimeCompare([]byte(key), []byte(cfg.AdminToken)) == 1, nil
		},
	})
}
