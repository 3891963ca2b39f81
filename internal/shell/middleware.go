package shell

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shiplabel-dev/shiplabel/internal/app"
	"github.com/shiplabel-dev/shiplabel/internal/router"
)

const resolutionKey = "resolution"

func setResolution(c *gin.Context, res router.Resolution) {
	c.Set(resolutionKey, res)
}

// GetResolution returns the navigation resolved for the request, if any
func GetResolution(c *gin.Context) (router.Resolution, bool) {
	v, exists := c.Get(resolutionKey)
	if !exists {
		return router.Resolution{}, false
	}
	res, ok := v.(router.Resolution)
	return res, ok
}

// GuardMiddleware runs the section guard for the requested path. A denied request is
// redirected to the login page; the requested path is not kept.
func GuardMiddleware(a *app.App, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := a.Resolve(c.Request.URL.Path)
		if res.Redirect != "" {
			log.Debug().Str("path", res.Path).Str("redirect", res.Redirect).Msg("Navigation denied")
			c.Redirect(http.StatusFound, res.Redirect)
			c.Abort()
			return
		}

		setResolution(c, res)
		c.Next()
	}
}
