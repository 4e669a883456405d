package cmd

import (
	"github.com/labstack/echo/v4"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/webapi"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/webapi/apimiddleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouteOpts struct {
	router      webapi.Dispatcher
	apikeyCache *apimiddleware.APIKeyCache
	keyname     string
}

func setupRoutes(e *echo.Echo, opts RouteOpts) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := e.Group("/ode/upload")
	g.Use(apimiddleware.APIKeyAuth(apimiddleware.APIKeyConfig{
		Keyname:         opts.keyname,
		GetUserByAPIKey: opts.apikeyCache.GetUserByAPIKey,
	}))

	uploadController := webapi.NewUploadController(opts.router)
	g.POST("/*", uploadController.Upload)
}
