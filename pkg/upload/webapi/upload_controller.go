package webapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lakshyashishir/appinventor-sources/pkg/crashreport"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/uploadresp"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/webapi/apimiddleware"
)

// Dispatcher turns an upload request into its result. *upload.Router implements it.
type Dispatcher interface {
	DispatchRequest(ctx context.Context, userID int, req *http.Request) uploadresp.Result
}

type UploadController struct {
	dispatcher Dispatcher
}

func NewUploadController(dispatcher Dispatcher) *UploadController {
	return &UploadController{dispatcher: dispatcher}
}

// Upload handles POST /<base>/upload/<kind>/... The outcome is always reported in the
// HTML body with a 200, since the browser clients read it from a hidden frame.
func (c *UploadController) Upload(ctx echo.Context) error {
	user, ok := ctx.Get(apimiddleware.UserKey).(*odemodel.User)
	if !ok || user == nil {
		return echo.ErrUnauthorized
	}

	req := ctx.Request()
	result := c.dispatcher.DispatchRequest(crashreport.WithRequest(req.Context(), req), user.ID, req)

	setNoCacheHeaders(ctx.Response().Header())
	return ctx.Blob(http.StatusOK, "text/html; charset=utf-8", uploadresp.FormatAsHTML(result))
}

func setNoCacheHeaders(h http.Header) {
	h.Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "Fri, 01 Jan 1990 00:00:00 GMT")
}
