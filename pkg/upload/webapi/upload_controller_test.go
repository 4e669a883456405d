package webapi

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lakshyashishir/appinventor-sources/pkg/importer"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/stor"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/uploadresp"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/webapi/apimiddleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	msgs []string
}

func (r *recordingReporter) Report(_ context.Context, msg string, _ error) {
	r.msgs = append(r.msgs, msg)
}

func newController(t *testing.T, projects ...odemodel.Project) (*UploadController, *recordingReporter) {
	t.Helper()
	reporter := &recordingReporter{}
	stors := stor.NewInMemoryStors(nil, projects)
	fileImporter := importer.NewFileImporter(stors, t.TempDir(), importer.DefaultLimits())
	router := upload.NewRouter(fileImporter, reporter, upload.WithExtractor(upload.NewExtractor(t.TempDir())))
	return NewUploadController(router), reporter
}

// setupEchoContext builds a multipart request for target with a single file part.
func setupEchoContext(t *testing.T, target, field, content string, user *odemodel.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, "upload.bin")
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if user != nil {
		c.Set(apimiddleware.UserKey, user)
	}

	return c, rec
}

func assertUploadResponse(t *testing.T, rec *httptest.ResponseRecorder) uploadresp.Result {
	t.Helper()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "no-cache, no-store, max-age=0, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "Fri, 01 Jan 1990 00:00:00 GMT", rec.Header().Get("Expires"))

	result, err := uploadresp.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	return result
}

func TestUpload(t *testing.T) {
	user := &odemodel.User{ID: 1}
	controller, reporter := newController(t, odemodel.Project{ID: 5, Name: "P", OwnerID: 1})

	t.Run("SuccessfulFileSave", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, "/ode/upload/file/5/src/a/Screen1.scm", upload.FileField, "scm", user)
		require.NoError(t, controller.Upload(ctx))

		result := assertUploadResponse(t, rec)
		assert.Equal(t, uploadresp.Success, result.Status)
		assert.NotZero(t, result.Code)
	})

	t.Run("ComponentReturnsTempID", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, "/ode/upload/component/Ext.aix", upload.ComponentArchiveField, "aix", user)
		require.NoError(t, controller.Upload(ctx))

		result := assertUploadResponse(t, rec)
		assert.Equal(t, uploadresp.Success, result.Status)
		assert.Contains(t, result.Info, odemodel.TempFilePrefix)
	})

	t.Run("OtherUsersProjectIsNotFound", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, "/ode/upload/file/5/a.txt", upload.FileField, "x", &odemodel.User{ID: 2})
		require.NoError(t, controller.Upload(ctx))

		result := assertUploadResponse(t, rec)
		assert.Equal(t, uploadresp.NotFound, result.Status)
	})

	t.Run("NotAProjectArchive", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, "/ode/upload/project/NewProject", upload.ProjectArchiveField, "not a zip", user)
		require.NoError(t, controller.Upload(ctx))

		result := assertUploadResponse(t, rec)
		assert.Equal(t, uploadresp.NotProjectArchive, result.Status)
	})

	t.Run("UnknownKindIsStill200", func(t *testing.T) {
		before := len(reporter.msgs)
		ctx, rec := setupEchoContext(t, "/ode/upload/widget/x", "uploadWidget", "x", user)
		require.NoError(t, controller.Upload(ctx))

		result := assertUploadResponse(t, rec)
		assert.Equal(t, uploadresp.BadRequest, result.Status)
		assert.Len(t, reporter.msgs, before+1)
	})
}

func TestUploadRequiresUser(t *testing.T) {
	controller, _ := newController(t)
	ctx, _ := setupEchoContext(t, "/ode/upload/userfile/k", upload.UserFileField, "k", nil)

	assert.Equal(t, echo.ErrUnauthorized, controller.Upload(ctx))
}
