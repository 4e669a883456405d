package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/lakshyashishir/appinventor-sources/pkg/clog"
	"github.com/lakshyashishir/appinventor-sources/pkg/crashreport"
	"github.com/lakshyashishir/appinventor-sources/pkg/obj"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/uploadresp"
)

// Importer persists upload payloads. Every method takes ownership of r and closes it.
// Domain failures are returned as *uploadresp.Error; anything else is treated as an
// unexpected fault.
type Importer interface {
	ImportProject(ctx context.Context, userID int, projectName string, r io.ReadCloser) (string, error)
	ImportFile(ctx context.Context, userID int, projectID int64, filePath string, r io.ReadCloser) (int64, error)
	ImportUserFile(ctx context.Context, userID int, filePath string, r io.ReadCloser) error
	ImportTempFile(ctx context.Context, r io.ReadCloser) (string, error)
	ImportGlobalAsset(ctx context.Context, userID int, name, assetType, folder string, r io.ReadCloser) (int64, error)
}

// OpenPartsFunc opens the multipart body. It is only called once the path has been
// classified.
type OpenPartsFunc func() (PartIterator, error)

type Router struct {
	importer  Importer
	reporter  crashreport.Reporter
	extractor *Extractor
	logger    log.Interface
}

type RouterOption func(*Router)

func WithExtractor(e *Extractor) RouterOption {
	return func(r *Router) {
		r.extractor = e
	}
}

func WithLogger(logger log.Interface) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

func NewRouter(importer Importer, reporter crashreport.Reporter, opts ...RouterOption) *Router {
	obj.MustNotBeNil("importer", importer)
	obj.MustNotBeNil("reporter", reporter)

	r := &Router{
		importer:  importer,
		reporter:  reporter,
		extractor: NewExtractor(""),
		logger:    clog.UsingCtx(clog.UploadCtx),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// DispatchRequest handles an upload arriving as an HTTP request. The kind comes from
// the decoded URL path.
func (r *Router) DispatchRequest(ctx context.Context, userID int, req *http.Request) uploadresp.Result {
	return r.Dispatch(ctx, userID, req.URL.Path, func() (PartIterator, error) {
		mr, err := req.MultipartReader()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotMultipart, err)
		}

		return NewMultipartIterator(mr), nil
	})
}

// Dispatch classifies path, extracts the payload from the parts returned by open and
// routes it to the importer. It always produces a Result; panics included.
func (r *Router) Dispatch(ctx context.Context, userID int, path string, open OpenPartsFunc) (result uploadresp.Result) {
	start := time.Now()
	kind := "unknown"
	var payload *Payload

	defer func() {
		if p := recover(); p != nil {
			// The importer closes what it was handed; this covers a panic before it ran.
			payload.discard()
			err := fmt.Errorf("panic during upload: %v", p)
			r.logger.WithFields(log.Fields{"path": path, "user": userID}).WithError(err).Error("Upload failed")
			r.reporter.Report(ctx, "unexpected fault during upload", err)
			result = uploadresp.NewFailure(uploadresp.IOException, "Server error during upload")
		}

		requestsTotal.WithLabelValues(kind, result.Status.String()).Inc()
		requestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	target, err := Classify(path)
	if err != nil {
		return r.reject(ctx, path, err)
	}

	kind = target.Kind.String()

	parts, err := open()
	if err != nil {
		return r.reject(ctx, path, err)
	}

	payload, err = r.extractor.Extract(parts, target.Kind)
	if err != nil {
		return r.reject(ctx, path, err)
	}

	return r.Route(ctx, userID, newRequest(target, payload))
}

// Route makes exactly one importer call for req. Ownership of req.Payload passes to
// the importer.
func (r *Router) Route(ctx context.Context, userID int, req *Request) uploadresp.Result {
	var (
		result uploadresp.Result
		err    error
	)

	switch req.Kind {
	case KindProject:
		var info string
		info, err = r.importer.ImportProject(ctx, userID, req.Param(0), req.Payload)
		result = uploadresp.NewSuccess(0, info)
	case KindFile:
		var modTime int64
		modTime, err = r.importer.ImportFile(ctx, userID, req.ProjectID, req.Param(1), req.Payload)
		result = uploadresp.NewSuccess(modTime, "")
	case KindUserFile:
		err = r.importer.ImportUserFile(ctx, userID, req.Param(0), req.Payload)
		result = uploadresp.NewSuccess(0, "")
	case KindComponent:
		var tempID string
		tempID, err = r.importer.ImportTempFile(ctx, req.Payload)
		result = uploadresp.NewSuccess(0, tempID)
	case KindGlobalAsset:
		var assetID int64
		assetID, err = r.importer.ImportGlobalAsset(ctx, userID,
			req.Field(AssetNameField), req.Field(AssetTypeField), req.Field(AssetFolderField), req.Payload)
		result = uploadresp.NewSuccess(assetID, "")
	default:
		if req.Payload != nil {
			_ = req.Payload.Close()
		}
		return r.reject(ctx, req.Path, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind))
	}

	fields := log.Fields{"kind": req.Kind.String(), "user": userID, "path": req.Path, "filename": req.PayloadName}

	if err != nil {
		var uerr *uploadresp.Error
		if errors.As(err, &uerr) {
			r.logger.WithFields(fields).Warnf("Import rejected: %s", uerr)
			return uerr.Result
		}

		r.logger.WithFields(fields).WithError(err).Error("Import failed")
		r.reporter.Report(ctx, fmt.Sprintf("%s import failed", req.Kind), err)
		return uploadresp.NewFailure(uploadresp.IOException, fmt.Sprintf("Server error during %s upload", req.Kind))
	}

	r.logger.WithFields(fields).Info("Upload imported")
	return result
}

// reject turns an error raised before the import call into a Result. Missing form
// fields are the client's problem and are only logged.
func (r *Router) reject(ctx context.Context, path string, err error) uploadresp.Result {
	status := statusFor(err)
	entry := r.logger.WithField("path", path).WithError(err)

	switch status {
	case uploadresp.MissingFields:
		entry.Warn("Upload is missing fields")
		return uploadresp.NewFailure(status, err.Error())
	case uploadresp.IOException:
		entry.Error("Unable to read upload")
		r.reporter.Report(ctx, "error reading upload", err)
		return uploadresp.NewFailure(status, "IO error during upload")
	default:
		entry.Warn("Bad upload request")
		r.reporter.Report(ctx, "bad upload request", err)
		return uploadresp.NewFailure(status, err.Error())
	}
}
