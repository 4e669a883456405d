package uploadclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/uploadresp"
)

var ErrUploadAPI = errors.New("upload api")

// Client pushes files to an upload server.
type Client struct {
	rc       *resty.Client
	basePath string
}

// NewClient creates a client for the server at baseURL. basePath is the path prefix
// upload routes live under, such as "/ode".
func NewClient(baseURL, basePath, keyname, apikey string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader(keyname, apikey)

	return &Client{rc: rc, basePath: strings.TrimSuffix(basePath, "/")}
}

// Upload is a single file to push along with its path parameters and, for global
// assets, the extra form fields.
type Upload struct {
	Kind     upload.Kind
	Params   []string
	Fields   map[string]string
	FileName string
	File     io.Reader
}

// Push sends u and decodes the server's answer. Errors are transport failures or non
// 200 responses; upload failures come back in the Result.
func (c *Client) Push(ctx context.Context, u Upload) (uploadresp.Result, error) {
	req := c.rc.R().
		SetContext(ctx).
		SetMultipartField(u.Kind.BinaryField(), u.FileName, "application/octet-stream", u.File)

	if len(u.Fields) != 0 {
		req.SetFormData(u.Fields)
	}

	resp, err := req.Post(UploadPath(c.basePath, u.Kind, u.Params...))
	if err != nil {
		return uploadresp.Result{}, err
	}

	if resp.StatusCode() != http.StatusOK {
		return uploadresp.Result{}, errors.Join(ErrUploadAPI,
			fmt.Errorf("(HTTP Status: %d)- %s", resp.StatusCode(), strings.TrimSpace(resp.String())))
	}

	return uploadresp.Parse(resp.Body())
}

// UploadPath builds /<base>/upload/<kind>/<params...>. Each path segment is escaped
// but the slashes inside a parameter are kept.
func UploadPath(basePath string, kind upload.Kind, params ...string) string {
	segments := []string{basePath, "upload", kind.String()}
	for _, p := range params {
		for _, s := range strings.Split(p, "/") {
			segments = append(segments, url.PathEscape(s))
		}
	}

	return strings.Join(segments, "/")
}
