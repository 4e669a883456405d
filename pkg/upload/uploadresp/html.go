package uploadresp

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// The legacy client submits the upload form into a hidden iframe and can only read
// back the text of the document loaded there, so the result is wrapped in a small
// HTML document. The payload is STATUS:CODE:INFO. Neither the status token nor the
// code can contain the delimiter, which leaves INFO free to contain anything.
const (
	htmlPrefix = `<html><body><pre id="upload-response">`
	htmlSuffix = `</pre></body></html>`
	delimiter  = ":"
)

// FormatAsString renders the unescaped STATUS:CODE:INFO triple.
func (r Result) FormatAsString() string {
	return r.Status.String() + delimiter + strconv.FormatInt(r.Code, 10) + delimiter + r.Info
}

// FormatAsHTML renders the result as the document returned to the browser.
func FormatAsHTML(r Result) []byte {
	var b bytes.Buffer
	b.WriteString(htmlPrefix)
	b.WriteString(html.EscapeString(r.FormatAsString()))
	b.WriteString(htmlSuffix)
	return b.Bytes()
}

// Parse is the client side of FormatAsHTML. It accepts either the full document or
// just the text a browser would expose for the iframe body.
func Parse(body []byte) (Result, error) {
	text := string(body)
	if start := strings.Index(text, htmlPrefix); start != -1 {
		text = text[start+len(htmlPrefix):]
		end := strings.LastIndex(text, htmlSuffix)
		if end == -1 {
			return Result{}, fmt.Errorf("unterminated upload response")
		}
		text = text[:end]
	}

	parts := strings.SplitN(html.UnescapeString(text), delimiter, 3)
	if len(parts) != 3 {
		return Result{}, fmt.Errorf("malformed upload response %q", text)
	}

	status, err := ParseStatus(parts[0])
	if err != nil {
		return Result{}, err
	}

	code, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Result{}, fmt.Errorf("malformed upload response code %q: %w", parts[1], err)
	}

	return Result{Status: status, Code: code, Info: parts[2]}, nil
}
