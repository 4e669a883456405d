package upload

import "io"

// Request is a classified upload whose payload has been located. Payload is owned by
// whoever receives the Request; the Router hands it to the importer.
type Request struct {
	Path      string
	Kind      Kind
	Params    []string
	ProjectID int64
	Fields    map[string]string

	Payload io.ReadCloser

	// PayloadName is the client's file name. Only used for logging.
	PayloadName string
}

func newRequest(target *Target, payload *Payload) *Request {
	return &Request{
		Path:        target.Path,
		Kind:        target.Kind,
		Params:      target.Params,
		ProjectID:   target.ProjectID,
		Fields:      payload.Fields,
		Payload:     payload.Stream,
		PayloadName: payload.FileName,
	}
}

// Param returns the i'th path parameter or "" if there is none.
func (r *Request) Param(i int) string {
	if i < 0 || i >= len(r.Params) {
		return ""
	}

	return r.Params[i]
}

func (r *Request) Field(name string) string {
	return r.Fields[name]
}
