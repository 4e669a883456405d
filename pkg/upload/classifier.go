package upload

import (
	"fmt"
	"strings"
)

// Target is what the path says about an upload: its kind and the parameters that
// follow the kind token.
type Target struct {
	Path   string
	Kind   Kind
	Params []string

	// ProjectID is only set for KindFile.
	ProjectID int64
}

// Classify parses an upload path. The kind token is read from an unlimited split;
// parameters come from a second split bounded by the kind's limit so a trailing file
// path such as src/appinventor/Screen1.scm stays whole.
func Classify(path string) (*Target, error) {
	segments := strings.Split(path, "/")
	if len(segments) <= kindIndex {
		return nil, fmt.Errorf("%w: no upload kind in path %q", ErrUnknownKind, path)
	}

	spec := lookupToken(segments[kindIndex])
	if spec == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, segments[kindIndex])
	}

	segments = strings.SplitN(path, "/", spec.splitLimit)
	target := &Target{Path: path, Kind: spec.kind}
	for _, p := range spec.params {
		if p.index >= len(segments) || segments[p.index] == "" {
			return nil, fmt.Errorf("%w: %s upload needs a %s", ErrMissingPathParam, spec.token, p.name)
		}

		if err := p.set(target, segments[p.index]); err != nil {
			return nil, err
		}
	}

	return target, nil
}
