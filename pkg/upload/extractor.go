package upload

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/lakshyashishir/appinventor-sources/pkg/clog"
)

// DefaultMaxFieldSize bounds a single scalar form field.
const DefaultMaxFieldSize = 64 * 1024

// Payload is what extraction found in the body. Fields is only populated for kinds
// that take scalar fields. The caller owns Stream and must close it.
type Payload struct {
	Fields   map[string]string
	Stream   io.ReadCloser
	FileName string
}

func (p *Payload) discard() {
	if p != nil && p.Stream != nil {
		_ = p.Stream.Close()
		p.Stream = nil
	}
}

// Extractor finds the payload of an upload in a forward-only sequence of parts.
type Extractor struct {
	// SpoolDir holds payloads that have to be buffered. Empty means os.TempDir().
	SpoolDir     string
	MaxFieldSize int64
	logger       log.Interface
}

func NewExtractor(spoolDir string) *Extractor {
	return &Extractor{
		SpoolDir:     spoolDir,
		MaxFieldSize: DefaultMaxFieldSize,
		logger:       clog.UsingCtx(clog.UploadCtx),
	}
}

// Extract uses an Extractor that spools into the system temp directory.
func Extract(parts PartIterator, kind Kind) (*Payload, error) {
	return NewExtractor("").Extract(parts, kind)
}

// Extract walks parts until it has what kind needs. Kinds without scalar fields stop
// at the first matching binary part and hand it back unread. The multi-field kind
// reads every part; its binary part is spooled so the iterator can continue. On error
// nothing retained is left open.
func (e *Extractor) Extract(parts PartIterator, kind Kind) (*Payload, error) {
	spec := kind.spec()
	if spec == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}

	payload := &Payload{}
	if len(spec.fields) != 0 {
		payload.Fields = make(map[string]string)
	}

	for {
		part, err := parts.NextPart()
		if err == io.EOF {
			break
		}

		if err != nil {
			payload.discard()
			return nil, fmt.Errorf("%w: %w", ErrPartIO, err)
		}

		done, err := e.handlePart(spec, payload, part)
		if err != nil {
			payload.discard()
			return nil, err
		}

		if done {
			return payload, nil
		}
	}

	if err := checkComplete(spec, payload); err != nil {
		payload.discard()
		return nil, err
	}

	return payload, nil
}

// A part is binary when it carries a filename or arrives under the kind's binary
// field name. Everything else is a scalar field.
func isBinary(spec *kindSpec, part Part) bool {
	return part.FileName() != "" || part.FormName() == spec.binaryField
}

func (e *Extractor) handlePart(spec *kindSpec, payload *Payload, part Part) (bool, error) {
	name := part.FormName()

	if !isBinary(spec, part) {
		if !spec.acceptsField(name) {
			return false, e.skipField(spec, part)
		}

		value, err := e.readField(part)
		_ = part.Close()
		if err != nil {
			return false, fmt.Errorf("field %q: %w", name, err)
		}

		payload.Fields[name] = value
		return false, nil
	}

	if name != spec.binaryField || payload.Stream != nil {
		reason := "unexpected"
		if name == spec.binaryField {
			reason = "duplicate"
		}

		e.log().WithFields(log.Fields{
			"kind":     spec.token,
			"field":    name,
			"filename": part.FileName(),
			"reason":   reason,
		}).Warn("Discarding file part")
		discardedParts.WithLabelValues(spec.token, reason).Inc()
		_ = part.Close()
		return false, nil
	}

	if !spec.scanAll {
		payload.Stream = part
		payload.FileName = part.FileName()
		return true, nil
	}

	spooled, n, err := spool(e.spoolDir(), part)
	_ = part.Close()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPartIO, err)
	}

	e.log().WithFields(log.Fields{
		"kind":  spec.token,
		"field": name,
		"size":  humanize.Bytes(uint64(n)),
	}).Debug("Spooled upload payload")

	payload.Stream = spooled
	payload.FileName = part.FileName()
	return false, nil
}

// skipField drains a scalar field the kind has no use for. Its size is not capped.
func (e *Extractor) skipField(spec *kindSpec, part Part) error {
	defer part.Close()

	n, err := io.Copy(io.Discard, part)
	if err != nil {
		return fmt.Errorf("field %q: %w: %w", part.FormName(), ErrPartIO, err)
	}

	e.log().WithFields(log.Fields{
		"kind":  spec.token,
		"field": part.FormName(),
		"size":  humanize.Bytes(uint64(n)),
	}).Debug("Ignoring form field")
	discardedParts.WithLabelValues(spec.token, "unrecognized").Inc()
	return nil
}

// readField reads a field the kind uses, up to MaxFieldSize bytes.
func (e *Extractor) readField(part Part) (string, error) {
	limit := e.MaxFieldSize
	if limit <= 0 {
		limit = DefaultMaxFieldSize
	}

	b, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPartIO, err)
	}

	if int64(len(b)) > limit {
		return "", fmt.Errorf("%w: %w: limit is %s", ErrPartIO, ErrFieldTooLarge, humanize.IBytes(uint64(limit)))
	}

	return string(b), nil
}

func checkComplete(spec *kindSpec, payload *Payload) error {
	var missing []string
	for _, f := range spec.fields {
		if _, ok := payload.Fields[f.name]; f.required && !ok {
			missing = append(missing, f.name)
		}
	}

	switch {
	case len(missing) != 0:
		if payload.Stream == nil {
			missing = append(missing, spec.binaryField)
		}
		return &MissingFieldsError{Kind: spec.kind, Fields: missing}
	case payload.Stream == nil:
		return fmt.Errorf("%w: %s", ErrMissingFileField, spec.binaryField)
	default:
		return nil
	}
}

func (e *Extractor) spoolDir() string {
	if e.SpoolDir == "" {
		return os.TempDir()
	}

	return e.SpoolDir
}

func (e *Extractor) log() log.Interface {
	if e.logger == nil {
		return clog.UsingCtx(clog.UploadCtx)
	}

	return e.logger
}
