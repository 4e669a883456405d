package upload

import (
	"io"
	"mime/multipart"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Part is one section of a multipart body. Reading it is only valid until the next
// call to NextPart on the iterator that produced it.
type Part interface {
	io.ReadCloser
	FormName() string
	FileName() string
}

// PartIterator is a forward-only sequence of parts. NextPart returns io.EOF once the
// body is exhausted.
type PartIterator interface {
	NextPart() (Part, error)
}

type multipartIterator struct {
	r *multipart.Reader
}

// NewMultipartIterator adapts a streaming multipart.Reader. Parts are never buffered
// by the adapter.
func NewMultipartIterator(r *multipart.Reader) PartIterator {
	return &multipartIterator{r: r}
}

func (it *multipartIterator) NextPart() (Part, error) {
	p, err := it.r.NextPart()
	if err != nil {
		return nil, err
	}

	return p, nil
}

// spooledFile is a payload copied to disk so the multipart stream can move past it.
// Closing it removes the file. Close may be called more than once.
type spooledFile struct {
	*os.File
	once     sync.Once
	closeErr error
}

func (f *spooledFile) Close() error {
	f.once.Do(func() {
		f.closeErr = f.File.Close()
		if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
			f.closeErr = err
		}
	})

	return f.closeErr
}

func spool(dir string, r io.Reader) (*spooledFile, int64, error) {
	f, err := os.CreateTemp(dir, "ode-upload-*")
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to create spool file")
	}

	sf := &spooledFile{File: f}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = sf.Close()
		return nil, 0, errors.Wrapf(err, "unable to spool upload to %s", f.Name())
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = sf.Close()
		return nil, 0, errors.Wrapf(err, "unable to rewind spool file %s", f.Name())
	}

	return sf, n, nil
}
