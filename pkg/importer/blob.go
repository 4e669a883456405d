package importer

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-uuid"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/uploadresp"
	"github.com/pkg/errors"
)

type blob struct {
	uuid     string
	size     int64
	checksum string
}

// writeBlob copies r into a new blob under the storage root. Anything over limit bytes
// is rejected with FILE_TOO_LARGE and nothing is kept.
func (i *FileImporter) writeBlob(r io.Reader, limit int64, what string) (*blob, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate uuid")
	}

	path := odemodel.BlobPath(i.storageRoot, id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %s", path)
	}

	hasher := md5.New()
	n, err := io.Copy(io.MultiWriter(f, hasher), io.LimitReader(r, limit+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		i.removeFile(path)
		return nil, errors.Wrapf(err, "unable to write %s", path)
	case closeErr != nil:
		i.removeFile(path)
		return nil, errors.Wrapf(closeErr, "unable to close %s", path)
	case n > limit:
		i.removeFile(path)
		return nil, uploadresp.NewError(uploadresp.FileTooLarge, "%s is larger than the %s limit", what, humanize.Bytes(uint64(limit)))
	}

	return &blob{uuid: id, size: n, checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

func (i *FileImporter) removeBlob(id string) {
	i.removeFile(odemodel.BlobPath(i.storageRoot, id))
}

func (i *FileImporter) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		i.logger.WithError(err).Warnf("Unable to remove %s", path)
	}
}
