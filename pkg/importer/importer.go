package importer

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/lakshyashishir/appinventor-sources/pkg/clog"
	"github.com/lakshyashishir/appinventor-sources/pkg/lock"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/stor"
	"github.com/lakshyashishir/appinventor-sources/pkg/upload/uploadresp"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

var validProjectName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// FileImporter stores upload payloads as blobs under storageRoot and records them
// through the stors. Every method closes the reader it is given.
type FileImporter struct {
	stors       *stor.Stors
	storageRoot string
	limits      Limits

	// projectLocker serializes file saves within a project.
	projectLocker *lock.IdLocker[int64]
	logger        log.Interface
}

func NewFileImporter(stors *stor.Stors, storageRoot string, limits Limits) *FileImporter {
	return &FileImporter{
		stors:         stors,
		storageRoot:   storageRoot,
		limits:        limits,
		projectLocker: lock.NewIdLocker[int64](),
		logger:        clog.UsingCtx(clog.ImporterCtx),
	}
}

// ImportProject creates a project from a project archive and returns its descriptor
// as JSON.
func (i *FileImporter) ImportProject(ctx context.Context, userID int, projectName string, r io.ReadCloser) (string, error) {
	defer r.Close()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !validProjectName.MatchString(projectName) {
		return "", uploadresp.NewError(uploadresp.BadRequest, "Invalid project name: %s", projectName)
	}

	if _, err := i.stors.ProjectStor.GetProjectByOwnerAndName(userID, projectName); err == nil {
		return "", nameCollision(projectName)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.Wrapf(err, "unable to look up project %s for user %d", projectName, userID)
	}

	archive, err := i.spoolArchive(r)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = archive.Close()
		_ = os.Remove(archive.Name())
	}()

	files, err := i.storeArchiveEntries(archive)
	if err != nil {
		return "", err
	}

	project, err := i.stors.ProjectStor.CreateProject(&odemodel.Project{Name: projectName, OwnerID: userID}, files)
	if err != nil {
		for _, f := range files {
			i.removeBlob(f.UUID)
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nameCollision(projectName)
		}

		return "", pkgerrors.Wrapf(err, "unable to create project %s", projectName)
	}

	b, err := json.Marshal(project.ToDescriptor())
	if err != nil {
		return "", pkgerrors.Wrap(err, "unable to encode project descriptor")
	}

	i.logger.WithFields(log.Fields{
		"user":    userID,
		"project": project.ID,
		"files":   len(files),
		"size":    humanize.Bytes(uint64(project.Size)),
	}).Infof("Imported project %s", projectName)

	return string(b), nil
}

func nameCollision(projectName string) error {
	return uploadresp.NewError(uploadresp.NameCollision, "A project named %s already exists", projectName)
}

// spoolArchive copies the archive to a temp file since zip needs random access.
func (i *FileImporter) spoolArchive(r io.Reader) (*os.File, error) {
	if err := os.MkdirAll(i.storageRoot, 0755); err != nil {
		return nil, pkgerrors.Wrapf(err, "unable to create storage root %s", i.storageRoot)
	}

	f, err := os.CreateTemp(i.storageRoot, ".project-*.zip")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to create project spool file")
	}

	discard := func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}

	n, err := io.Copy(f, io.LimitReader(r, i.limits.Project+1))
	if err != nil {
		discard()
		return nil, pkgerrors.Wrap(err, "unable to spool project archive")
	}

	if n > i.limits.Project {
		discard()
		return nil, uploadresp.NewError(uploadresp.FileTooLarge, "Project archive is larger than the %s limit",
			humanize.Bytes(uint64(i.limits.Project)))
	}

	return f, nil
}

func (i *FileImporter) storeArchiveEntries(archive *os.File) ([]odemodel.ProjectFile, error) {
	info, err := archive.Stat()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "unable to stat %s", archive.Name())
	}

	zr, err := zip.NewReader(archive, info.Size())
	if err != nil {
		return nil, uploadresp.NewError(uploadresp.NotProjectArchive, "Uploaded file is not a project archive")
	}

	hasProperties := false
	for _, entry := range zr.File {
		if entry.Name == odemodel.ProjectPropertiesPath {
			hasProperties = true
			break
		}
	}

	if !hasProperties {
		return nil, uploadresp.NewError(uploadresp.NotProjectArchive, "Uploaded file is not a project archive: no %s",
			odemodel.ProjectPropertiesPath)
	}

	var (
		files    []odemodel.ProjectFile
		expanded int64
	)
	cleanup := func() {
		for _, f := range files {
			i.removeBlob(f.UUID)
		}
	}

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		b, err := i.storeArchiveEntry(entry)
		if err != nil {
			cleanup()
			return nil, err
		}

		// The archive limit also bounds what it expands to.
		expanded += b.size
		if expanded > i.limits.Project {
			i.removeBlob(b.uuid)
			cleanup()
			return nil, uploadresp.NewError(uploadresp.FileTooLarge, "Project archive expands to more than the %s limit",
				humanize.Bytes(uint64(i.limits.Project)))
		}

		files = append(files, odemodel.ProjectFile{
			UUID:     b.uuid,
			Path:     strings.TrimPrefix(entry.Name, "/"),
			Size:     b.size,
			Checksum: b.checksum,
		})
	}

	return files, nil
}

func (i *FileImporter) storeArchiveEntry(entry *zip.File) (*blob, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, uploadresp.NewError(uploadresp.NotProjectArchive, "Unable to read %s from project archive", entry.Name)
	}
	defer rc.Close()

	b, err := i.writeBlob(rc, i.limits.File, entry.Name)
	var uerr *uploadresp.Error
	switch {
	case err == nil:
		return b, nil
	case errors.As(err, &uerr):
		return nil, err
	case errors.Is(err, zip.ErrChecksum), errors.Is(err, zip.ErrFormat), errors.Is(err, zip.ErrAlgorithm):
		return nil, uploadresp.NewError(uploadresp.NotProjectArchive, "Corrupt entry %s in project archive", entry.Name)
	default:
		return nil, err
	}
}

// ImportFile saves a file into one of the user's projects and returns the new
// modification time in milliseconds.
func (i *FileImporter) ImportFile(ctx context.Context, userID int, projectID int64, filePath string, r io.ReadCloser) (int64, error) {
	defer r.Close()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	project, err := i.stors.ProjectStor.GetProjectByID(projectID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, uploadresp.NewError(uploadresp.NotFound, "No project with id %d", projectID)
	case err != nil:
		return 0, pkgerrors.Wrapf(err, "unable to look up project %d", projectID)
	case project.OwnerID != userID:
		// Don't reveal that someone else's project exists.
		return 0, uploadresp.NewError(uploadresp.NotFound, "No project with id %d", projectID)
	}

	b, err := i.writeBlob(r, i.limits.File, filePath)
	if err != nil {
		return 0, err
	}

	file := &odemodel.ProjectFile{
		UUID:      b.uuid,
		ProjectID: projectID,
		OwnerID:   userID,
		Path:      filePath,
		Size:      b.size,
		Checksum:  b.checksum,
	}

	var replaced *odemodel.ProjectFile
	err = i.projectLocker.WithLock(projectID, func() error {
		var err error
		replaced, err = i.stors.ProjectFileStor.PutProjectFile(file)
		return err
	})

	if err != nil {
		i.removeBlob(b.uuid)
		return 0, pkgerrors.Wrapf(err, "unable to save %s in project %d", filePath, projectID)
	}

	if replaced != nil {
		i.removeBlob(replaced.UUID)
	}

	i.logger.WithFields(log.Fields{
		"user":    userID,
		"project": projectID,
		"size":    humanize.Bytes(uint64(b.size)),
	}).Debugf("Saved %s", filePath)

	return file.ModTime(), nil
}

func (i *FileImporter) ImportUserFile(ctx context.Context, userID int, filePath string, r io.ReadCloser) error {
	defer r.Close()

	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := i.writeBlob(r, i.limits.UserFile, filePath)
	if err != nil {
		return err
	}

	replaced, err := i.stors.UserFileStor.PutUserFile(&odemodel.UserFile{
		UUID:    b.uuid,
		OwnerID: userID,
		Path:    filePath,
		Size:    b.size,
	})

	if err != nil {
		i.removeBlob(b.uuid)
		return pkgerrors.Wrapf(err, "unable to save user file %s for user %d", filePath, userID)
	}

	if replaced != nil {
		i.removeBlob(replaced.UUID)
	}

	i.logger.WithFields(log.Fields{"user": userID, "size": humanize.Bytes(uint64(b.size))}).Debugf("Saved user file %s", filePath)
	return nil
}

// ImportTempFile stores an anonymous file, such as a component archive waiting to be
// installed, and returns the id that refers to it.
func (i *FileImporter) ImportTempFile(ctx context.Context, r io.ReadCloser) (string, error) {
	defer r.Close()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	b, err := i.writeBlob(r, i.limits.TempFile, "Temporary file")
	if err != nil {
		return "", err
	}

	tf, err := i.stors.TempFileStor.CreateTempFile(&odemodel.TempFile{UUID: b.uuid, Size: b.size})
	if err != nil {
		i.removeBlob(b.uuid)
		return "", pkgerrors.Wrap(err, "unable to record temp file")
	}

	i.logger.WithField("size", humanize.Bytes(uint64(b.size))).Debugf("Saved temp file %s", tf.TempID())
	return tf.TempID(), nil
}

func (i *FileImporter) ImportGlobalAsset(ctx context.Context, userID int, name, assetType, folder string, r io.ReadCloser) (int64, error) {
	defer r.Close()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if name == "" || assetType == "" {
		return 0, uploadresp.NewError(uploadresp.MissingFields, "Global assets need both a name and a type")
	}

	b, err := i.writeBlob(r, i.limits.GlobalAsset, name)
	if err != nil {
		return 0, err
	}

	asset, err := i.stors.GlobalAssetStor.CreateGlobalAsset(&odemodel.GlobalAsset{
		UUID:    b.uuid,
		OwnerID: userID,
		Name:    name,
		Type:    assetType,
		Folder:  cleanFolder(folder),
		Size:    b.size,
	})

	if err != nil {
		i.removeBlob(b.uuid)
		return 0, pkgerrors.Wrapf(err, "unable to record global asset %s", name)
	}

	i.logger.WithFields(log.Fields{
		"user":   userID,
		"asset":  asset.ID,
		"type":   assetType,
		"folder": asset.Folder,
		"size":   humanize.Bytes(uint64(b.size)),
	}).Infof("Saved global asset %s", name)

	return asset.ID, nil
}

// cleanFolder normalizes an asset folder to a relative path without dot segments.
func cleanFolder(folder string) string {
	if folder == "" {
		return ""
	}

	return strings.Trim(path.Clean("/"+folder), "/")
}
