package odemodel

import (
	"path/filepath"
	"strings"
)

// BlobPath is where the contents for id live under root. Files are spread over two
// directory levels taken from the second group of the UUID so no single directory
// grows too large.
func BlobPath(root, id string) string {
	uuidParts := strings.Split(id, "-")
	if len(uuidParts) < 2 || len(uuidParts[1]) < 4 {
		return filepath.Join(root, id)
	}

	return filepath.Join(root, uuidParts[1][0:2], uuidParts[1][2:4], id)
}

// Models lists everything the schema migration creates.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&ProjectFile{},
		&UserFile{},
		&TempFile{},
		&GlobalAsset{},
	}
}
