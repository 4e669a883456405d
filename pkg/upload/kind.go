package upload

import (
	"fmt"
	"strconv"
)

// Kind is the category of artifact an upload request carries. It is decided by the
// request path alone.
type Kind int

const (
	KindProject Kind = iota + 1
	KindFile
	KindUserFile
	KindComponent
	KindGlobalAsset
)

// Upload paths look like /<base>/upload/<kind>/<params...>, so the kind token is the
// fourth segment once the path is split on "/" (the leading slash yields an empty
// first segment).
const kindIndex = 3

// Multipart form field names.
const (
	ProjectArchiveField   = "uploadProjectArchive"
	FileField             = "uploadFile"
	UserFileField         = "uploadUserFile"
	ComponentArchiveField = "uploadComponentArchive"
	GlobalAssetField      = "uploadGlobalAsset"

	AssetNameField   = "assetName"
	AssetTypeField   = "assetType"
	AssetFolderField = "assetFolder"
)

type paramSpec struct {
	name  string
	index int
	set   func(t *Target, value string) error
}

type fieldSpec struct {
	name     string
	required bool
}

// kindSpec is the static description of one upload kind: how to find it in the path,
// how to re-split the path so that a trailing file path keeps its slashes, where its
// parameters live and which multipart fields it expects.
type kindSpec struct {
	kind        Kind
	token       string
	splitLimit  int
	binaryField string

	// scanAll is set for kinds that take scalar fields as well as the binary part.
	// Those must see every part, so extraction cannot stop at the binary match.
	scanAll bool
	fields  []fieldSpec
	params  []paramSpec
}

var kindSpecs = []kindSpec{
	{
		kind:        KindProject,
		token:       "project",
		splitLimit:  5,
		binaryField: ProjectArchiveField,
		params:      []paramSpec{{name: "project name", index: 4, set: appendParam}},
	},
	{
		kind:        KindFile,
		token:       "file",
		splitLimit:  6,
		binaryField: FileField,
		params: []paramSpec{
			{name: "project id", index: 4, set: setProjectID},
			{name: "file path", index: 5, set: appendParam},
		},
	},
	{
		kind:        KindUserFile,
		token:       "userfile",
		splitLimit:  5,
		binaryField: UserFileField,
		params:      []paramSpec{{name: "user file path", index: 4, set: appendParam}},
	},
	{
		kind:        KindComponent,
		token:       "component",
		splitLimit:  5,
		binaryField: ComponentArchiveField,
		params:      []paramSpec{{name: "component file path", index: 4, set: appendParam}},
	},
	{
		kind:        KindGlobalAsset,
		token:       "globalasset",
		splitLimit:  4,
		binaryField: GlobalAssetField,
		scanAll:     true,
		fields: []fieldSpec{
			{name: AssetNameField, required: true},
			{name: AssetTypeField, required: true},
			{name: AssetFolderField},
		},
	},
}

func appendParam(t *Target, value string) error {
	t.Params = append(t.Params, value)
	return nil
}

func setProjectID(t *Target, value string) error {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: project id %q is not a number", ErrMalformedPathParam, value)
	}

	t.ProjectID = id
	t.Params = append(t.Params, value)
	return nil
}

func lookupToken(token string) *kindSpec {
	for i := range kindSpecs {
		if kindSpecs[i].token == token {
			return &kindSpecs[i]
		}
	}

	return nil
}

func (k Kind) spec() *kindSpec {
	for i := range kindSpecs {
		if kindSpecs[i].kind == k {
			return &kindSpecs[i]
		}
	}

	return nil
}

// String returns the path token of the kind.
func (k Kind) String() string {
	if s := k.spec(); s != nil {
		return s.token
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// BinaryField is the multipart field carrying the kind's payload.
func (k Kind) BinaryField() string {
	if s := k.spec(); s != nil {
		return s.binaryField
	}

	return ""
}

func (s *kindSpec) acceptsField(name string) bool {
	for _, f := range s.fields {
		if f.name == name {
			return true
		}
	}

	return false
}

// ParseKind maps a path token such as "userfile" to its Kind.
func ParseKind(token string) (Kind, error) {
	if s := lookupToken(token); s != nil {
		return s.kind, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, token)
}
