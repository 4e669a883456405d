package upload

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePart struct {
	formName string
	fileName string
	body     io.Reader
	closed   bool
}

func newField(name, value string) *fakePart {
	return &fakePart{formName: name, body: strings.NewReader(value)}
}

func newFile(name, fileName, content string) *fakePart {
	return &fakePart{formName: name, fileName: fileName, body: strings.NewReader(content)}
}

func (p *fakePart) Read(b []byte) (int, error) { return p.body.Read(b) }
func (p *fakePart) Close() error               { p.closed = true; return nil }
func (p *fakePart) FormName() string           { return p.formName }
func (p *fakePart) FileName() string           { return p.fileName }

// fakeParts hands out parts in order. When err is set it is returned instead of
// io.EOF once the parts run out.
type fakeParts struct {
	parts  []*fakePart
	opened int
	err    error
}

func (f *fakeParts) NextPart() (Part, error) {
	if f.opened >= len(f.parts) {
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}

	p := f.parts[f.opened]
	f.opened++
	return p, nil
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractStopsAtFirstMatch(t *testing.T) {
	scalar := newField("note", "ignored")
	match := newFile(FileField, "Screen1.scm", "contents")
	later := newFile(FileField, "other.scm", "never read")
	parts := &fakeParts{parts: []*fakePart{scalar, match, later}}

	payload, err := Extract(parts, KindFile)
	require.NoError(t, err)

	assert.Equal(t, 2, parts.opened, "parts after the match must not be opened")
	assert.True(t, scalar.closed)
	assert.False(t, match.closed, "payload is handed off open")
	assert.Same(t, match, payload.Stream)
	assert.Equal(t, "Screen1.scm", payload.FileName)
	assert.Nil(t, payload.Fields)
	assert.Equal(t, "contents", readAll(t, payload.Stream))
}

func TestExtractBinaryByFieldNameWithoutFileName(t *testing.T) {
	part := &fakePart{formName: ProjectArchiveField, body: strings.NewReader("zip")}
	payload, err := Extract(&fakeParts{parts: []*fakePart{part}}, KindProject)
	require.NoError(t, err)
	assert.Same(t, part, payload.Stream)
}

func TestExtractDiscardsUnexpectedFileParts(t *testing.T) {
	stray := newFile("somethingElse", "stray.bin", "x")
	match := newFile(UserFileField, "android.keystore", "key")
	parts := &fakeParts{parts: []*fakePart{stray, match}}

	payload, err := Extract(parts, KindUserFile)
	require.NoError(t, err)
	assert.True(t, stray.closed)
	assert.Same(t, match, payload.Stream)
}

func TestExtractMissingFileField(t *testing.T) {
	scalar := newField("note", "x")
	stray := newFile(FileField, "wrong-kind.scm", "x")
	parts := &fakeParts{parts: []*fakePart{scalar, stray}}

	payload, err := Extract(parts, KindComponent)
	assert.ErrorIs(t, err, ErrMissingFileField)
	assert.Nil(t, payload)
	assert.True(t, scalar.closed)
	assert.True(t, stray.closed)
}

func TestExtractGlobalAssetAnyOrder(t *testing.T) {
	orders := map[string]func() []*fakePart{
		"file first": func() []*fakePart {
			return []*fakePart{
				newFile(GlobalAssetField, "logo.png", "png-bytes"),
				newField(AssetNameField, "logo"),
				newField(AssetTypeField, "image"),
				newField(AssetFolderField, "icons"),
			}
		},
		"file last": func() []*fakePart {
			return []*fakePart{
				newField(AssetFolderField, "icons"),
				newField(AssetTypeField, "image"),
				newField(AssetNameField, "logo"),
				newFile(GlobalAssetField, "logo.png", "png-bytes"),
			}
		},
		"file in the middle": func() []*fakePart {
			return []*fakePart{
				newField(AssetNameField, "logo"),
				newFile(GlobalAssetField, "logo.png", "png-bytes"),
				newField("unrelated", "dropped"),
				newField(AssetTypeField, "image"),
				newField(AssetFolderField, "icons"),
			}
		},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			parts := &fakeParts{parts: order()}

			payload, err := NewExtractor(dir).Extract(parts, KindGlobalAsset)
			require.NoError(t, err)

			assert.Equal(t, len(parts.parts), parts.opened, "all parts are read")
			for _, p := range parts.parts {
				assert.True(t, p.closed, "part %s left open", p.formName)
			}

			assert.Equal(t, map[string]string{
				AssetNameField:   "logo",
				AssetTypeField:   "image",
				AssetFolderField: "icons",
			}, payload.Fields)
			assert.Equal(t, "logo.png", payload.FileName)
			assert.Equal(t, "png-bytes", readAll(t, payload.Stream))

			require.NoError(t, payload.Stream.Close())
			assertDirEmpty(t, dir)
		})
	}
}

func TestExtractGlobalAssetFolderIsOptional(t *testing.T) {
	parts := &fakeParts{parts: []*fakePart{
		newField(AssetNameField, "logo"),
		newField(AssetTypeField, "image"),
		newFile(GlobalAssetField, "logo.png", "png"),
	}}

	payload, err := NewExtractor(t.TempDir()).Extract(parts, KindGlobalAsset)
	require.NoError(t, err)
	defer payload.Stream.Close()

	_, ok := payload.Fields[AssetFolderField]
	assert.False(t, ok)
}

func TestExtractGlobalAssetFirstFileWins(t *testing.T) {
	dir := t.TempDir()
	second := newFile(GlobalAssetField, "second.png", "second")
	parts := &fakeParts{parts: []*fakePart{
		newFile(GlobalAssetField, "first.png", "first"),
		second,
		newField(AssetNameField, "n"),
		newField(AssetTypeField, "t"),
	}}

	payload, err := NewExtractor(dir).Extract(parts, KindGlobalAsset)
	require.NoError(t, err)
	assert.True(t, second.closed)
	assert.Equal(t, "first.png", payload.FileName)
	assert.Equal(t, "first", readAll(t, payload.Stream))
	require.NoError(t, payload.Stream.Close())
}

func TestExtractGlobalAssetMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		parts   func() []*fakePart
		missing []string
	}{
		{
			name: "type missing",
			parts: func() []*fakePart {
				return []*fakePart{newField(AssetNameField, "n"), newFile(GlobalAssetField, "a.png", "a")}
			},
			missing: []string{AssetTypeField},
		},
		{
			name: "name and type missing",
			parts: func() []*fakePart {
				return []*fakePart{newFile(GlobalAssetField, "a.png", "a"), newField(AssetFolderField, "f")}
			},
			missing: []string{AssetNameField, AssetTypeField},
		},
		{
			name:    "nothing sent",
			parts:   func() []*fakePart { return nil },
			missing: []string{AssetNameField, AssetTypeField, GlobalAssetField},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			payload, err := NewExtractor(dir).Extract(&fakeParts{parts: test.parts()}, KindGlobalAsset)
			assert.Nil(t, payload)

			var missing *MissingFieldsError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, test.missing, missing.Fields)
			assertDirEmpty(t, dir)
		})
	}
}

func TestExtractGlobalAssetWithoutFile(t *testing.T) {
	parts := &fakeParts{parts: []*fakePart{newField(AssetNameField, "n"), newField(AssetTypeField, "t")}}
	_, err := NewExtractor(t.TempDir()).Extract(parts, KindGlobalAsset)
	assert.ErrorIs(t, err, ErrMissingFileField)
}

func TestExtractPartIOErrorReleasesSpool(t *testing.T) {
	dir := t.TempDir()
	parts := &fakeParts{
		parts: []*fakePart{newFile(GlobalAssetField, "a.png", "a"), newField(AssetNameField, "n")},
		err:   io.ErrUnexpectedEOF,
	}

	payload, err := NewExtractor(dir).Extract(parts, KindGlobalAsset)
	assert.Nil(t, payload)
	assert.ErrorIs(t, err, ErrPartIO)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assertDirEmpty(t, dir)
}

func TestExtractFieldTooLarge(t *testing.T) {
	e := NewExtractor(t.TempDir())
	e.MaxFieldSize = 4

	_, err := e.Extract(&fakeParts{parts: []*fakePart{newField(AssetNameField, "12345")}}, KindGlobalAsset)
	assert.ErrorIs(t, err, ErrPartIO)
	assert.ErrorIs(t, err, ErrFieldTooLarge)

	payload, err := e.Extract(&fakeParts{parts: []*fakePart{
		newField(AssetNameField, "1234"),
		newField(AssetTypeField, "t"),
		newFile(GlobalAssetField, "a", "a"),
	}}, KindGlobalAsset)
	require.NoError(t, err)
	assert.Equal(t, "1234", payload.Fields[AssetNameField])
	require.NoError(t, payload.Stream.Close())
}

func TestExtractUnknownKind(t *testing.T) {
	parts := &fakeParts{parts: []*fakePart{newFile(FileField, "a", "a")}}
	_, err := Extract(parts, Kind(99))
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, 0, parts.opened)
}

func TestExtractIgnoresLargeUnrecognizedFields(t *testing.T) {
	large := strings.Repeat("x", 70*1024)

	t.Run("single field kind", func(t *testing.T) {
		decoy := newField("notes", large)
		match := newFile(FileField, "a.txt", "a")

		payload, err := NewExtractor(t.TempDir()).Extract(&fakeParts{parts: []*fakePart{decoy, match}}, KindFile)
		require.NoError(t, err)
		assert.True(t, decoy.closed)
		assert.Same(t, match, payload.Stream)
	})

	t.Run("global asset", func(t *testing.T) {
		dir := t.TempDir()
		decoy := newField("description", large)
		parts := &fakeParts{parts: []*fakePart{
			newField(AssetNameField, "logo"),
			newField(AssetTypeField, "image"),
			decoy,
			newFile(GlobalAssetField, "logo.png", "png"),
		}}

		payload, err := NewExtractor(dir).Extract(parts, KindGlobalAsset)
		require.NoError(t, err)
		assert.True(t, decoy.closed)
		assert.Equal(t, map[string]string{AssetNameField: "logo", AssetTypeField: "image"}, payload.Fields)
		assert.Equal(t, "png", readAll(t, payload.Stream))
		require.NoError(t, payload.Stream.Close())
		assertDirEmpty(t, dir)
	})
}

func TestExtractUnrecognizedFieldReadError(t *testing.T) {
	broken := &fakePart{formName: "notes", body: io.MultiReader(strings.NewReader("x"), errReader{})}
	_, err := Extract(&fakeParts{parts: []*fakePart{broken, newFile(FileField, "a", "a")}}, KindFile)
	assert.ErrorIs(t, err, ErrPartIO)
	assert.True(t, broken.closed)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
