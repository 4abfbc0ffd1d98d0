package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrontax/cra/pkg/cra"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runApp(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	if stdin != nil {
		app.Reader = stdin
	}
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := app.Run(t.Context(), append([]string{"cra", "--log-level", "error"}, args...))
	return out.String(), err
}

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	site := filepath.Join(dir, "site")
	require.NoError(t, os.MkdirAll(filepath.Join(site, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte("<html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(site, "assets", "app.js"), []byte("console.log(1)"), 0o644))
	return dir
}

func TestCreateListConvertExtract(t *testing.T) {
	dir := writeTree(t)
	zipPath := filepath.Join(dir, "site.zip")

	_, err := runApp(t, nil, "create", "--out", zipPath, "--method", "store", filepath.Join(dir, "site"))
	require.NoError(t, err)

	out, err := runApp(t, nil, "detect", zipPath)
	require.NoError(t, err)
	assert.Equal(t, zipPath+": zip\n", out)

	out, err = runApp(t, nil, "list", zipPath)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"d          -  site/",
		"d          -  site/assets/",
		"f         14  site/assets/app.js",
		"f          6  site/index.html",
	}, "\n")+"\n", out)

	out, err = runApp(t, nil, "list", "--output", "yaml", "--filter", `name.endsWith(".html")`, zipPath)
	require.NoError(t, err)
	var got listing
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, listing{
		Format:  "zip",
		Entries: []listedEntry{{Name: "site/index.html", Type: "file", Size: 6}},
	}, got)

	sevenZipPath := filepath.Join(dir, "site.7z")
	_, err = runApp(t, nil, "convert", "--method", "zstd", "--filter", "!dir", zipPath, sevenZipPath)
	require.NoError(t, err)

	data, err := os.ReadFile(sevenZipPath)
	require.NoError(t, err)
	r, err := cra.NewReader(data)
	require.NoError(t, err)
	assert.Equal(t, cra.SevenZip, r.Format())
	assert.Equal(t, []cra.Entry{
		cra.NewFile("site/assets/app.js", []byte("console.log(1)")),
		cra.NewFile("site/index.html", []byte("<html>")),
	}, r.Entries())

	extractDir := filepath.Join(dir, "extracted")
	_, err = runApp(t, nil, "extract", "--dir", extractDir, zipPath)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(extractDir, "site", "assets", "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(content))
}

func TestConvert_Stdio(t *testing.T) {
	w := cra.NewWriter(cra.Zip)
	w.Extend(cra.NewDirectory("uwu"), cra.NewFile("uwu/owo", []byte("owo")))
	zipData, err := w.Archive()
	require.NoError(t, err)

	out, err := runApp(t, bytes.NewReader(zipData), "convert", "--format", "7z", "-", "-")
	require.NoError(t, err)

	r, err := cra.NewReader([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, cra.SevenZip, r.Format())
	assert.Equal(t, []cra.Entry{
		cra.NewDirectory("uwu/"),
		cra.NewFile("uwu/owo", []byte("owo")),
	}, r.Entries())
}

func TestDetect_Unrecognized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	out, err := runApp(t, nil, "detect", path)
	require.Error(t, err)
	assert.Equal(t, path+": unrecognized\n", out)
}

func TestDetect_HTTPFlags(t *testing.T) {
	w := cra.NewWriter(cra.Zip)
	w.Push(cra.NewFile("a.txt", []byte("a")))
	zipData, err := w.Archive()
	require.NoError(t, err)

	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		gotReq = req
		_, _ = rw.Write(zipData)
	}))
	defer server.Close()

	url := server.URL + "/backup.zip"
	out, err := runApp(t, nil,
		"--http-header", "X-Token: abc",
		"--http-user", "ops",
		"--http-password", "hunter2",
		"--http-timeout", "5s",
		"detect", url,
	)
	require.NoError(t, err)
	assert.Equal(t, url+": zip\n", out)

	require.NotNil(t, gotReq)
	assert.Equal(t, "abc", gotReq.Header.Get("X-Token"))
	user, pass, ok := gotReq.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "ops", user)
	assert.Equal(t, "hunter2", pass)

	_, err = runApp(t, nil, "--http-header", "no-colon", "detect", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --http-header")
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	w := cra.NewWriter(cra.Zip)
	w.Push(cra.NewFile("../escape.txt", []byte("nope")))
	data, err := w.Archive()
	require.NoError(t, err)

	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	_, err = runApp(t, nil, "extract", "--dir", filepath.Join(dir, "out"), src)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreate_UnknownExtension(t *testing.T) {
	dir := writeTree(t)
	_, err := runApp(t, nil, "create", "--out", filepath.Join(dir, "site.rar"), filepath.Join(dir, "site"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use --format")
}

func TestBuildAndValidate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("from disk"), 0o644))
	t.Setenv("CRA_TEST_OWNER", "ops")

	manifest := `kind: Archive
metadata:
  name: example
spec:
  format: zip
  options: {method: zstd}
  entries:
    - file: {name: hmmm, content: "twoja stara\n"}
    - directory: {name: uwu}
    - file: {name: "uwu/${CRA_TEST_OWNER}.txt", source: "` + filepath.ToSlash(filepath.Join(dir, "notes.txt")) + `"}
  output:
    filesystem: {path: "` + filepath.ToSlash(filepath.Join(dir, "out", "${MANIFEST_NAME}.zip")) + `"}
`
	manifestPath := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o644))

	out, err := runApp(t, nil, "validate", "--allowed-env", "CRA_TEST_OWNER", manifestPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	_, err = runApp(t, nil, "validate", manifestPath)
	require.Error(t, err)

	_, err = runApp(t, nil, "build", "--allowed-env", "CRA_TEST_OWNER", manifestPath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out", "example.zip"))
	require.NoError(t, err)
	r, err := cra.NewReader(data)
	require.NoError(t, err)
	assert.Equal(t, []cra.Entry{
		cra.NewFile("hmmm", []byte("twoja stara\n")),
		cra.NewDirectory("uwu/"),
		cra.NewFile("uwu/ops.txt", []byte("from disk")),
	}, r.Entries())
}

func TestValidate_ReportsFields(t *testing.T) {
	manifestPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("kind: Archive\nmetadata: {}\nspec: {format: rar}\n"), 0o644))

	out, err := runApp(t, nil, "validate", manifestPath)
	require.Error(t, err)
	assert.Contains(t, out, "manifest has 2 validation error(s)")
	assert.Contains(t, out, "Archive.Metadata.Name: failed 'required' validation")
	assert.Contains(t, out, "Archive.Spec.Format: failed 'oneof' validation (param: zip tar 7z)")
}

func TestVersion(t *testing.T) {
	out, err := runApp(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cra ")
	assert.Contains(t, out, "formats: zip, tar, 7z")
}
