package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodSource = `package app

import "github.com/boboxa2010/SmartPointers/sptr"

type conn struct{ id int }

func open() sptr.SharedPtr[conn] {
	return sptr.NewShared(&conn{})
}
`

const badSource = `package app

import "github.com/boboxa2010/SmartPointers/sptr"

type pool struct{ conns []conn }

func share(c *conn) (sptr.SharedPtr[conn], sptr.SharedPtr[conn]) {
	a := sptr.NewShared(c)
	b := sptr.NewShared(c)
	return a, b
}
`

// writeTree creates files (slash-separated relative path to content)
// under a fresh directory and returns it.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

const appGoMod = `module example.com/app

go 1.24.0

require github.com/boboxa2010/SmartPointers v0.1.0
`

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	code = execute(root, args)
	return code, out.String(), errOut.String()
}

func TestCheck_Clean(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod":  appGoMod,
		"conn.go": goodSource,
	})

	code, stdout, _ := run(t, "check", dir)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
}

func TestCheck_ReportsDiagnostics(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod":        appGoMod,
		"conn.go":       goodSource,
		"pool/share.go": badSource,
	})

	code, stdout, _ := run(t, "check", dir+"/...")
	assert.Equal(t, exitDiagnostics, code)
	assert.Contains(t, stdout, filepath.Join(dir, "pool", "share.go")+":9:7: [double-adopt]")
	assert.Contains(t, stdout, "Suggestion: Clone the first SharedPtr")
}

func TestCheck_SkipsTestsAndIgnoredDirs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod":                 appGoMod,
		"share_test.go":          badSource,
		"vendor/x/share.go":      badSource,
		"testdata/share.go":      badSource,
		"_scratch/share.go":      badSource,
		".hidden/share.go":       badSource,
		"nested/go.mod":          "module example.com/nested\n",
		"nested/share.go":        badSource,
		"gen/share.go":           badSource,
		"models/share_mock.go":   badSource,
		".sptrcheck.yaml":        "exclude:\n  - gen/\n  - \"*_mock.go\"\n",
		"internal/ok/conn.go":    goodSource,
		"internal/ok/conn2.go":   "package ok\n",
		"internal/ok/README.txt": "not go",
	})

	code, stdout, stderr := run(t, "check", "-v", dir)
	assert.Equal(t, exitOK, code, stdout)
	assert.Contains(t, stderr, "2 files parsed (1 import sptr, 1 skipped)")

	code, stdout, _ = run(t, "check", "--tests", dir)
	assert.Equal(t, exitDiagnostics, code)
	assert.Contains(t, stdout, "share_test.go:9:7")
	assert.NotContains(t, stdout, "vendor")
}

func TestCheck_ConfigDisablesCheck(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod":   appGoMod,
		"share.go": badSource,
		"ci.yaml":  "checks:\n  double-adopt: false\n",
	})

	code, stdout, _ := run(t, "check", "--config", filepath.Join(dir, "ci.yaml"), dir)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
}

func TestCheck_ConfigErrors(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod":          appGoMod,
		".sptrcheck.yaml": "checks:\n  no-such-check: true\n",
	})

	code, _, stderr := run(t, "check", dir)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, `unknown check "no-such-check"`)

	code, _, stderr = run(t, "check", "--config", filepath.Join(dir, "missing.yaml"), dir)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "failed to read config")
}

func TestCheck_UnrelatedModule(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod":   "module example.com/other\n",
		"share.go": badSource,
	})

	code, stdout, stderr := run(t, "check", dir)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "does not require github.com/boboxa2010/SmartPointers")
}

func TestCheck_ParseError(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"go.mod": appGoMod,
		"bad.go": "package app\nfunc {",
	})

	code, _, stderr := run(t, "check", dir)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "skipping file")
	assert.Contains(t, stderr, "1 file(s) could not be parsed")
}

func TestCheck_Usage(t *testing.T) {
	code, _, stderr := run(t, "check", "a", "b")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "accepts at most 1 arg(s)")

	code, _, _ = run(t, "check", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, exitError, code)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "sptrcheck version "+version+" (sptr 0.1.0, non-atomic counting)\n", stdout)

	_, stdout, _ = run(t, "--version")
	assert.Equal(t, "sptrcheck version "+version+"\n", stdout)
}

func TestCheckFiles_OrderAndStats(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.go": badSource,
		"b.go": "package app\nfunc {",
		"c.go": goodSource,
		"d.go": badSource,
	})
	files := []string{
		filepath.Join(dir, "a.go"),
		filepath.Join(dir, "b.go"),
		filepath.Join(dir, "c.go"),
		filepath.Join(dir, "d.go"),
	}

	for _, jobs := range []int{0, 1, 3} {
		results, stats, err := checkFiles(context.Background(), files, nil, jobs)
		require.NoError(t, err)
		require.Len(t, results, 4)

		assert.Len(t, results[0].diags, 1)
		assert.Equal(t, files[0], results[0].diags[0].File)
		assert.Error(t, results[1].err)
		assert.Empty(t, results[2].diags)
		assert.Equal(t, files[3], results[3].diags[0].File)

		assert.Equal(t, 3, stats.FilesParsed)
		assert.Equal(t, 2, stats.Diagnostics)
	}
}

func TestCheckFiles_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := checkFiles(ctx, []string{"x.go"}, nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
