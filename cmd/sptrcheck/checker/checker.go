// Package checker finds SharedPtr ownership misuse that the library can
// only see as a contract violation at run time.
//
// The analysis is syntactic: it parses one file at a time with go/parser
// and follows calls to the sptr package through whatever name the file
// imports it under. No type information is used, so it reports patterns
// that are wrong regardless of types and stays quiet when unsure.
//
// Checks (see Check):
//  1. double-adopt: sptr.NewShared(x) twice for the same x in one function
//  2. adopt-subobject: sptr.NewShared(&x.f) or sptr.NewShared(&x[i])
//  3. adopt-after-reset: p.ResetTo(x) for an x adopted earlier
//
// An assignment to x between two adoptions clears it, so the common
// "adopt, then allocate a new one" loop body is not reported.
//
// Thread Safety: A Checker is NOT thread-safe. Use one per goroutine.
package checker

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ImportPath is the import path of the package whose calls are checked.
const ImportPath = "github.com/boboxa2010/SmartPointers/sptr"

// Stats tracks what a Checker has looked at.
type Stats struct {
	FilesParsed      int // Files parsed successfully
	FilesChecked     int // Files importing sptr
	FilesSkipped     int // Files not importing sptr
	AdoptionsChecked int // NewShared and ResetTo calls inspected
	Diagnostics      int // Findings reported
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.FilesParsed += o.FilesParsed
	s.FilesChecked += o.FilesChecked
	s.FilesSkipped += o.FilesSkipped
	s.AdoptionsChecked += o.AdoptionsChecked
	s.Diagnostics += o.Diagnostics
}

// Checker runs the enabled checks over Go source files.
type Checker struct {
	fset    *token.FileSet
	enabled map[Check]bool
	stats   Stats
}

// New returns a Checker running checks, or every check if none are named.
func New(checks ...Check) *Checker {
	if len(checks) == 0 {
		checks = AllChecks()
	}
	enabled := make(map[Check]bool, len(checks))
	for _, c := range checks {
		enabled[c] = true
	}
	return &Checker{fset: token.NewFileSet(), enabled: enabled}
}

// Enabled reports whether check runs.
func (c *Checker) Enabled(check Check) bool { return c.enabled[check] }

// Stats returns the counters accumulated so far.
func (c *Checker) Stats() Stats { return c.stats }

// CheckFile parses and checks a single file. src follows go/parser
// conventions: nil reads filename, otherwise []byte, string or io.Reader.
//
// Diagnostics are returned in source order. A file that does not import
// sptr yields none.
func (c *Checker) CheckFile(filename string, src any) ([]*Diagnostic, error) {
	file, err := parser.ParseFile(c.fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}
	c.stats.FilesParsed++

	fc := newFileContext(file)
	if fc.sptrName == "" {
		c.stats.FilesSkipped++
		return nil, nil
	}
	c.stats.FilesChecked++

	var diags []*Diagnostic
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Body != nil {
				c.checkBody(fc, d.Body, &diags)
			}
		case *ast.GenDecl:
			// Function literals in package-level initializers.
			ast.Inspect(d, func(n ast.Node) bool {
				if lit, ok := n.(*ast.FuncLit); ok {
					c.checkBody(fc, lit.Body, &diags)
					return false
				}
				return true
			})
		}
	}

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	})
	c.stats.Diagnostics += len(diags)
	return diags, nil
}

func (c *Checker) checkBody(fc *fileContext, body *ast.BlockStmt, out *[]*Diagnostic) {
	v := &adoptVisitor{
		checker: c,
		file:    fc,
		adopted: make(map[string]token.Pos),
		out:     out,
	}
	ast.Walk(v, body)
}

func (c *Checker) report(out *[]*Diagnostic, pos token.Pos, check Check, msg, suggestion string) {
	if !c.enabled[check] {
		return
	}
	*out = append(*out, newDiagnostic(c.fset, pos, check, msg, suggestion))
}

// fileContext holds per-file name resolution.
type fileContext struct {
	// sptrName is the local name of the sptr package: "" if the file
	// does not import it, "." for a dot import.
	sptrName string

	// packages holds every local package name so that &pkg.Var is not
	// mistaken for the address of a field.
	packages map[string]bool
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

func newFileContext(file *ast.File) *fileContext {
	fc := &fileContext{packages: make(map[string]bool)}
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := defaultPackageName(p)
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if p == ImportPath {
			fc.sptrName = name
		}
		if name != "_" && name != "." {
			fc.packages[name] = true
		}
	}
	return fc
}

// defaultPackageName guesses the package name from an import path the way
// goimports does without loading the package.
func defaultPackageName(importPath string) string {
	base := path.Base(importPath)
	if majorVersion.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	return strings.ReplaceAll(base, "-", "_")
}

// sptrFunc returns the name of the sptr function called by fun.
func (fc *fileContext) sptrFunc(fun ast.Expr) (string, bool) {
	// Explicit instantiation: sptr.NewShared[T](p).
	switch f := fun.(type) {
	case *ast.IndexExpr:
		fun = f.X
	case *ast.IndexListExpr:
		fun = f.X
	}
	switch f := ast.Unparen(fun).(type) {
	case *ast.SelectorExpr:
		if id, ok := f.X.(*ast.Ident); ok && id.Name == fc.sptrName {
			return f.Sel.Name, true
		}
	case *ast.Ident:
		if fc.sptrName == "." {
			return f.Name, true
		}
	}
	return "", false
}

// qualify renders an sptr identifier as the file would spell it.
func (fc *fileContext) qualify(name string) string {
	if fc.sptrName == "." {
		return name
	}
	return fc.sptrName + "." + name
}

func (fc *fileContext) isPackage(x ast.Expr) bool {
	id, ok := x.(*ast.Ident)
	return ok && fc.packages[id.Name]
}
