package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"
)

// docExemptions lists exported symbols that intentionally lack GoDoc
// comments, keyed by package. Every entry needs a justifying comment.
var docExemptions = map[string][]string{}

// TestExportedSymbolsHaveGoDoc verifies that every exported type, function,
// method, var, and const in internal packages has a GoDoc comment starting
// with the symbol name.
func TestExportedSymbolsHaveGoDoc(t *testing.T) {
	t.Parallel()

	for _, pkg := range internalPackages(t) {
		pkg := pkg
		t.Run(pkg, func(t *testing.T) {
			t.Parallel()

			exemptions := make(map[string]bool)
			for _, sym := range docExemptions[pkg] {
				exemptions[sym] = true
			}
			for _, file := range goFilesIn(t, filepath.Join(internalDirPath(t), pkg)) {
				checkFileGoDoc(t, file, exemptions)
			}
		})
	}
}

// checkFileGoDoc reports exported symbols in one file that lack a GoDoc
// comment.
func checkFileGoDoc(t *testing.T, filePath string, exemptions map[string]bool) {
	t.Helper()

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		t.Fatalf("parsing %s: %v", filePath, err)
	}

	rel := relativeFilePath(filePath)
	for _, decl := range node.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			checkGenDecl(t, fset, d, rel, exemptions)
		case *ast.FuncDecl:
			checkFuncDecl(t, fset, d, rel, exemptions)
		}
	}
}

// checkGenDecl checks type, var, and const declarations.
func checkGenDecl(t *testing.T, fset *token.FileSet, d *ast.GenDecl, rel string, exemptions map[string]bool) {
	t.Helper()

	grouped := len(d.Specs) > 1
	hasBlockDoc := d.Doc != nil && strings.TrimSpace(d.Doc.Text()) != ""

	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			if !s.Name.IsExported() || exemptions[s.Name.Name] {
				continue
			}
			if !hasValidGoDoc(docText(s.Doc, d.Doc), s.Name.Name) {
				t.Errorf("%s:%d: exported type %s has no GoDoc comment",
					rel, fset.Position(s.Pos()).Line, s.Name.Name)
			}

		case *ast.ValueSpec:
			for _, name := range s.Names {
				if !name.IsExported() || exemptions[name.Name] {
					continue
				}
				// Grouped blocks accept an individual doc, a block doc, or
				// an inline comment.
				if grouped {
					inline := s.Comment != nil && strings.TrimSpace(s.Comment.Text()) != ""
					if hasBlockDoc || inline || hasValidGoDoc(docText(s.Doc), name.Name) {
						continue
					}
				} else if hasValidGoDoc(docText(s.Doc, d.Doc), name.Name) {
					continue
				}
				t.Errorf("%s:%d: exported %s %s has no GoDoc comment",
					rel, fset.Position(name.Pos()).Line, d.Tok, name.Name)
			}
		}
	}
}

// checkFuncDecl checks function and method declarations. Methods on
// unexported receivers are skipped.
func checkFuncDecl(t *testing.T, fset *token.FileSet, d *ast.FuncDecl, rel string, exemptions map[string]bool) {
	t.Helper()

	if !d.Name.IsExported() || exemptions[d.Name.Name] {
		return
	}
	kind := "func"
	if d.Recv != nil {
		if len(d.Recv.List) == 0 || !isExportedType(d.Recv.List[0].Type) {
			return
		}
		kind = "method"
	}
	if !hasValidGoDoc(docText(d.Doc), d.Name.Name) {
		t.Errorf("%s:%d: exported %s %s has no GoDoc comment",
			rel, fset.Position(d.Pos()).Line, kind, d.Name.Name)
	}
}

// hasValidGoDoc returns true if doc starts with the symbol name.
func hasValidGoDoc(doc, symbolName string) bool {
	doc = strings.TrimSpace(doc)
	return doc != "" && strings.HasPrefix(doc, symbolName)
}

// isExportedType reports whether the base type name of a receiver is
// exported, looking through pointers and type parameters.
func isExportedType(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.IsExported()
	case *ast.StarExpr:
		return isExportedType(t.X)
	case *ast.IndexExpr:
		return isExportedType(t.X)
	case *ast.IndexListExpr:
		return isExportedType(t.X)
	}
	return false
}

// relativeFilePath trims everything before internal/ for error messages.
func relativeFilePath(fullPath string) string {
	const marker = "internal/"
	if idx := strings.Index(fullPath, marker); idx >= 0 {
		return fullPath[idx:]
	}
	return filepath.Base(fullPath)
}

func TestGoDocChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		sym  string
		want bool
	}{
		{"matching", "Open opens the journal.\n", "Open", true},
		{"empty", "", "Open", false},
		{"wrong name", "Creates the journal.\n", "Open", false},
		{"leading space", "  Editor applies edits.", "Editor", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := hasValidGoDoc(tt.doc, tt.sym); got != tt.want {
				t.Errorf("hasValidGoDoc(%q, %q) = %v, want %v", tt.doc, tt.sym, got, tt.want)
			}
		})
	}
}
