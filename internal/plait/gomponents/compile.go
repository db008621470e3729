package gomponents

import (
	"bytes"
	"fmt"
	goast "go/ast"
	"go/format"
	goparser "go/parser"
	gotoken "go/token"
	"path/filepath"
	"strings"

	"github.com/devashishdxt/plait/internal/plait/parser"
	"github.com/devashishdxt/plait/internal/plait/validate"
)

// CompileFile turns one .plait source file into formatted Go source.
//
// A file holds an optional package directive followed by template
// functions. Signatures use Go syntax; bodies use the template grammar:
//
//	package views
//
//	func Greeting(name string) {
//	    div { h1 { "Hello, " (name) "!" } }
//	}
func CompileFile(path string, src []byte) ([]byte, error) {
	file, err := splitFile(string(src))
	if err != nil {
		return nil, err
	}
	if file.pkg == "" {
		file.pkg = packageNameFor(path)
	}
	if len(file.funcs) == 0 {
		return nil, fmt.Errorf("no template functions found")
	}

	var decls bytes.Buffer
	needH := false
	for _, fn := range file.funcs {
		sig, err := parseSignature(fn.signature)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", fn.line, err)
		}
		nodes, err := parser.Parse(fn.body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sig.name, err)
		}
		if err := validate.Check(nodes, validate.Options{}); err != nil {
			return nil, fmt.Errorf("%s: %w", sig.name, err)
		}
		expr, err := LowerNodes(nodes, Context{VarTypes: sig.paramTypes})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sig.name, err)
		}
		if usesPackage(expr, "h") {
			needH = true
		}

		var body bytes.Buffer
		if err := format.Node(&body, gotoken.NewFileSet(), expr); err != nil {
			return nil, fmt.Errorf("%s: formatting: %w", sig.name, err)
		}
		fmt.Fprintf(&decls, "func %s(%s) g.Node {\n\treturn %s\n}\n\n", sig.name, sig.params, body.String())
	}

	var out bytes.Buffer
	out.WriteString("// Code generated by plait; DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", file.pkg)
	out.WriteString("import (\n")
	out.WriteString("\tg \"maragu.dev/gomponents\"\n")
	if needH {
		out.WriteString("\th \"maragu.dev/gomponents/html\"\n")
	}
	out.WriteString(")\n\n")
	out.Write(decls.Bytes())

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return formatted, nil
}

type srcFile struct {
	pkg   string
	funcs []srcFunc
}

type srcFunc struct {
	signature string
	body      string
	line      int
}

// splitFile separates the package directive and the function blocks.
// Brace counting skips string literals and line comments so template
// text cannot unbalance the scan.
func splitFile(src string) (*srcFile, error) {
	out := &srcFile{}
	line := 1
	i := 0

	skipSpace := func() {
		for i < len(src) {
			switch {
			case src[i] == '\n':
				line++
				i++
			case src[i] == ' ' || src[i] == '\t' || src[i] == '\r':
				i++
			case strings.HasPrefix(src[i:], "//"):
				for i < len(src) && src[i] != '\n' {
					i++
				}
			default:
				return
			}
		}
	}

	readWord := func() string {
		start := i
		for i < len(src) && !strings.ContainsRune(" \t\r\n({", rune(src[i])) {
			i++
		}
		return src[start:i]
	}

	for {
		skipSpace()
		if i >= len(src) {
			return out, nil
		}

		switch word := readWord(); word {
		case "package":
			skipSpace()
			out.pkg = readWord()
		case "func":
			fn := srcFunc{line: line}
			sigStart := i
			for i < len(src) && src[i] != '{' {
				if src[i] == '\n' {
					line++
				}
				i++
			}
			if i >= len(src) {
				return nil, fmt.Errorf("line %d: unterminated function signature", fn.line)
			}
			fn.signature = "func " + strings.TrimSpace(src[sigStart:i])
			i++ // {

			body, end, err := scanBody(src[i:], line)
			if err != nil {
				return nil, err
			}
			fn.body = body
			line += strings.Count(src[i:i+end], "\n")
			i += end
			out.funcs = append(out.funcs, fn)
		default:
			return nil, fmt.Errorf("line %d: expected package or func, found %q", line, word)
		}
	}
}

// scanBody consumes up to and including the brace that closes an
// already-open block, returning the text before it.
func scanBody(src string, startLine int) (string, int, error) {
	depth := 1
	line := startLine
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			line++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[:i], i + 1, nil
			}
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
				line++
			}
		case '"':
			i++
			for i < len(src) && src[i] != '"' {
				if src[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(src) {
				return "", 0, fmt.Errorf("line %d: unterminated string literal", line)
			}
		}
	}
	return "", 0, fmt.Errorf("line %d: unterminated function body", startLine)
}

type signature struct {
	name       string
	params     string
	paramTypes map[string]string
}

// parseSignature runs the Go parser over the declaration so parameter
// lists follow real Go syntax.
func parseSignature(sig string) (*signature, error) {
	wrapped := "package p\n" + sig + " {}\n"
	fset := gotoken.NewFileSet()
	f, err := goparser.ParseFile(fset, "signature.go", wrapped, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", sig, err)
	}
	if len(f.Decls) != 1 {
		return nil, fmt.Errorf("invalid signature %q", sig)
	}
	decl, ok := f.Decls[0].(*goast.FuncDecl)
	if !ok {
		return nil, fmt.Errorf("invalid signature %q", sig)
	}

	out := &signature{
		name:       decl.Name.Name,
		paramTypes: map[string]string{},
	}
	var params []string
	if decl.Type.Params != nil {
		for _, field := range decl.Type.Params.List {
			var typ bytes.Buffer
			if err := format.Node(&typ, fset, field.Type); err != nil {
				return nil, err
			}
			if len(field.Names) == 0 {
				return nil, fmt.Errorf("invalid signature %q: parameters need names", sig)
			}
			var names []string
			for _, name := range field.Names {
				names = append(names, name.Name)
				out.paramTypes[name.Name] = typ.String()
			}
			params = append(params, strings.Join(names, ", ")+" "+typ.String())
		}
	}
	out.params = strings.Join(params, ", ")
	return out, nil
}

func usesPackage(expr goast.Expr, pkg string) bool {
	found := false
	goast.Inspect(expr, func(n goast.Node) bool {
		if sel, ok := n.(*goast.SelectorExpr); ok {
			if id, ok := sel.X.(*goast.Ident); ok && id.Name == pkg {
				found = true
			}
		}
		return !found
	})
	return found
}

// packageNameFor derives a package name from the file's directory.
func packageNameFor(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, dir)
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return "views"
	}
	return name
}
