// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pryzma/pryzma/internal/diagnostic"
	"github.com/pryzma/pryzma/pkg/directive"
	"github.com/pryzma/pryzma/pkg/resolve"

	"github.com/spf13/afero"
)

type (
	// ModuleKey identifies one bundled module. The same file used under two
	// aliases, or once namespaced and once exempt, yields two modules.
	ModuleKey struct {
		// Path is the real path of the module file.
		Path string
		// Alias is the effective alias: the explicit alias, else the file
		// stem unless the module is exempt, in which case it may be empty.
		Alias  string
		Exempt bool
	}

	// ModuleRecord is a bundled module and its processed text.
	ModuleRecord struct {
		Key  ModuleKey
		Body string
	}

	// ModuleMetadata is the manifest form of a ModuleRecord.
	ModuleMetadata struct {
		Path              string `json:"path"`
		Alias             string `json:"alias"`
		NamespacingExempt bool   `json:"namespacing_exempt"`
	}

	// Skip records a file that was not expanded because it was already being
	// expanded higher up the stack.
	Skip struct {
		Path string
		// From is the file holding the directive that re-entered Path.
		From string
		Line int
		Kind directive.Kind
	}

	// Result is the output of one Bundle call.
	Result struct {
		Text        string
		Modules     []ModuleRecord
		Skips       []Skip
		Diagnostics []diagnostic.Diagnostic
	}

	// Bundler produces bundles. It holds no per-bundle state.
	Bundler struct {
		Resolver *resolve.Resolver
		// Fs overrides the resolver's filesystem when set.
		Fs afero.Fs
	}

	// frame is a file being expanded. done receives the processed text
	// when every line has been consumed.
	frame struct {
		path  string
		dir   string
		lines []string
		next  int
		out   strings.Builder
		done  func(body string)
	}

	session struct {
		b          *Bundler
		fsys       afero.Fs
		stack      []*frame
		inProgress map[string]bool
		reserved   map[ModuleKey]bool
		result     *Result
	}
)

// Metadata returns the manifest entry for the module.
func (m ModuleRecord) Metadata() ModuleMetadata {
	return ModuleMetadata{Path: m.Key.Path, Alias: m.Key.Alias, NamespacingExempt: m.Key.Exempt}
}

// Label is the name shown in the module's bundle header.
func (m ModuleRecord) Label() string {
	if m.Key.Alias != "" {
		return m.Key.Alias
	}
	return filepath.Base(m.Key.Path)
}

// Metadata returns the manifest entries of all modules in bundle order.
func (r *Result) Metadata() []ModuleMetadata {
	out := make([]ModuleMetadata, len(r.Modules))
	for i, m := range r.Modules {
		out[i] = m.Metadata()
	}
	return out
}

// New returns a Bundler using resolver for references and files.
func New(resolver *resolve.Resolver) *Bundler {
	return &Bundler{Resolver: resolver}
}

// Bundle expands entry. Only an unreadable entry file is an error; every
// other problem is reported in Result.Diagnostics and the bundle is still
// produced.
func (b *Bundler) Bundle(entry string) (*Result, error) {
	s := &session{
		b:          b,
		fsys:       b.fs(),
		inProgress: make(map[string]bool),
		reserved:   make(map[ModuleKey]bool),
		result:     &Result{},
	}

	entryPath := b.Resolver.RealPath(entry)
	data, err := afero.ReadFile(s.fsys, entryPath)
	if err != nil {
		return nil, fmt.Errorf("reading entry file %s: %w", entry, err)
	}

	var entryBody string
	s.pushContent(entryPath, string(data), func(body string) { entryBody = body })
	s.run()

	s.result.Text = s.assemble(entryBody)
	return s.result, nil
}

func (s *session) run() {
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		if top.next >= len(top.lines) {
			s.stack = s.stack[:len(s.stack)-1]
			delete(s.inProgress, top.path)
			top.done(top.out.String())
			continue
		}
		line := top.lines[top.next]
		top.next++
		lineNo := top.next

		stripped := strings.TrimSpace(directive.StripComment(line))
		switch {
		case directive.IsUseLine(stripped):
			stmt, ok := directive.ParseUse(line)
			if !ok {
				continue
			}
			resolved, err := s.b.Resolver.Resolve(stmt.Target, top.dir)
			if err != nil {
				s.warn(diagnostic.CodeUnresolvedReference, top.path, lineNo, "unable to resolve module %q", stmt.Target)
				continue
			}
			s.includeModule(resolved, stmt, top.path, lineNo)
		case directive.IsInsertLine(stripped):
			target := directive.InsertTarget(stripped)
			resolved, err := s.b.Resolver.Resolve(target, top.dir)
			if err != nil {
				s.warn(diagnostic.CodeUnresolvedReference, top.path, lineNo, "unable to resolve insert %q", target)
				continue
			}
			parent := top
			s.push(resolved, top.path, lineNo, directive.KindInsert, func(body string) {
				parent.out.WriteString(body)
			})
		default:
			top.out.WriteString(line)
		}
	}
}

// includeModule reserves the module's slot on first encounter and schedules
// its expansion. Later encounters of the same key are no-ops.
func (s *session) includeModule(resolved string, stmt directive.UseStatement, from string, line int) {
	exempt := stmt.NamespacingExempt()
	alias := stmt.Alias
	if !exempt && alias == "" {
		alias = stem(resolved)
	}

	key := ModuleKey{Path: s.b.Resolver.RealPath(resolved), Alias: alias, Exempt: exempt}
	if s.reserved[key] {
		return
	}
	s.reserved[key] = true
	idx := len(s.result.Modules)
	s.result.Modules = append(s.result.Modules, ModuleRecord{Key: key})

	s.push(key.Path, from, line, directive.KindUse, func(body string) {
		if !exempt {
			body = Namespace(body, alias)
		}
		s.result.Modules[idx].Body = body
	})
}

// push schedules path for expansion. A file that is already being expanded
// or cannot be read contributes an empty body.
func (s *session) push(path, from string, line int, kind directive.Kind, done func(string)) {
	realPath := s.b.Resolver.RealPath(path)
	if s.inProgress[realPath] {
		s.result.Skips = append(s.result.Skips, Skip{Path: realPath, From: from, Line: line, Kind: kind})
		code := diagnostic.CodeInsertRecursion
		if kind == directive.KindUse {
			code = diagnostic.CodeModuleReentry
		}
		s.warn(code, from, line, "%s is already being expanded, skipping nested %s", realPath, kind)
		done("")
		return
	}

	data, err := afero.ReadFile(s.fsys, realPath)
	if err != nil {
		s.result.Diagnostics = append(s.result.Diagnostics,
			diagnostic.Error(diagnostic.CodeUnreadableFile, realPath, err, "missing file during bundling"))
		done("")
		return
	}
	s.pushContent(realPath, string(data), done)
}

func (s *session) pushContent(realPath, content string, done func(string)) {
	s.inProgress[realPath] = true
	s.stack = append(s.stack, &frame{
		path:  realPath,
		dir:   filepath.Dir(realPath),
		lines: splitLines(content),
		done:  done,
	})
}

func (s *session) warn(code diagnostic.Code, path string, line int, format string, args ...any) {
	s.result.Diagnostics = append(s.result.Diagnostics, diagnostic.Warn(code, path, line, format, args...))
}

// assemble joins module blocks and the entry body. Each module block is a
// header line followed by the right-trimmed module text.
func (s *session) assemble(entryBody string) string {
	parts := make([]string, 0, 2*len(s.result.Modules)+1)
	for i, m := range s.result.Modules {
		parts = append(parts,
			fmt.Sprintf("// [bundle] module %d: %s\n", i+1, m.Label()),
			strings.TrimRightFunc(m.Body, unicode.IsSpace)+"\n",
		)
	}
	if entryBody != "" {
		parts = append(parts, entryBody)
	}
	return strings.Join(parts, "\n")
}

func (b *Bundler) fs() afero.Fs {
	if b.Fs != nil {
		return b.Fs
	}
	if b.Resolver != nil && b.Resolver.Fs != nil {
		return b.Resolver.Fs
	}
	return afero.NewOsFs()
}

// splitLines splits content after each newline, keeping line endings.
func splitLines(content string) []string {
	lines := strings.SplitAfter(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
