package codegen

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

type importSpec struct {
	Alias string
	Path  string
}

// importSet tracks the packages referenced by one generated file and picks
// an alias for each of them.
type importSet struct {
	self    string
	aliases map[string]string
	taken   map[string]bool
}

// Identifiers declared inside generated handlers. Package aliases must not
// shadow them.
var reservedNames = []string{
	"ctx", "err", "q", "r", "raw", "req", "resp", "stream", "svc", "v", "vars", "vs", "w",
}

func newImportSet(self string) *importSet {
	s := &importSet{
		self:    self,
		aliases: make(map[string]string),
		taken:   make(map[string]bool),
	}
	for _, n := range reservedNames {
		s.taken[n] = true
	}

	return s
}

// use registers a package and returns the alias to qualify identifiers
// with, or an empty string for the package being generated.
func (s *importSet) use(importPath, name string) string {
	if importPath == s.self {
		return ""
	}
	if alias, ok := s.aliases[importPath]; ok {
		return alias
	}

	if name == "" {
		name = path.Base(importPath)
	}
	name = sanitizeAlias(name)

	alias := name
	for i := 2; s.taken[alias]; i++ {
		alias = fmt.Sprintf("%s%d", name, i)
	}

	s.taken[alias] = true
	s.aliases[importPath] = alias

	return alias
}

// qualify returns the Go expression naming an identifier of a package.
func (s *importSet) qualify(importPath, name, ident string) string {
	if alias := s.use(importPath, name); alias != "" {
		return alias + "." + ident
	}

	return ident
}

// specs returns the imports with the standard library first, each group
// sorted by path.
func (s *importSet) specs() ([]importSpec, []importSpec) {
	var std, others []importSpec
	for p, alias := range s.aliases {
		if isStdlib(p) {
			spec := importSpec{Path: p}
			if alias != path.Base(p) {
				spec.Alias = alias
			}
			std = append(std, spec)
			continue
		}

		others = append(others, importSpec{Alias: alias, Path: p})
	}

	sort.Slice(std, func(i, j int) bool { return std[i].Path < std[j].Path })
	sort.Slice(others, func(i, j int) bool { return others[i].Path < others[j].Path })

	return std, others
}

func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}

func sanitizeAlias(name string) string {
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "pkg" + name
	}

	return name
}
