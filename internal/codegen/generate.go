package codegen

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
	"golang.org/x/tools/imports"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/binding"
	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

// Result holds everything a generation run produced.
type Result struct {
	Files    []*File
	Manifest []PublicRoute
}

// File is a generated Go source file.
type File struct {
	Name    string
	Source  string
	Content string
}

// PublicRoute is an entry of the public route manifest.
type PublicRoute struct {
	Service string `yaml:"service"`
	Method  string `yaml:"method"`
	Verb    string `yaml:"verb"`
	Path    string `yaml:"path"`
}

// Generate resolves every bound method of the metadata and renders one Go
// file per proto file declaring bound services. Any method that fails to
// resolve aborts the whole batch.
func Generate(md *discovery.Metadata, cfg Config) (*Result, error) {
	services, err := binding.Resolve(md, binding.Config{WrapperType: cfg.WrapperType})
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	extension, err := parseExtensionType(cfg.ExtensionType)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	result := &Result{}
	for _, file := range md.Files {
		var fileServices []*binding.Service
		for _, s := range services {
			if s.Service.File == file {
				fileServices = append(fileServices, s)
			}
		}
		if len(fileServices) == 0 {
			continue
		}

		g := newFileGenerator(file, cfg, extension)
		content, err := g.render(fileServices)
		if err != nil {
			return nil, &GenerationError{File: file.Name, Err: err}
		}

		result.Files = append(result.Files, &File{
			Name:    OutputName(file.Name),
			Source:  file.Name,
			Content: content,
		})
		result.Manifest = append(result.Manifest, publicRoutes(fileServices, cfg.PublicMethods)...)
	}

	return result, nil
}

// OutputName returns the generated file name for a proto file.
func OutputName(protoFile string) string {
	return strings.TrimSuffix(protoFile, path.Ext(protoFile)) + ".rest.go"
}

func publicRoutes(services []*binding.Service, names []string) []PublicRoute {
	var routes []PublicRoute
	for _, s := range services {
		for _, m := range s.Methods {
			if discovery.IsPublic(m.Method, names) {
				routes = append(routes, PublicRoute{
					Service: s.Service.Name,
					Method:  m.Method.Name,
					Verb:    m.Verb,
					Path:    m.Template.RouterPath(),
				})
			}
		}
	}

	return routes
}

type extensionType struct {
	ImportPath string
	Name       string
	Pointer    bool
}

func parseExtensionType(s string) (*extensionType, error) {
	if s == "" {
		return nil, nil
	}

	ext := &extensionType{}
	if strings.HasPrefix(s, "*") {
		ext.Pointer = true
		s = s[1:]
	}

	slash := strings.LastIndex(s, "/")
	dot := strings.LastIndex(s, ".")
	if dot <= slash || dot == len(s)-1 {
		return nil, fmt.Errorf("invalid extension type '%s', expected 'import/path.Type'", s)
	}

	ext.ImportPath = s[:dot]
	ext.Name = s[dot+1:]

	return ext, nil
}

type fileGenerator struct {
	file      *discovery.File
	cfg       Config
	extension *extensionType
	imports   *importSet
	rest      string
}

func newFileGenerator(file *discovery.File, cfg Config, extension *extensionType) *fileGenerator {
	g := &fileGenerator{
		file:      file,
		cfg:       cfg,
		extension: extension,
		imports:   newImportSet(file.GoImportPath),
	}
	g.rest = g.imports.use(cfg.runtimePath(), "rest")

	return g
}

type fileView struct {
	Source     string
	Package    string
	StdImports []importSpec
	Imports    []importSpec
	Services   []*serviceView
}

type serviceView struct {
	Name             string
	Prefix           string
	Server           string
	Routes           []*routeView
	PublicRoutes     []string
	ForwardedHeaders []string
	KeepAlive        int
	HasStream        bool
}

type routeView struct {
	Handler   string
	Method    string
	Verb      string
	VerbName  string
	Path      string
	Template  string
	Request   string
	Response  string
	Shape     string
	Status    string
	Extension string
	UsesVars  bool
	UsesQuery bool
	BodyFull  bool
	Query     []string
	Params    []string
}

var verbConstants = map[string]string{
	"GET":    "http.MethodGet",
	"PUT":    "http.MethodPut",
	"POST":   "http.MethodPost",
	"DELETE": "http.MethodDelete",
	"PATCH":  "http.MethodPatch",
}

func (g *fileGenerator) render(services []*binding.Service) (string, error) {
	g.imports.use("net/http", "http")
	g.imports.use("github.com/gorilla/mux", "mux")

	view := &fileView{
		Source:  g.file.Name,
		Package: g.file.GoPackageName,
	}

	for _, s := range services {
		view.Services = append(view.Services, g.serviceView(s))
	}

	view.StdImports, view.Imports = g.imports.specs()

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("could not execute template: %w", err)
	}

	formatted, err := imports.Process(OutputName(g.file.Name), buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return "", fmt.Errorf("could not format generated source: %w", err)
	}

	return string(formatted), nil
}

func (g *fileGenerator) serviceView(s *binding.Service) *serviceView {
	view := &serviceView{
		Name:             s.Service.GoName,
		Prefix:           strcase.ToLowerCamel(s.Service.GoName),
		Server:           s.Service.GoName + "Server",
		ForwardedHeaders: g.cfg.forwardedHeaders(),
		KeepAlive:        g.cfg.keepAliveSecs(),
	}

	for _, m := range s.Methods {
		route := g.routeView(view.Prefix, m)
		if m.Shape == binding.ShapeStream {
			view.HasStream = true
		}
		if discovery.IsPublic(m.Method, g.cfg.PublicMethods) {
			view.PublicRoutes = append(view.PublicRoutes, route.Path)
		}

		view.Routes = append(view.Routes, route)
	}

	if view.HasStream {
		g.imports.use("time", "time")
	}

	return view
}

func (g *fileGenerator) routeView(prefix string, m *binding.Method) *routeView {
	var (
		input = m.Method.Input
		route = &routeView{
			Handler:  prefix + m.Method.GoName + "Handler",
			Method:   m.Method.GoName,
			Verb:     verbConstants[m.Verb],
			VerbName: m.Verb,
			Path:     m.Template.RouterPath(),
			Template: m.Method.Binding.Path,
			Request:  g.messageType(input),
			Shape:    m.Shape.String(),
			UsesVars: len(m.Path) > 0,
			BodyFull: m.BodyFull,
		}
	)

	switch m.Shape {
	case binding.ShapeCreated:
		route.Status = "http.StatusCreated"
	case binding.ShapeStream:
		route.Response = g.messageType(m.Method.Output)
	default:
		route.Status = "http.StatusOK"
	}

	if g.extension != nil {
		ext := g.imports.qualify(g.extension.ImportPath, "", g.extension.Name)
		if g.extension.Pointer {
			ext = "*" + ext
		}
		route.Extension = ext
	}

	for _, p := range m.Query {
		route.Query = append(route.Query, g.queryParamCode(p, input))
	}
	route.UsesQuery = len(route.Query) > 0

	for _, p := range m.Path {
		route.Params = append(route.Params, g.pathParamCode(p, input))
	}

	return route
}

var fileTemplate = template.Must(template.New("rest.go.tmpl").
	Funcs(template.FuncMap{"quote": quote}).
	ParseFS(templates, "templates/rest.go.tmpl"))

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
