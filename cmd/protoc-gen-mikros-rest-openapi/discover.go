package main

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/mikros-dev/protoc-gen-mikros-rest/internal/discovery"
)

type summary struct {
	Services      []*serviceSummary `yaml:"services"`
	UUIDSchema    string            `yaml:"uuid_schema,omitempty"`
	RedirectPaths []string          `yaml:"redirect_paths,omitempty"`
	Warnings      []string          `yaml:"warnings,omitempty"`
}

type serviceSummary struct {
	Name      string           `yaml:"name"`
	File      string           `yaml:"file"`
	GoPackage string           `yaml:"go_package"`
	Methods   []*methodSummary `yaml:"methods"`
}

type methodSummary struct {
	Name        string `yaml:"name"`
	OperationID string `yaml:"operation_id"`
	Verb        string `yaml:"verb"`
	Path        string `yaml:"path"`
	Streaming   string `yaml:"streaming"`
	Deprecated  bool   `yaml:"deprecated,omitempty"`
}

func (c *command) discover() error {
	cfg, err := c.settings()
	if err != nil {
		return err
	}

	md, err := c.metadata(cfg)
	if err != nil {
		return err
	}

	b, err := yaml.Marshal(newSummary(md))
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(c.stdout, string(b))
	return err
}

func newSummary(md *discovery.Metadata) *summary {
	operationIDs := make(map[string]string)
	for _, id := range md.OperationIDs {
		operationIDs[id.Service+"."+id.Method] = id.OperationID
	}

	s := &summary{
		Services:      []*serviceSummary{},
		UUIDSchema:    md.UUIDSchema,
		RedirectPaths: md.RedirectPaths,
		Warnings:      md.Warnings,
	}

	for _, service := range md.Services {
		ss := &serviceSummary{
			Name:      service.FullName,
			File:      service.File.Name,
			GoPackage: service.File.GoImportPath,
		}

		for _, m := range service.Methods {
			if m.Binding == nil {
				continue
			}

			ss.Methods = append(ss.Methods, &methodSummary{
				Name:        m.Name,
				OperationID: operationIDs[service.Name+"."+m.Name],
				Verb:        m.Binding.Verb,
				Path:        m.Binding.Path,
				Streaming:   m.Streaming.String(),
				Deprecated:  m.Deprecated,
			})
		}

		s.Services = append(s.Services, ss)
	}

	return s
}
