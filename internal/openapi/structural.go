package openapi

import (
	"fmt"
	"strings"

	"github.com/mikros-dev/protoc-gen-mikros-rest/pkg/openapi/spec"
)

const targetVersion = "3.1.0"

func (p *patcher) structural() error {
	if v, ok := p.doc["openapi"]; ok {
		version := fmt.Sprint(v)
		if !strings.HasPrefix(version, "3.") {
			return fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
		}
	}

	if p.cfg.Transforms.UpgradeTo31 {
		p.doc["openapi"] = targetVersion
		walk(map[string]any(p.doc), convertNullable)
	}

	if p.cfg.Transforms.InjectServers {
		if err := p.injectServers(); err != nil {
			return err
		}
		if err := p.injectInfo(); err != nil {
			return err
		}
	}

	return nil
}

// convertNullable turns the 3.0 "nullable" keyword into a 3.1 type list.
func convertNullable(m map[string]any) {
	nullable, ok := m["nullable"]
	if !ok {
		return
	}
	delete(m, "nullable")

	if b, _ := nullable.(bool); !b {
		return
	}

	switch t := m["type"].(type) {
	case string:
		m["type"] = []any{t, "null"}
	case []any:
		for _, v := range t {
			if v == "null" {
				return
			}
		}
		m["type"] = append(t, "null")
	}
}

func (p *patcher) injectServers() error {
	if len(p.cfg.Servers) == 0 {
		return nil
	}

	servers := make([]any, 0, len(p.cfg.Servers))
	for _, s := range p.cfg.Servers {
		node, err := spec.Node(s)
		if err != nil {
			return err
		}
		servers = append(servers, node)
	}

	p.doc["servers"] = servers
	return nil
}

func (p *patcher) injectInfo() error {
	info := p.cfg.Info
	if info == nil {
		return nil
	}

	node, err := spec.Node(info)
	if err != nil {
		return err
	}

	target := ensure(p.doc, "info")
	for k, v := range node {
		target[k] = v
	}

	if info.ExternalDocs != nil {
		docs, err := spec.Node(info.ExternalDocs)
		if err != nil {
			return err
		}
		p.doc["externalDocs"] = docs
	}

	return nil
}
