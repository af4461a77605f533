package openapi

import (
	"strings"
)

func (p *patcher) normalization() error {
	if !p.cfg.Transforms.NormalizeLineEndings {
		return nil
	}

	for k, v := range p.doc {
		p.doc[k] = normalizeLineEndings(v)
	}

	return nil
}

func normalizeLineEndings(v any) any {
	switch t := v.(type) {
	case string:
		if !strings.Contains(t, "\r") {
			return t
		}
		return strings.ReplaceAll(strings.ReplaceAll(t, "\r\n", "\n"), "\r", "\n")
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeLineEndings(item)
		}
	case []any:
		for i, item := range t {
			t[i] = normalizeLineEndings(item)
		}
	}

	return v
}
