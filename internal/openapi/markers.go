package openapi

import (
	"strings"
)

const notImplementedPrefix = "**Not implemented:** this operation currently returns UNIMPLEMENTED.\n\n"

func (p *patcher) markers() error {
	for _, op := range p.doc.operations() {
		id := op.id()

		if p.unimplemented[id] {
			op.op["x-not-implemented"] = true

			if description := str(op.op, "description"); !strings.HasPrefix(description, notImplementedPrefix) {
				op.op["description"] = notImplementedPrefix + description
			}

			responses := ensure(op.op, "responses")
			if _, exists := responses["501"]; !exists {
				response, err := p.errorResponse("Not Implemented")
				if err != nil {
					return err
				}
				responses["501"] = response
			}
		}

		if p.deprecated[id] {
			op.op["deprecated"] = true
		}
	}

	return nil
}
