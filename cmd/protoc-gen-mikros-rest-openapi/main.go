package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

var binName = filepath.Base(os.Args[0])

const usage = `Usage: %s <command> [options]

Patches the OpenAPI document of a generic generator so that it describes the
REST routes generated by protoc-gen-mikros-rest.

Commands:
  patch      apply every phase and write the patched document
  check      fail when the document differs from its patched version
  discover   print the services and tables found in a descriptor set

Run '%s <command> --help' for the options of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(arguments []string, stdout, stderr io.Writer) int {
	if len(arguments) == 0 {
		fmt.Fprintf(stderr, usage, binName, binName)
		return 2
	}

	var handler func(c *command) error
	switch arguments[0] {
	case "patch":
		handler = (*command).patch
	case "check":
		handler = (*command).check
	case "discover":
		handler = (*command).discover
	case "help", "-h", "--help":
		fmt.Fprintf(stdout, usage, binName, binName)
		return 0
	default:
		fmt.Fprintf(stderr, "%s: unknown command '%s'\n\n", binName, arguments[0])
		fmt.Fprintf(stderr, usage, binName, binName)
		return 2
	}

	c, err := newCommand(arguments[0], arguments[1:], stdout, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", binName, err)
		return 2
	}

	if err := handler(c); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", binName, err)
		return 1
	}

	return 0
}
