package args

import (
	"fmt"
	"strconv"
	"strings"
)

// Args represents the plugin arguments read from the buf.gen.yaml settings
// file.
type Args struct {
	SettingsFilename string
	Debug            bool
}

// NewArgsFromString parses the plugin arguments from the given string.
func NewArgsFromString(s string) (*Args, error) {
	if s == "" {
		return &Args{}, nil
	}

	var (
		args       = &Args{}
		parameters = strings.Split(s, ",")
	)

	for _, param := range parameters {
		parts := strings.SplitN(param, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid plugin argument '%v'", param)
		}

		var (
			key   = strings.TrimSpace(parts[0])
			value = strings.TrimSpace(parts[1])
		)

		switch key {
		case "settings":
			args.SettingsFilename = value
		case "debug":
			debug, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid value for plugin argument 'debug': %w", err)
			}
			args.Debug = debug
		default:
			return nil, fmt.Errorf("unknown plugin argument '%v'", key)
		}
	}

	return args, nil
}
