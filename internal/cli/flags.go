package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(value string, choices ...string) *choiceValue {
	return &choiceValue{value: value, choices: choices}
}

func (c *choiceValue) String() string { return c.value }

func (c *choiceValue) Set(value string) error {
	value = strings.TrimSpace(value)
	for _, choice := range c.choices {
		if value == choice {
			c.value = value
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(c.choices, "|"))
}

// Type is reported as string so GetString can read the flag.
func (c *choiceValue) Type() string { return "string" }

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	Yes          bool
	Verbose      bool
	AllowUnclean bool
	NoColor      bool
	LogFormat    string
	FromRepo     string
	Dialect      string
}

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return fallback, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalStringSliceFlag(cmd *cobra.Command, name string) ([]string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return nil, nil
	}
	values, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out, nil
}

func parseGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	var opts globalOptions
	var err error

	bools := []struct {
		name string
		dst  *bool
	}{
		{"yes", &opts.Yes},
		{"verbose", &opts.Verbose},
		{"allow-unclean", &opts.AllowUnclean},
		{"no-color", &opts.NoColor},
	}
	for _, flag := range bools {
		if *flag.dst, err = OptionalBoolFlag(cmd, flag.name, false); err != nil {
			return opts, err
		}
	}

	if opts.LogFormat, err = OptionalStringFlag(cmd, "log-format"); err != nil {
		return opts, err
	}
	switch opts.LogFormat {
	case "", "text", "json":
	default:
		return opts, fmt.Errorf("unsupported log format %q (supported: text, json)", opts.LogFormat)
	}

	if opts.FromRepo, err = OptionalStringFlag(cmd, "from-repo"); err != nil {
		return opts, err
	}
	if opts.Dialect, err = OptionalStringFlag(cmd, "dialect"); err != nil {
		return opts, err
	}
	return opts, nil
}
