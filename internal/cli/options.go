package cli

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// Options are the command line options.
type Options struct {
	OptHelp         bool     `short:"h" long:"help" description:"show this help message and exit"`
	OptRcfile       string   `long:"rcfile" description:"path to the settings file"`
	OptInputContext string   `long:"input-context" description:"context that receives each input line.\ndefault is the InputContext of the settings file"`
	OptSet          []string `long:"set" description:"fix a context value for every line, as name=value. may be repeated"`
	OptWorkers      int      `long:"workers" short:"w" description:"number of lines matched in parallel. default is one per CPU"`
	OptMaxSteps     int      `long:"max-steps" description:"give up on a line after this many backtracking steps"`
	OptStripANSI    bool     `long:"strip-ansi" description:"remove ANSI color codes from input lines"`
	OptMetrics      bool     `long:"metrics" description:"print Prometheus metrics to stderr when done"`
	OptVersion      bool     `long:"version" description:"print the version and exit"`
}

func (options *Options) parse(s []string) ([]string, error) {
	p := flags.NewParser(options, flags.None)
	args, err := p.ParseArgs(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid command line options")
	}

	if err := options.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid command line arguments")
	}

	return args, nil
}

// Validate checks option values that go-flags cannot check by itself.
func (options Options) Validate() error {
	if options.OptWorkers < 0 {
		return errors.Errorf("--workers must not be negative, got %d", options.OptWorkers)
	}
	if options.OptMaxSteps < 0 {
		return errors.Errorf("--max-steps must not be negative, got %d", options.OptMaxSteps)
	}
	if _, err := options.Values(); err != nil {
		return err
	}
	return nil
}

// Values returns the --set assignments by context name.
func (options Options) Values() (map[string]string, error) {
	values := make(map[string]string, len(options.OptSet))
	for _, kv := range options.OptSet {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("--set expects name=value, got %q", kv)
		}
		values[name] = value
	}
	return values, nil
}

func (options Options) help() []byte {
	buf := bytes.Buffer{}

	fmt.Fprintf(&buf, `
Usage: graphmaster [options] [FILE]

Matches every line of FILE (or standard input) against the categories
of the settings file and prints the value of the best category.

Options:
`)

	t := reflect.TypeOf(options)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag

		var o string
		if s := tag.Get("short"); s != "" {
			o = fmt.Sprintf("-%s, --%s", tag.Get("short"), tag.Get("long"))
		} else {
			o = fmt.Sprintf("--%s", tag.Get("long"))
		}

		desc := strings.ReplaceAll(tag.Get("description"), "\n", "\n"+strings.Repeat(" ", 24))
		fmt.Fprintf(
			&buf,
			"  %-21s %s\n",
			o,
			desc,
		)
	}

	return buf.Bytes()
}
