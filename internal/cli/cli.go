// Package cli implements the graphmaster command: it loads categories
// from a settings file and classifies input lines.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/mattn/go-runewidth"
	"github.com/peco/graphmaster"
	"github.com/peco/graphmaster/batch"
	"github.com/peco/graphmaster/config"
	"github.com/peco/graphmaster/internal/util"
	"github.com/peco/graphmaster/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/term"
)

const version = "v0.1.0"

// maxLineWidth caps the column holding the input lines.
const maxLineWidth = 40

// CLI runs the graphmaster command.
type CLI struct {
	Argv   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	locator config.Locator
}

// New creates a CLI bound to the process's arguments and standard streams.
func New() *CLI {
	return &CLI{
		Argv:    os.Args[1:],
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		locator: config.DefaultConfigLocator,
	}
}

// Run executes the command. The returned error carries the exit status
// for util.GetExitStatus.
func (c *CLI) Run(ctx context.Context) (err error) {
	if pdebug.Enabled {
		g := pdebug.Marker("CLI.Run %v", c.Argv).BindError(&err)
		defer g.End()
	}

	var opts Options
	args, err := opts.parse(c.Argv)
	if err != nil {
		c.Stderr.Write(opts.help())
		return util.NewExitError(2, err)
	}

	if opts.OptHelp {
		c.Stdout.Write(opts.help())
		return nil
	}

	if opts.OptVersion {
		fmt.Fprintf(c.Stdout, "graphmaster: %s\n", version)
		return nil
	}

	in, closer, err := c.openInput(args)
	if err != nil {
		return err
	}
	defer closer()

	cfg, err := c.readConfig(opts.OptRcfile)
	if err != nil {
		return err
	}

	inputContext := cfg.InputContext
	if opts.OptInputContext != "" {
		inputContext = opts.OptInputContext
	}
	maxSteps := cfg.MaxSteps
	if opts.OptMaxSteps > 0 {
		maxSteps = opts.OptMaxSteps
	}

	reg, err := cfg.Registry()
	if err != nil {
		return errors.Wrap(err, "failed to set up contexts")
	}
	if _, err := reg.Lookup(inputContext); err != nil {
		return errors.Wrap(err, "invalid input context")
	}
	fixed, _ := opts.Values()
	for name := range fixed {
		if _, err := reg.Lookup(name); err != nil {
			return errors.Wrap(err, "invalid --set")
		}
	}

	promReg := prometheus.NewRegistry()
	classifier := graphmaster.New(reg,
		graphmaster.WithMaxSteps(maxSteps),
		graphmaster.WithObserver(metrics.New(promReg)),
	)

	report, err := cfg.Load(classifier)
	if err != nil {
		return errors.Wrap(err, "failed to load categories")
	}
	if report.Duplicates > 0 {
		fmt.Fprintf(c.Stderr, "graphmaster: skipped %d duplicate categories\n", report.Duplicates)
	}

	lines, err := readLines(in, opts.OptStripANSI)
	if err != nil {
		return errors.Wrap(err, "failed to read input")
	}

	providers := make([]graphmaster.ValueProvider, len(lines))
	for i, line := range lines {
		values := graphmaster.NewValues()
		for name, value := range fixed {
			values.Set(name, value)
		}
		values.Set(inputContext, line)
		providers[i] = values
	}

	outcomes, err := batch.Run(ctx, classifier, providers, opts.OptWorkers)
	if err != nil {
		return errors.Wrap(err, "matching was interrupted")
	}

	unmatched := c.printOutcomes(lines, outcomes, inputContext)

	if opts.OptMetrics {
		if err := dumpMetrics(c.Stderr, promReg); err != nil {
			return err
		}
	}

	if unmatched > 0 {
		return util.NewExitError(1, errors.Errorf("%d of %d lines did not match", unmatched, len(lines)))
	}
	return nil
}

func (c *CLI) openInput(args []string) (io.Reader, func(), error) {
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to open file %s", args[0])
		}
		return f, func() { f.Close() }, nil
	}

	if f, ok := c.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, nil, errors.New("you must supply something to work with via filename or stdin")
	}
	return c.Stdin, func() {}, nil
}

func (c *CLI) readConfig(rcfile string) (*config.Config, error) {
	if rcfile == "" {
		locator := c.locator
		if locator == nil {
			locator = config.DefaultConfigLocator
		}
		file, err := config.LocateRcfile(locator)
		if err != nil {
			return nil, errors.Wrap(err, "no settings file given with --rcfile and none found")
		}
		rcfile = file
	}

	var cfg config.Config
	if err := cfg.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize config")
	}
	if err := cfg.ReadFilename(rcfile); err != nil {
		return nil, errors.Wrapf(err, "failed to read settings from %s", rcfile)
	}
	return &cfg, nil
}

func readLines(in io.Reader, stripANSI bool) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if stripANSI {
			line = util.StripANSISequence(line)
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// printOutcomes writes one row per input line and returns the number
// of lines without a match.
func (c *CLI) printOutcomes(lines []string, outcomes []batch.Outcome, inputContext string) int {
	width := 0
	for _, line := range lines {
		width = max(width, runewidth.StringWidth(line))
	}
	width = min(width, maxLineWidth)

	out := bufio.NewWriter(c.Stdout)
	defer out.Flush()

	unmatched := 0
	for i, o := range outcomes {
		cell := runewidth.FillRight(runewidth.Truncate(lines[i], width, "..."), width)
		switch {
		case o.Matched():
			fmt.Fprintf(out, "%s  => %v", cell, o.Result.Value())
			if caps := o.Result.Wildcards(inputContext); len(caps) > 0 {
				fmt.Fprintf(out, "  [%s]", strings.Join(caps, " | "))
			}
			fmt.Fprintln(out)
		case errors.Is(o.Err, graphmaster.ErrNoMatch):
			unmatched++
			fmt.Fprintf(out, "%s  => (no match)\n", cell)
		default:
			unmatched++
			fmt.Fprintf(out, "%s  => (error: %s)\n", cell, o.Err)
		}
	}
	return unmatched
}

func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "failed to write metrics")
		}
	}
	return nil
}
