package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/peco/graphmaster/chain"
	"github.com/peco/graphmaster/internal/util"
	"github.com/peco/graphmaster/registry"
	"github.com/peco/graphmaster/sequence"
	"github.com/peco/graphmaster/trie"
	"github.com/peco/graphmaster/unit"
)

// Granularity selects the units a context's patterns are made of.
type Granularity string

const (
	GranularityWord Granularity = "word"
	GranularityChar Granularity = "char"
)

func (g *Granularity) unmarshal(s string) error {
	switch s {
	case "", "word":
		*g = GranularityWord
	case "char":
		*g = GranularityChar
	default:
		return fmt.Errorf("invalid Granularity value %q: must be %q or %q", s, GranularityWord, GranularityChar)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by JSON/YAML decoders).
func (g *Granularity) UnmarshalText(b []byte) error {
	return g.unmarshal(string(b))
}

// Matcher selects how a context indexes its patterns.
type Matcher string

const (
	// MatcherTrie indexes every pattern unit by unit.
	MatcherTrie Matcher = "trie"
	// MatcherLookup indexes wildcard-free pattern tails as whole keys.
	MatcherLookup Matcher = "lookup"
)

func (m *Matcher) unmarshal(s string) error {
	switch s {
	case "", "trie":
		*m = MatcherTrie
	case "lookup":
		*m = MatcherLookup
	default:
		return fmt.Errorf("invalid Matcher value %q: must be %q or %q", s, MatcherTrie, MatcherLookup)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by JSON/YAML decoders).
func (m *Matcher) UnmarshalText(b []byte) error {
	return m.unmarshal(string(b))
}

// UnmarshalFlag implements go-flags Unmarshaler (used by CLI flag parsing).
func (m *Matcher) UnmarshalFlag(s string) error {
	return m.unmarshal(s)
}

// Config holds all the data that can be configured in the
// external configuration file
type Config struct {
	// Contexts are registered in the order given; earlier contexts are
	// matched first. When empty, DefaultContexts is used.
	Contexts   []ContextConfig  `json:"Contexts" yaml:"Contexts"`
	Categories []CategoryConfig `json:"Categories" yaml:"Categories"`

	// InputContext names the context fed by input lines.
	InputContext string `json:"InputContext" yaml:"InputContext"`

	// MaxSteps bounds backtracking per match. Zero means unbounded.
	MaxSteps int `json:"MaxSteps" yaml:"MaxSteps"`
}

// ContextConfig declares one context.
type ContextConfig struct {
	Name        string      `json:"Name" yaml:"Name"`
	Granularity Granularity `json:"Granularity" yaml:"Granularity"`
	Matcher     Matcher     `json:"Matcher" yaml:"Matcher"`

	// OneOrMore and ZeroOrMore override the wildcard markers.
	OneOrMore  string `json:"OneOrMore" yaml:"OneOrMore"`
	ZeroOrMore string `json:"ZeroOrMore" yaml:"ZeroOrMore"`

	// Default is the pattern used for categories that do not mention
	// this context. Unset means the zero-or-more marker.
	Default *string `json:"Default" yaml:"Default"`
	// NoDefault leaves the context unconstrained in categories that do
	// not mention it.
	NoDefault bool `json:"NoDefault" yaml:"NoDefault"`

	CaseSensitive bool `json:"CaseSensitive" yaml:"CaseSensitive"`
}

// CategoryConfig declares one category: a pattern per context and the
// value returned when it matches.
type CategoryConfig struct {
	Patterns map[string]string `json:"Patterns" yaml:"Patterns"`
	Value    string            `json:"Value" yaml:"Value"`
}

// DefaultInputContext is the context fed by input lines unless
// configured otherwise.
const DefaultInputContext = "input"

// DefaultContexts returns the usual input, that and topic contexts.
func DefaultContexts() []ContextConfig {
	return []ContextConfig{
		{Name: "input", Granularity: GranularityWord, Matcher: MatcherTrie},
		{Name: "that", Granularity: GranularityWord, Matcher: MatcherTrie},
		{Name: "topic", Granularity: GranularityWord, Matcher: MatcherTrie},
	}
}

var homedirFunc = util.Homedir

// Init initializes the Config with default values
func (c *Config) Init() error {
	c.InputContext = DefaultInputContext
	return nil
}

// ReadFilename reads the config from the given file, and
// does the appropriate processing, if any
func (c *Config) ReadFilename(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer f.Close()

	switch ext := filepath.Ext(filename); ext {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(c)
		if err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		err = json.NewDecoder(f).Decode(c)
		if err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	}

	return c.Validate()
}

// ContextList returns the declared contexts, or DefaultContexts when
// none are declared.
func (c *Config) ContextList() []ContextConfig {
	if len(c.Contexts) == 0 {
		return DefaultContexts()
	}
	return c.Contexts
}

// Validate checks the declarations for mistakes that would otherwise
// only show up while loading.
func (c *Config) Validate() error {
	seen := make(map[string]struct{})
	for i, cc := range c.ContextList() {
		if cc.Name == "" {
			return fmt.Errorf("context #%d has no name", i+1)
		}
		if _, ok := seen[cc.Name]; ok {
			return fmt.Errorf("context %q declared twice", cc.Name)
		}
		seen[cc.Name] = struct{}{}
		if _, err := cc.Behaviour(); err != nil {
			return err
		}
	}
	if c.InputContext != "" {
		if _, ok := seen[c.InputContext]; !ok {
			return fmt.Errorf("input context %q is not declared", c.InputContext)
		}
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("invalid MaxSteps %d: must not be negative", c.MaxSteps)
	}
	return nil
}

// Behaviour converts the declaration into a registry.Behaviour.
func (cc ContextConfig) Behaviour() (registry.Behaviour, error) {
	b := registry.WordBehaviour()
	if cc.Granularity == GranularityChar {
		b = registry.CharBehaviour()
	}
	if cc.Matcher == MatcherLookup {
		b.Factory = trie.LookupFactory()
	}
	if cc.OneOrMore != "" {
		b.Syntax.OneOrMore = cc.OneOrMore
	}
	if cc.ZeroOrMore != "" {
		b.Syntax.ZeroOrMore = cc.ZeroOrMore
	}
	if b.Syntax.OneOrMore == b.Syntax.ZeroOrMore {
		return b, fmt.Errorf("context %q: wildcard markers must differ, both are %q", cc.Name, b.Syntax.OneOrMore)
	}
	if b.Syntax.Granularity == unit.Char {
		for _, marker := range []string{b.Syntax.OneOrMore, b.Syntax.ZeroOrMore} {
			if len([]rune(marker)) != 1 {
				return b, fmt.Errorf("context %q: character markers must be a single character, got %q", cc.Name, marker)
			}
		}
	} else {
		for _, marker := range []string{b.Syntax.OneOrMore, b.Syntax.ZeroOrMore} {
			if strings.ContainsFunc(marker, func(r rune) bool { return r == ' ' || r == '\t' }) {
				return b, fmt.Errorf("context %q: word markers must not contain spaces, got %q", cc.Name, marker)
			}
		}
	}
	b.Syntax.FoldCase = !cc.CaseSensitive

	switch {
	case cc.NoDefault:
		b.HasDefault = false
		b.DefaultPattern = ""
	case cc.Default != nil:
		b.DefaultPattern = *cc.Default
	default:
		b.DefaultPattern = b.Syntax.ZeroOrMore
	}
	return b, nil
}

// Registry registers the declared contexts, in order, into a new
// registry.
func (c *Config) Registry() (*registry.Registry, error) {
	reg := registry.New()
	for _, cc := range c.ContextList() {
		b, err := cc.Behaviour()
		if err != nil {
			return nil, err
		}
		if _, err := reg.Register(cc.Name, b); err != nil {
			return nil, fmt.Errorf("failed to register context: %w", err)
		}
	}
	return reg, nil
}

// Inserter accepts categories. *graphmaster.Classifier implements it.
type Inserter interface {
	Registry() *registry.Registry
	Insert(*sequence.Sequence, any) error
}

// LoadReport summarizes a Load.
type LoadReport struct {
	Inserted   int
	Duplicates int
}

// Load inserts every declared category into ins. Duplicate categories
// are counted and skipped; any other error aborts the load.
func (c *Config) Load(ins Inserter) (LoadReport, error) {
	var report LoadReport
	reg := ins.Registry()
	for i, cat := range c.Categories {
		if len(cat.Patterns) == 0 {
			return report, fmt.Errorf("category #%d has no patterns", i+1)
		}

		seq := sequence.New()
		names := make([]string, 0, len(cat.Patterns))
		for name := range cat.Patterns {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			ctx, err := reg.Lookup(name)
			if err != nil {
				return report, fmt.Errorf("category #%d: %w", i+1, err)
			}
			if err := seq.Insert(ctx, cat.Patterns[name]); err != nil {
				return report, fmt.Errorf("category #%d: %w", i+1, err)
			}
		}

		switch err := ins.Insert(seq, cat.Value); {
		case err == nil:
			report.Inserted++
		case errors.Is(err, chain.ErrDuplicatePath):
			report.Duplicates++
		default:
			return report, fmt.Errorf("category #%d: %w", i+1, err)
		}
	}
	return report, nil
}

// Locator locates a config file in a given directory.
type Locator interface {
	Locate(string) (string, error)
}

// LocatorFunc is a function that implements Locator.
type LocatorFunc func(string) (string, error)

// Locate calls the underlying function.
func (f LocatorFunc) Locate(dir string) (string, error) {
	return f(dir)
}

var configFilenames = []string{"config.json", "config.yaml", "config.yml"}

// DefaultConfigLocator searches for a config file with one of the known
// filenames (config.json, config.yaml, config.yml) in the given directory.
var DefaultConfigLocator = LocatorFunc(func(dir string) (string, error) {
	for _, basename := range configFilenames {
		file := filepath.Join(dir, basename)
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
	}
	return "", fmt.Errorf("config file not found in %s", dir)
})

const appName = "graphmaster"

// LocateRcfile attempts to find the config file in various locations
func LocateRcfile(locater Locator) (string, error) {
	// http://standards.freedesktop.org/basedir-spec/basedir-spec-latest.html
	//
	// Try in this order:
	//	  $XDG_CONFIG_HOME/graphmaster/config.{json,yaml,yml}
	//    $XDG_CONFIG_DIR/graphmaster/config.{json,yaml,yml} (where XDG_CONFIG_DIR is listed in $XDG_CONFIG_DIRS)
	//	  ~/.graphmaster/config.{json,yaml,yml}

	home, uErr := homedirFunc()

	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		if file, err := locater.Locate(filepath.Join(dir, appName)); err == nil {
			return file, nil
		}
	} else if uErr == nil { // silently ignore failure for homedir()
		if file, err := locater.Locate(filepath.Join(home, ".config", appName)); err == nil {
			return file, nil
		}
	}

	if dirs := os.Getenv("XDG_CONFIG_DIRS"); dirs != "" {
		for dir := range strings.SplitSeq(dirs, string(filepath.ListSeparator)) {
			if file, err := locater.Locate(filepath.Join(dir, appName)); err == nil {
				return file, nil
			}
		}
	}

	if uErr == nil {
		if file, err := locater.Locate(filepath.Join(home, "."+appName)); err == nil {
			return file, nil
		}
	}

	return "", errors.New("config file not found")
}
