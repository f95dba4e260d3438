package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/peco/graphmaster"
	"github.com/peco/graphmaster/chain"
	"github.com/peco/graphmaster/registry"
	"github.com/peco/graphmaster/sequence"
	"github.com/peco/graphmaster/unit"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string {
	return &s
}

var expectedConfig = Config{
	InputContext: "request",
	MaxSteps:     5000,
	Contexts: []ContextConfig{
		{Name: "request", Granularity: GranularityWord, Matcher: MatcherTrie},
		{Name: "code", Granularity: GranularityChar, OneOrMore: "?", ZeroOrMore: "%", Default: strptr("%")},
		{Name: "topic", Matcher: MatcherLookup, NoDefault: true, CaseSensitive: true},
	},
	Categories: []CategoryConfig{
		{Patterns: map[string]string{"request": "HELLO *"}, Value: "greeting"},
		{Patterns: map[string]string{"request": "_", "code": "A?"}, Value: "coded"},
	},
}

func TestReadRC(t *testing.T) {
	txt := `
{
	"InputContext": "request",
	"MaxSteps": 5000,
	"Contexts": [
		{"Name": "request", "Granularity": "word", "Matcher": "trie"},
		{"Name": "code", "Granularity": "char", "OneOrMore": "?", "ZeroOrMore": "%", "Default": "%"},
		{"Name": "topic", "Matcher": "lookup", "NoDefault": true, "CaseSensitive": true}
	],
	"Categories": [
		{"Patterns": {"request": "HELLO *"}, "Value": "greeting"},
		{"Patterns": {"request": "_", "code": "A?"}, "Value": "coded"}
	]
}
`
	var cfg Config
	require.NoError(t, cfg.Init(), "Config.Init should succeed")
	require.NoError(t, json.Unmarshal([]byte(txt), &cfg), "Unmarshalling config should succeed")
	require.Equal(t, expectedConfig, cfg, "configuration matches expected")
}

const yamlConfig = `
InputContext: request
MaxSteps: 5000
Contexts:
  - Name: request
    Granularity: word
    Matcher: trie
  - Name: code
    Granularity: char
    OneOrMore: "?"
    ZeroOrMore: "%"
    Default: "%"
  - Name: topic
    Matcher: lookup
    NoDefault: true
    CaseSensitive: true
Categories:
  - Patterns:
      request: HELLO *
    Value: greeting
  - Patterns:
      request: _
      code: A?
    Value: coded
`

func TestReadRCYAML(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Init(), "Config.Init should succeed")
	require.NoError(t, yaml.Unmarshal([]byte(yamlConfig), &cfg), "Unmarshalling YAML config should succeed")
	require.Equal(t, expectedConfig, cfg, "YAML configuration matches expected")
}

func TestReadFilenameYAML(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte(yamlConfig), 0o644))

	var cfg Config
	require.NoError(t, cfg.Init())
	require.NoError(t, cfg.ReadFilename(yamlFile))
	require.Equal(t, expectedConfig, cfg)
}

func TestReadFilenameValidates(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"unnamed.json":   `{"Contexts": [{"Granularity": "word"}]}`,
		"twice.json":     `{"Contexts": [{"Name": "input"}, {"Name": "input"}]}`,
		"markers.json":   `{"Contexts": [{"Name": "input", "OneOrMore": "*"}]}`,
		"charmark.json":  `{"Contexts": [{"Name": "input", "Granularity": "char", "ZeroOrMore": "**"}]}`,
		"undeclared.yml": "InputContext: request\n",
		"steps.yml":      "MaxSteps: -1\n",
		"broken.json":    `{"Contexts": [`,
	} {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(file, []byte(body), 0o644))

			var cfg Config
			require.NoError(t, cfg.Init())
			require.Error(t, cfg.ReadFilename(file))
		})
	}

	var cfg Config
	require.Error(t, cfg.ReadFilename(filepath.Join(dir, "missing.json")))
}

func TestEnumValues(t *testing.T) {
	t.Run("valid values via JSON", func(t *testing.T) {
		for _, tc := range []struct {
			input       string
			granularity Granularity
			matcher     Matcher
		}{
			{`{"Granularity":"word","Matcher":"trie"}`, GranularityWord, MatcherTrie},
			{`{"Granularity":"char","Matcher":"lookup"}`, GranularityChar, MatcherLookup},
			{`{}`, "", ""}, // absent key stays at zero value, which Behaviour treats as the default
		} {
			var cc ContextConfig
			require.NoError(t, json.Unmarshal([]byte(tc.input), &cc))
			require.Equal(t, tc.granularity, cc.Granularity)
			require.Equal(t, tc.matcher, cc.Matcher)
		}
	})

	t.Run("invalid value via YAML", func(t *testing.T) {
		var cc ContextConfig
		err := yaml.Unmarshal([]byte("Granularity: bogus"), &cc)
		require.Error(t, err)
		require.Contains(t, err.Error(), "bogus")

		err = yaml.Unmarshal([]byte("Matcher: bogus"), &cc)
		require.Error(t, err)
		require.Contains(t, err.Error(), "bogus")
	})

	t.Run("UnmarshalFlag", func(t *testing.T) {
		var m Matcher
		require.NoError(t, m.UnmarshalFlag("lookup"))
		require.Equal(t, MatcherLookup, m)
		require.NoError(t, m.UnmarshalFlag(""))
		require.Equal(t, MatcherTrie, m)
		require.Error(t, m.UnmarshalFlag("bogus"))
	})
}

func TestBehaviour(t *testing.T) {
	b, err := expectedConfig.Contexts[1].Behaviour()
	require.NoError(t, err)
	require.Equal(t, unit.Char, b.Syntax.Granularity)
	require.Equal(t, "?", b.Syntax.OneOrMore)
	require.Equal(t, "%", b.Syntax.ZeroOrMore)
	require.True(t, b.Syntax.FoldCase)
	require.True(t, b.HasDefault)
	require.Equal(t, "%", b.DefaultPattern)
	require.Equal(t, "trie", b.TrieFactory().Name())

	b, err = expectedConfig.Contexts[2].Behaviour()
	require.NoError(t, err)
	require.False(t, b.HasDefault)
	require.False(t, b.Syntax.FoldCase)
	require.Equal(t, "lookup", b.TrieFactory().Name())

	b, err = ContextConfig{Name: "x", ZeroOrMore: "#"}.Behaviour()
	require.NoError(t, err)
	require.Equal(t, "#", b.DefaultPattern, "the default follows the zero-or-more marker")
}

func TestRegistry(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Init())
	reg, err := cfg.Registry()
	require.NoError(t, err)

	var names []string
	for _, c := range reg.Contexts() {
		names = append(names, c.Name())
	}
	require.Equal(t, []string{"input", "that", "topic"}, names, "no declared contexts means the defaults")

	reg, err = expectedConfig.Registry()
	require.NoError(t, err)
	code, err := reg.Lookup("code")
	require.NoError(t, err)
	require.Equal(t, 1, code.Rank())
}

// inserter records sequences and reports every repeated value as a
// duplicate path.
type inserter struct {
	reg  *registry.Registry
	seen map[any]bool
	seqs []string
	err  error
}

func (i *inserter) Registry() *registry.Registry {
	return i.reg
}

func (i *inserter) Insert(seq *sequence.Sequence, value any) error {
	if i.err != nil {
		return i.err
	}
	if i.seen[value] {
		return fmt.Errorf("wrapped: %w", chain.ErrDuplicatePath)
	}
	i.seen[value] = true
	i.seqs = append(i.seqs, seq.String())
	return nil
}

func TestLoad(t *testing.T) {
	cfg := expectedConfig
	cfg.Categories = append(slices.Clone(cfg.Categories), CategoryConfig{
		Patterns: map[string]string{"request": "HELLO *"},
		Value:    "greeting",
	})
	reg, err := cfg.Registry()
	require.NoError(t, err)

	ins := &inserter{reg: reg, seen: map[any]bool{}}
	report, err := cfg.Load(ins)
	require.NoError(t, err)
	require.Equal(t, LoadReport{Inserted: 2, Duplicates: 1}, report)
	require.Equal(t, []string{"[request=HELLO *]", "[request=_, code=A?]"}, ins.seqs,
		"entries follow rank order, not map order")

	t.Run("unknown context", func(t *testing.T) {
		bad := Config{Categories: []CategoryConfig{{Patterns: map[string]string{"mood": "HAPPY"}}}}
		_, err := bad.Load(&inserter{reg: reg, seen: map[any]bool{}})
		require.ErrorIs(t, err, registry.ErrUnknownContext)
	})
	t.Run("empty category", func(t *testing.T) {
		bad := Config{Categories: []CategoryConfig{{Value: "nothing"}}}
		_, err := bad.Load(&inserter{reg: reg, seen: map[any]bool{}})
		require.Error(t, err)
	})
	t.Run("insert failure aborts", func(t *testing.T) {
		boom := errors.New("boom")
		report, err := cfg.Load(&inserter{reg: reg, seen: map[any]bool{}, err: boom})
		require.ErrorIs(t, err, boom)
		require.Equal(t, LoadReport{}, report)
	})
}

func TestLocateRcfile(t *testing.T) {
	dir := t.TempDir()

	homedirFunc = func() (string, error) {
		return dir, nil
	}

	expected := []string{
		filepath.Join(dir, "graphmaster"),
		filepath.Join(dir, "1", "graphmaster"),
		filepath.Join(dir, "2", "graphmaster"),
		filepath.Join(dir, "3", "graphmaster"),
		filepath.Join(dir, ".graphmaster"),
	}

	i := 0
	locater := LocatorFunc(func(dir string) (string, error) {
		t.Logf("looking for file in %s", dir)
		require.True(t, i <= len(expected)-1, "Got %d directories, only have %d", i+1, len(expected))
		require.Equal(t, expected[i], dir, "Expected %s, got %s", expected[i], dir)
		i++
		return "", errors.New("error: Not found")
	})

	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", strings.Join(
		[]string{
			filepath.Join(dir, "1"),
			filepath.Join(dir, "2"),
			filepath.Join(dir, "3"),
		},
		fmt.Sprintf("%c", filepath.ListSeparator),
	))

	_, err := LocateRcfile(locater)
	require.Error(t, err)
	expected[0] = filepath.Join(dir, ".config", "graphmaster")
	t.Setenv("XDG_CONFIG_HOME", "")
	i = 0
	_, err = LocateRcfile(locater)
	require.Error(t, err)
	require.Equal(t, len(expected), i)
}

func TestLocateRcfileYAML(t *testing.T) {
	dir := t.TempDir()

	appDir := filepath.Join(dir, ".graphmaster")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte("{}"), 0o644))

	homedirFunc = func() (string, error) {
		return dir, nil
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_DIRS", "")

	file, err := LocateRcfile(DefaultConfigLocator)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(appDir, "config.yaml"), file)
}

func TestLoadIntoClassifier(t *testing.T) {
	cfg := expectedConfig
	reg, err := cfg.Registry()
	require.NoError(t, err)

	c := graphmaster.New(reg, graphmaster.WithMaxSteps(cfg.MaxSteps))
	report, err := cfg.Load(c)
	require.NoError(t, err)
	require.Equal(t, LoadReport{Inserted: 2}, report)

	report, err = cfg.Load(c)
	require.NoError(t, err)
	require.Equal(t, LoadReport{Duplicates: 2}, report, "loading twice only finds duplicates")
	require.Equal(t, 2, c.Len())

	res, err := c.Match(context.Background(), graphmaster.ValueMap{"request": "hello there"})
	require.NoError(t, err)
	require.Equal(t, "greeting", res.Value())

	res, err = c.Match(context.Background(), graphmaster.ValueMap{"request": "anything", "code": "ab"})
	require.NoError(t, err)
	require.Equal(t, "coded", res.Value())
	s, err := res.Wildcard("code", 1)
	require.NoError(t, err)
	require.Equal(t, "b", s)
}
