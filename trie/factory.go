package trie

import "fmt"

// Creator decides whether it can start a node for the pattern suffix
// at depth, and builds an empty one.
type Creator struct {
	Name      string
	Creatable func(p Pattern, depth int) bool
	New       func(p Pattern, depth int) Node
}

// Factory picks the node type for a fresh trie position. Creators are
// consulted in registration order and the first creatable one wins.
type Factory struct {
	name     string
	creators []Creator
}

// Creator names used by the built-in factories.
const (
	CreatorEnd      = "end"
	CreatorWildcard = "wildcard"
	CreatorLookup   = "lookup"
	CreatorLiteral  = "literal"
)

// NewFactory creates a factory consulting creators in order.
func NewFactory(name string, creators ...Creator) *Factory {
	return &Factory{name: name, creators: creators}
}

// TrieFactory builds compact tries: literal runs split on divergence,
// wildcard branches, and terminals.
func TrieFactory() *Factory {
	return NewFactory("trie", endCreator(), wildcardCreator(), literalCreator())
}

// LookupFactory indexes wildcard-free suffixes by their whole remaining
// key, falling back to the trie nodes otherwise.
func LookupFactory() *Factory {
	return NewFactory("lookup", endCreator(), lookupCreator(), wildcardCreator(), literalCreator())
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return f.name
}

// Register appends a creator. Creators registered later only get to
// build positions no earlier creator accepted.
func (f *Factory) Register(c Creator) {
	f.creators = append(f.creators, c)
}

// Creators returns the registered creator names in order.
func (f *Factory) Creators() []string {
	names := make([]string, len(f.creators))
	for i, c := range f.creators {
		names[i] = c.Name
	}
	return names
}

// without returns a copy of f lacking the named creator.
func (f *Factory) without(name string) *Factory {
	nf := &Factory{name: f.name}
	for _, c := range f.creators {
		if c.Name != name {
			nf.creators = append(nf.creators, c)
		}
	}
	return nf
}

func (f *Factory) create(p Pattern, depth int) Node {
	for _, c := range f.creators {
		if c.Creatable(p, depth) {
			return c.New(p, depth)
		}
	}
	panic(fmt.Sprintf("trie: factory %q has no creator for %q at depth %d", f.name, p, depth))
}

func endCreator() Creator {
	return Creator{
		Name:      CreatorEnd,
		Creatable: func(p Pattern, depth int) bool { return depth >= p.Len() },
		New:       func(Pattern, int) Node { return &End{} },
	}
}

func wildcardCreator() Creator {
	return Creator{
		Name:      CreatorWildcard,
		Creatable: func(p Pattern, depth int) bool { return p.At(depth).Kind != KindLiteral },
		New: func(p Pattern, depth int) Node {
			return &Wildcard{kind: p.At(depth).Kind}
		},
	}
}

func lookupCreator() Creator {
	return Creator{
		Name:      CreatorLookup,
		Creatable: func(p Pattern, depth int) bool { return !p.HasWildcard(depth) },
		New: func(p Pattern, _ int) Node {
			return &Lookup{sep: p.sep, entries: make(map[string]*lookupEntry)}
		},
	}
}

func literalCreator() Creator {
	return Creator{
		Name:      CreatorLiteral,
		Creatable: func(Pattern, int) bool { return true },
		New:       func(Pattern, int) Node { return &Literal{} },
	}
}
