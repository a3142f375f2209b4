package duplicates

import "github.com/parkrevil/firebat-sub000/pkg/ast"

// Mode selects how fingerprints treat names and values.
type Mode string

const (
	// ModeExact fingerprints identifiers and literals verbatim, so only
	// identical code collides (type-1 clones).
	ModeExact Mode = "exact"
	// ModeShape replaces identifiers with positional placeholders, so
	// renamed copies collide (type-2 clones).
	ModeShape Mode = "shape"
)

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeExact || m == ModeShape
}

// ItemKind classifies a duplicated subtree.
type ItemKind string

const (
	KindFunction  ItemKind = "function"
	KindMethod    ItemKind = "method"
	KindType      ItemKind = "type"
	KindInterface ItemKind = "interface"
	KindNode      ItemKind = "node"
)

// String returns the string representation.
func (k ItemKind) String() string {
	return string(k)
}

// anonymousHeader is used when a candidate has no name to show.
const anonymousHeader = "anonymous"

// Span is the source range of an item.
type Span struct {
	Start ast.Position `json:"start" toon:"start"`
	End   ast.Position `json:"end" toon:"end"`
}

// Item is one occurrence of duplicated code.
type Item struct {
	Kind     ItemKind `json:"kind" toon:"kind"`
	Header   string   `json:"header" toon:"header"`
	FilePath string   `json:"filePath" toon:"filePath"`
	Span     Span     `json:"span" toon:"span"`
	Size     int      `json:"size" toon:"size"`
}

// Group is a set of at least two items sharing a fingerprint.
type Group struct {
	Fingerprint string `json:"fingerprint" toon:"fingerprint"`
	Items       []Item `json:"items" toon:"items"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalGroups      int            `json:"totalGroups" toon:"totalGroups"`
	TotalItems       int            `json:"totalItems" toon:"totalItems"`
	DuplicatedNodes  int            `json:"duplicatedNodes" toon:"duplicatedNodes"`
	LargestGroupSize int            `json:"largestGroupSize" toon:"largestGroupSize"`
	FileOccurrences  map[string]int `json:"fileOccurrences" toon:"fileOccurrences"`
}

// NewSummary creates an initialized summary.
func NewSummary() Summary {
	return Summary{
		FileOccurrences: make(map[string]int),
	}
}

// Summarize computes aggregate statistics over groups.
func Summarize(groups []Group) Summary {
	s := NewSummary()
	s.TotalGroups = len(groups)
	for _, g := range groups {
		s.TotalItems += len(g.Items)
		s.LargestGroupSize = max(s.LargestGroupSize, len(g.Items))
		for _, it := range g.Items {
			s.DuplicatedNodes += it.Size
			s.FileOccurrences[it.FilePath]++
		}
	}
	return s
}

// Config holds duplicate detection configuration.
type Config struct {
	Mode    Mode
	MinSize int
	// NormalizeLiterals also replaces literal values in shape mode.
	NormalizeLiterals bool
}

// DefaultConfig returns the default detection settings.
func DefaultConfig() Config {
	return Config{
		Mode:    ModeExact,
		MinSize: 20,
	}
}
