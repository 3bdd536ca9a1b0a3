package bounds

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AllocatorSpec names an allocation function and the zero-based argument
// positions that together give the allocated element count. Two positions
// mean the product form, as with calloc.
type AllocatorSpec struct {
	Name     string `yaml:"name"`
	SizeArgs []int  `yaml:"size_args"`
}

// Config tunes an inference session. The zero value is not usable; start
// from Default and overlay a file with Load.
type Config struct {
	// MaxIterations caps the flow analysis worklist rounds.
	MaxIterations int `yaml:"max_iterations"`

	// KindOrder ranks bound kinds when several candidates survive a round.
	// Earlier entries win.
	KindOrder []string `yaml:"kind_order"`

	// NameHeuristics enables prefix and length-word matching on variable
	// names during the fallback round.
	NameHeuristics bool `yaml:"name_heuristics"`

	// NeighbourHeuristics enables adopting the bound of an adjacent
	// parameter during the fallback round.
	NeighbourHeuristics bool `yaml:"neighbour_heuristics"`

	// AllocatorBounds enables seeding bounds from allocator call sizes.
	AllocatorBounds bool `yaml:"allocator_bounds"`

	// LengthWords are the name fragments that mark an integer as a likely
	// length, compared case-insensitively.
	LengthWords []string `yaml:"length_words"`

	// Allocators lists the allocation functions understood by the seeding
	// pass, on top of which callers may add project wrappers.
	Allocators []AllocatorSpec `yaml:"allocators"`

	// ImpossibleAllocators are functions whose result can never carry a
	// usable bound, such as string duplicators whose length is internal.
	ImpossibleAllocators []string `yaml:"impossible_allocators"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		MaxIterations:       1024,
		KindOrder:           []string{"count", "count_plus_one", "byte_count", "range"},
		NameHeuristics:      true,
		NeighbourHeuristics: true,
		AllocatorBounds:     true,
		LengthWords:         []string{"len", "length", "count", "cnt", "size", "num", "sz"},
		Allocators: []AllocatorSpec{
			{Name: "malloc", SizeArgs: []int{0}},
			{Name: "calloc", SizeArgs: []int{0, 1}},
			{Name: "realloc", SizeArgs: []int{1}},
			{Name: "kmalloc", SizeArgs: []int{0}},
			{Name: "kzalloc", SizeArgs: []int{0}},
		},
		ImpossibleAllocators: []string{"strdup", "strndup", "__strdup"},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadFrom(f)
}

// LoadFrom decodes YAML from r over the defaults. Unknown fields are
// rejected so typos surface instead of silently keeping defaults.
func LoadFrom(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	if _, err := c.kindOrder(); err != nil {
		return err
	}
	for _, a := range c.Allocators {
		if a.Name == "" {
			return fmt.Errorf("allocator with empty name")
		}
		if len(a.SizeArgs) == 0 || len(a.SizeArgs) > 2 {
			return fmt.Errorf("allocator %s: want one or two size_args, got %d", a.Name, len(a.SizeArgs))
		}
	}
	return nil
}

// kindOrder resolves KindOrder into Kind values.
func (c *Config) kindOrder() ([]Kind, error) {
	names := map[string]Kind{
		"count":          KindCount,
		"count_plus_one": KindCountPlusOne,
		"byte_count":     KindByteCount,
		"range":          KindRange,
	}
	out := make([]Kind, 0, len(c.KindOrder))
	seen := make(map[Kind]bool)
	for _, s := range c.KindOrder {
		k, ok := names[s]
		if !ok {
			return nil, fmt.Errorf("unknown bound kind %q in kind_order", s)
		}
		if seen[k] {
			return nil, fmt.Errorf("duplicate bound kind %q in kind_order", s)
		}
		seen[k] = true
		out = append(out, k)
	}
	for _, k := range kindPreference {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out, nil
}

// AllocatorByName returns the allocator spec for name, if configured.
func (c *Config) AllocatorByName(name string) (AllocatorSpec, bool) {
	for _, a := range c.Allocators {
		if a.Name == name {
			return a, true
		}
	}
	return AllocatorSpec{}, false
}

// IsImpossibleAllocator reports whether name is in the never-bounded list.
func (c *Config) IsImpossibleAllocator(name string) bool {
	for _, n := range c.ImpossibleAllocators {
		if n == name {
			return true
		}
	}
	return false
}

// IsLengthWord reports whether name contains one of the configured length
// fragments, ignoring case.
func (c *Config) IsLengthWord(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range c.LengthWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
