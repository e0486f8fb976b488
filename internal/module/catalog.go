package module

import (
	"fmt"
	"slices"
)

// Catalog is the universe of modules known to one analysis run. Descriptors
// live in an arena addressed by ID; requires edges are ID sets, so a cyclic
// catalog can be represented and is left for the graph resolver to tolerate.
// A Catalog is read-only after Load.
type Catalog struct {
	mods      []Descriptor
	byID      map[ID]int
	exporters map[string][]ID
	declarers map[string][]ID
}

// Load builds a catalog from the platform's modules and the modules found
// under analysis. The same ID declared twice, within or across the two
// sets, fails with *DuplicateModuleError.
func Load(system, analyzed []Descriptor) (*Catalog, error) {
	c := &Catalog{
		mods:      make([]Descriptor, 0, len(system)+len(analyzed)),
		byID:      make(map[ID]int, len(system)+len(analyzed)),
		exporters: make(map[string][]ID),
		declarers: make(map[string][]ID),
	}
	add := func(d Descriptor, origin Origin) error {
		if err := d.Validate(); err != nil {
			return err
		}
		if i, ok := c.byID[d.Name]; ok {
			return &DuplicateModuleError{ID: d.Name, First: c.mods[i].Origin, Second: origin}
		}
		d.Origin = origin
		d.Requires = dedupe(d.Requires)
		d.Exports = dedupe(d.Exports)
		d.Packages = dedupe(append(slices.Clone(d.Packages), d.Exports...))
		c.byID[d.Name] = len(c.mods)
		c.mods = append(c.mods, d)
		return nil
	}
	for _, d := range system {
		if err := add(d, System); err != nil {
			return nil, fmt.Errorf("loading system modules: %w", err)
		}
	}
	for _, d := range analyzed {
		if err := add(d, Analyzed); err != nil {
			return nil, fmt.Errorf("loading analyzed modules: %w", err)
		}
	}

	for i := range c.mods {
		d := &c.mods[i]
		for _, pkg := range d.Packages {
			c.declarers[pkg] = append(c.declarers[pkg], d.Name)
			if d.Exported(pkg) {
				c.exporters[pkg] = append(c.exporters[pkg], d.Name)
			}
		}
	}
	for pkg := range c.declarers {
		SortIDs(c.declarers[pkg])
	}
	for pkg := range c.exporters {
		SortIDs(c.exporters[pkg])
	}
	return c, nil
}

// Len returns the number of cataloged modules.
func (c *Catalog) Len() int { return len(c.mods) }

// Index returns the arena slot of id.
func (c *Catalog) Index(id ID) (int, bool) {
	i, ok := c.byID[id]
	return i, ok
}

// At returns the descriptor in arena slot i.
func (c *Catalog) At(i int) *Descriptor { return &c.mods[i] }

// Lookup returns the descriptor for id.
func (c *Catalog) Lookup(id ID) (*Descriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.mods[i], true
}

// Contains reports whether id is cataloged.
func (c *Catalog) Contains(id ID) bool {
	_, ok := c.byID[id]
	return ok
}

// IDs returns every cataloged module, sorted.
func (c *Catalog) IDs() []ID {
	ids := make([]ID, 0, len(c.mods))
	for i := range c.mods {
		ids = append(ids, c.mods[i].Name)
	}
	return SortIDs(ids)
}

// RequiresOf returns the modules id requires.
func (c *Catalog) RequiresOf(id ID) ([]ID, error) {
	d, ok := c.Lookup(id)
	if !ok {
		return nil, &UnknownModuleError{ID: id}
	}
	return slices.Clone(d.Requires), nil
}

// ResolveKeyword expands a symbolic root-set value. ALL-SYSTEM yields every
// platform module; ALL-DEFAULT yields the platform modules flagged as
// default roots.
func (c *Catalog) ResolveKeyword(k Keyword) []ID {
	var ids []ID
	for i := range c.mods {
		d := &c.mods[i]
		if d.Origin != System {
			continue
		}
		switch k {
		case AllSystem:
			ids = append(ids, d.Name)
		case AllDefault:
			if d.DefaultRoot {
				ids = append(ids, d.Name)
			}
		default:
			panic(fmt.Sprintf("module: unhandled keyword %d", k))
		}
	}
	return SortIDs(ids)
}

// Packages returns the packages id declares.
func (c *Catalog) Packages(id ID) []string {
	d, ok := c.Lookup(id)
	if !ok {
		return nil
	}
	return d.Packages
}

// ExportersOf returns the modules exporting pkg, sorted.
func (c *Catalog) ExportersOf(pkg string) []ID {
	return slices.Clone(c.exporters[pkg])
}

// DeclarersOf returns the modules declaring pkg, exported or not, sorted.
func (c *Catalog) DeclarersOf(pkg string) []ID {
	return slices.Clone(c.declarers[pkg])
}

func dedupe[T ~string](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
