// Package types provides type definitions for structured data used throughout the itype-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Signature is an archetype's reference position in dimension space.
type Signature map[Dimension]float64

// Archetype represents one named innovator profile: a reference signature
// vector plus descriptive payload the engine carries but never inspects.
type Archetype struct {
	Name            string    `json:"name" yaml:"name"`
	Signature       Signature `json:"signature" yaml:"signature"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	Strengths       []string  `json:"strengths,omitempty" yaml:"strengths,omitempty"`
	Risks           []string  `json:"risks,omitempty" yaml:"risks,omitempty"`
	Pathways        []string  `json:"pathways,omitempty" yaml:"pathways,omitempty"`
	BusinessModels  []string  `json:"business_models,omitempty" yaml:"business_models,omitempty"`
	FundingStrategy []string  `json:"funding_strategy,omitempty" yaml:"funding_strategy,omitempty"`
}

// Valid reports whether the archetype can participate in matching: a
// non-empty name and at least one signature dimension.
func (a *Archetype) Valid() bool {
	return a.Name != "" && len(a.Signature) > 0
}

// Catalog is an ordered, read-only collection of archetypes. Entry order is
// the document order of the source file and is the tie-break order for
// matching and stability ranking.
type Catalog struct {
	Archetypes []Archetype `json:"archetypes" yaml:"archetypes"`
}

// Len returns the number of catalog entries, valid or not.
func (c *Catalog) Len() int {
	return len(c.Archetypes)
}

// ValidCount returns the number of entries eligible for matching.
func (c *Catalog) ValidCount() int {
	n := 0
	for i := range c.Archetypes {
		if c.Archetypes[i].Valid() {
			n++
		}
	}
	return n
}

// Get returns the archetype with the given name.
func (c *Catalog) Get(name string) (*Archetype, bool) {
	for i := range c.Archetypes {
		if c.Archetypes[i].Name == name {
			return &c.Archetypes[i], true
		}
	}
	return nil, false
}

// Names returns archetype names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Archetypes))
	for i := range c.Archetypes {
		names = append(names, c.Archetypes[i].Name)
	}
	return names
}
