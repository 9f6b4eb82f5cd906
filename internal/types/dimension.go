// Package types provides type definitions for structured data used throughout the itype-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Dimension identifies one axis of the innovation trait space.
type Dimension string

// The fixed trait dimensions.
const (
	DimThinking   Dimension = "thinking"
	DimExecution  Dimension = "execution"
	DimRisk       Dimension = "risk"
	DimMotivation Dimension = "motivation"
	DimTeam       Dimension = "team"
	DimCommercial Dimension = "commercial"
)

// Dimensions is the canonical ordered set of trait dimensions. The order
// drives radar rendering and results-log column layout.
var Dimensions = []Dimension{
	DimThinking,
	DimExecution,
	DimRisk,
	DimMotivation,
	DimTeam,
	DimCommercial,
}

// ParseDimension returns the Dimension named by name, or false if name is not
// one of the fixed set.
func ParseDimension(name string) (Dimension, bool) {
	d := Dimension(name)
	if d.Valid() {
		return d, true
	}
	return "", false
}

// Valid reports whether d is one of the fixed trait dimensions.
func (d Dimension) Valid() bool {
	switch d {
	case DimThinking, DimExecution, DimRisk, DimMotivation, DimTeam, DimCommercial:
		return true
	}
	return false
}
