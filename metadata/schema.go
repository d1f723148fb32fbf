package metadata

import (
	"fmt"

	"github.com/arloliu/imd/errs"
)

// Path expressions and element names consulted in the experiment schema.
const (
	MarkersPath         = "/ExperimentSchema/AcquisitionMarkers"
	MarkerShortNameElem = "ShortName"
	MarkerMassElem      = "Mass"
	DualAnalytesPath    = "/ExperimentSchema/DualAnalytesSnapshot"
	DualMassElem        = "Mass"
	DualSlopeElem       = "DualSlope"
	DualInterceptElem   = "DualIntercept"
)

// Marker is one acquisition channel definition.
type Marker struct {
	ShortName string
	Mass      float64
}

// DualAnalyte is one calibration control point.
type DualAnalyte struct {
	Mass      float64
	Slope     float64
	Intercept float64
}

// Schema holds the parts of the experiment schema the reader needs.
type Schema struct {
	// Markers lists the acquisition channels in record order.
	Markers []Marker
	// DualAnalytes lists the calibration control points in document order.
	DualAnalytes []DualAnalyte
}

// MarkerNames returns the channel short names in record order.
func (s Schema) MarkerNames() []string {
	names := make([]string, len(s.Markers))
	for i, m := range s.Markers {
		names[i] = m.ShortName
	}

	return names
}

// ExtractSchema reads the channel list and calibration control points from a
// parsed document. Every marker needs a non-empty ShortName and a numeric
// Mass; every control point needs numeric Mass, DualSlope and DualIntercept.
func ExtractSchema(root *Node) (Schema, error) {
	var schema Schema

	for i, node := range root.Select(MarkersPath) {
		name, ok := node.ChildText(MarkerShortNameElem)
		if !ok || name == "" {
			return Schema{}, fmt.Errorf("%w: acquisition marker %d has no %s", errs.ErrMalformedInput, i, MarkerShortNameElem)
		}
		mass, err := node.ChildFloat(MarkerMassElem)
		if err != nil {
			return Schema{}, fmt.Errorf("acquisition marker %s: %w", name, err)
		}
		schema.Markers = append(schema.Markers, Marker{ShortName: name, Mass: mass})
	}

	for i, node := range root.Select(DualAnalytesPath) {
		var p DualAnalyte
		var err error
		if p.Mass, err = node.ChildFloat(DualMassElem); err != nil {
			return Schema{}, fmt.Errorf("dual analyte %d: %w", i, err)
		}
		if p.Slope, err = node.ChildFloat(DualSlopeElem); err != nil {
			return Schema{}, fmt.Errorf("dual analyte %d: %w", i, err)
		}
		if p.Intercept, err = node.ChildFloat(DualInterceptElem); err != nil {
			return Schema{}, fmt.Errorf("dual analyte %d: %w", i, err)
		}
		schema.DualAnalytes = append(schema.DualAnalytes, p)
	}

	return schema, nil
}

// ParseSchema unescapes, parses and extracts the schema from decoded metadata text.
func ParseSchema(text string) (Schema, error) {
	root, err := Parse(Unescape(text))
	if err != nil {
		return Schema{}, err
	}

	return ExtractSchema(root)
}
