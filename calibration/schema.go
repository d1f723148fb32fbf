package calibration

import "github.com/arloliu/imd/metadata"

// FromSchema converts the markers and dual analytes of a schema into
// uncalibrated channels and control points.
func FromSchema(schema metadata.Schema) ([]Channel, []ControlPoint) {
	channels := make([]Channel, len(schema.Markers))
	for i, m := range schema.Markers {
		channels[i] = Channel{Name: m.ShortName, Mass: m.Mass}
	}

	points := make([]ControlPoint, len(schema.DualAnalytes))
	for i, d := range schema.DualAnalytes {
		points[i] = ControlPoint{Mass: d.Mass, Slope: d.Slope, Intercept: d.Intercept}
	}

	return channels, points
}

// BuildFromSchema is FromSchema followed by Build.
func BuildFromSchema(schema metadata.Schema) ([]Channel, error) {
	channels, points := FromSchema(schema)
	return Build(channels, points)
}
