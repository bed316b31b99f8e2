package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// ParseFootprint parses a WKT polygon. A multipolygon holding exactly one
// polygon is accepted as that polygon.
func ParseFootprint(value string) (orb.Polygon, error) {
	geom, err := wkt.Unmarshal(singleLineWKT(value))
	if err != nil {
		return nil, fmt.Errorf("invalid footprint WKT: %w", err)
	}
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return nil, fmt.Errorf("invalid footprint WKT: empty polygon")
		}
		return g, nil
	case orb.MultiPolygon:
		if len(g) == 1 && len(g[0]) > 0 && len(g[0][0]) > 0 {
			return g[0], nil
		}
	}
	return nil, fmt.Errorf("invalid footprint WKT: expected a polygon, got %s", geom.GeoJSONType())
}

// singleLineWKT collapses every run of whitespace, line breaks included,
// into a single space
func singleLineWKT(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// PosList renders the exterior ring of a polygon as a GML posList: latitude
// first, every coordinate pair followed by a space. It also returns the
// number of coordinate pairs.
func PosList(polygon orb.Polygon) (string, int) {
	exterior := polygon[0]
	var sb strings.Builder
	for _, point := range exterior {
		sb.WriteString(formatCoordinate(point.Lat()))
		sb.WriteString(" ")
		sb.WriteString(formatCoordinate(point.Lon()))
		sb.WriteString(" ")
	}
	return sb.String(), len(exterior)
}

// ParsePosList reads a GML posList back into a single-ring polygon
func ParsePosList(posList string) (orb.Polygon, error) {
	fields := strings.Fields(posList)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("posList has an odd number of values")
	}
	ring := make(orb.Ring, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		lat, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		lon, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, err
		}
		ring = append(ring, orb.Point{lon, lat})
	}
	return orb.Polygon{ring}, nil
}

// formatCoordinate always keeps a decimal point so whole degrees read as
// "45.0" rather than "45"
func formatCoordinate(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Footprint returns the record as a GeoJSON feature with its footprint as
// geometry and the remaining fields as properties. Vendor-specific pairs are
// kept in order under "vendorSpecific".
func Footprint(record Record) (*geojson.Feature, error) {
	if record.WKT == "" {
		return nil, fmt.Errorf("record has no footprint")
	}
	polygon, err := ParseFootprint(record.WKT)
	if err != nil {
		return nil, err
	}

	feature := geojson.NewFeature(polygon)
	if record.Identifier != "" {
		feature.ID = record.Identifier
	}
	props := map[string]interface{}{}
	if record.Title != "" {
		props["title"] = record.Title
	}
	if record.ProductType != "" {
		props["productType"] = record.ProductType
	}
	if record.HasTimeRange() {
		props["startDate"] = record.StartDate
		props["endDate"] = record.EndDate
	}
	if len(record.Categories) > 0 {
		props["category"] = record.CategoryExpression()
	}
	if len(record.VendorSpecific) > 0 {
		props["vendorSpecific"] = append([]KeyValue{}, record.VendorSpecific...)
	}
	feature.Properties = props
	feature.BBox = geojson.NewBBox(polygon.Bound())
	return feature, nil
}
