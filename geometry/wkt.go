package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// parseExteriorRing extracts the first ring of coordinates out of a WKT
// POLYGON or MULTIPOLYGON string. It only needs to handle the shapes godal
// ever hands back here (simple polygons built from raster/window envelopes
// or their boolean combinations), not arbitrary WKT.
func parseExteriorRing(wkt string) ([]orb.Point, error) {
	open := strings.Index(wkt, "((")
	if open < 0 {
		return nil, fmt.Errorf("geometry: no ring found in %q", wkt)
	}
	rest := wkt[open+2:]
	close := strings.IndexAny(rest, ")")
	if close < 0 {
		return nil, fmt.Errorf("geometry: malformed ring in %q", wkt)
	}
	ring := rest[:close]
	parts := strings.Split(ring, ",")
	pts := make([]orb.Point, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimLeft(p, "("))
		if p == "" {
			continue
		}
		fields := strings.Fields(p)
		if len(fields) < 2 {
			continue
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("geometry: parse x in %q: %w", p, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("geometry: parse y in %q: %w", p, err)
		}
		pts = append(pts, orb.Point{x, y})
	}
	return pts, nil
}
