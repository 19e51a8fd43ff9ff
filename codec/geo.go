package codec

import (
	"strconv"
	"strings"
)

// GeoPoint is the decoded value of the geopoint type.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (p GeoPoint) valid() bool {
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

type geopointCodec struct{}

func (geopointCodec) Type() string          { return TypeGeopoint }
func (geopointCodec) Constraints() []string { return []string{Enum} }

func (geopointCodec) SupportsFormat(format string) bool {
	switch format {
	case DefaultFormat, "array", "object":
		return true
	}
	return false
}

func (geopointCodec) Decode(raw any, opt *Options) (any, bool) {
	if p, ok := raw.(GeoPoint); ok {
		return p, p.valid()
	}
	var (
		p  GeoPoint
		ok bool
	)
	switch opt.format() {
	case DefaultFormat:
		p, ok = pointFromText(raw)
	case "array":
		p, ok = pointFromArray(raw)
	case "object":
		p, ok = pointFromObject(raw)
	}
	if !ok || !p.valid() {
		return nil, false
	}
	return p, true
}

func pointFromText(raw any) (GeoPoint, bool) {
	s, ok := rawString(raw)
	if !ok {
		return GeoPoint{}, false
	}
	lon, lat, found := strings.Cut(s, ",")
	if !found {
		return GeoPoint{}, false
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err1 != nil || err2 != nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lon: x, Lat: y}, true
}

func pointFromArray(raw any) (GeoPoint, bool) {
	items, ok := raw.([]any)
	if !ok {
		s, isStr := rawString(raw)
		if !isStr || decodeJSON(s, &items) != nil {
			return GeoPoint{}, false
		}
	}
	if len(items) != 2 {
		return GeoPoint{}, false
	}
	x, ok1 := toFloat(items[0])
	y, ok2 := toFloat(items[1])
	return GeoPoint{Lon: x, Lat: y}, ok1 && ok2
}

func pointFromObject(raw any) (GeoPoint, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		s, isStr := rawString(raw)
		if !isStr || decodeJSON(s, &obj) != nil {
			return GeoPoint{}, false
		}
	}
	if len(obj) != 2 {
		return GeoPoint{}, false
	}
	x, ok1 := toFloat(obj["lon"])
	y, ok2 := toFloat(obj["lat"])
	return GeoPoint{Lon: x, Lat: y}, ok1 && ok2
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case bool, nil:
		return 0, false
	}
	if d, ok := toDecimal(v); ok {
		return d.InexactFloat64(), true
	}
	s, ok := rawString(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func (geopointCodec) Encode(v any, opt *Options) (string, bool) {
	p, ok := v.(GeoPoint)
	if !ok {
		return "", false
	}
	lon := strconv.FormatFloat(p.Lon, 'f', -1, 64)
	lat := strconv.FormatFloat(p.Lat, 'f', -1, 64)
	switch opt.format() {
	case "array":
		return "[" + lon + ", " + lat + "]", true
	case "object":
		return `{"lon": ` + lon + `, "lat": ` + lat + `}`, true
	}
	return lon + "," + lat, true
}

var geometryTypes = map[string]bool{
	"Point": true, "MultiPoint": true, "LineString": true, "MultiLineString": true,
	"Polygon": true, "MultiPolygon": true,
}

type geojsonCodec struct{}

func (geojsonCodec) Type() string          { return TypeGeojson }
func (geojsonCodec) Constraints() []string { return []string{Enum} }

func (geojsonCodec) SupportsFormat(format string) bool {
	return format == DefaultFormat || format == "topojson"
}

func (geojsonCodec) Decode(raw any, opt *Options) (any, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		s, isStr := rawString(raw)
		if !isStr || decodeJSON(s, &obj) != nil || obj == nil {
			return nil, false
		}
	}
	if opt.format() == "topojson" {
		if !validTopology(obj) {
			return nil, false
		}
		return obj, true
	}
	if !validGeoJSON(obj) {
		return nil, false
	}
	return obj, true
}

func (geojsonCodec) Encode(v any, _ *Options) (string, bool) {
	if _, ok := v.(map[string]any); !ok {
		return "", false
	}
	return encodeJSON(v)
}

func validTopology(obj map[string]any) bool {
	if obj["type"] != "Topology" {
		return false
	}
	_, hasObjects := obj["objects"].(map[string]any)
	_, hasArcs := obj["arcs"].([]any)
	return hasObjects && hasArcs
}

// validGeoJSON checks the structural shape of a GeoJSON object (RFC 7946).
// Coordinate values are not range-checked.
func validGeoJSON(obj map[string]any) bool {
	typ, _ := obj["type"].(string)
	switch {
	case geometryTypes[typ]:
		_, ok := obj["coordinates"].([]any)
		return ok
	case typ == "GeometryCollection":
		geoms, ok := obj["geometries"].([]any)
		if !ok {
			return false
		}
		for _, g := range geoms {
			m, ok := g.(map[string]any)
			if !ok || !validGeoJSON(m) {
				return false
			}
		}
		return true
	case typ == "Feature":
		g, present := obj["geometry"]
		if !present {
			return false
		}
		if g != nil {
			m, ok := g.(map[string]any)
			if !ok || !validGeoJSON(m) || m["type"] == "Feature" || m["type"] == "FeatureCollection" {
				return false
			}
		}
		if p, present := obj["properties"]; present && p != nil {
			if _, ok := p.(map[string]any); !ok {
				return false
			}
		}
		return true
	case typ == "FeatureCollection":
		feats, ok := obj["features"].([]any)
		if !ok {
			return false
		}
		for _, f := range feats {
			m, ok := f.(map[string]any)
			if !ok || m["type"] != "Feature" || !validGeoJSON(m) {
				return false
			}
		}
		return true
	}
	return false
}
