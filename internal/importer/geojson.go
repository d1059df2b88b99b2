package importer

import (
	"errors"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DecodeGeoJSON converts the Point features of a FeatureCollection into
// candidate records. Non-point geometries are ignored; a feature's name
// or description property carries over as notes.
func DecodeGeoJSON(data []byte) ([]Record, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("geojson has no features")
	}

	var out []Record
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		rec := Record{
			"lat": strconv.FormatFloat(pt.Lat(), 'f', -1, 64),
			"lng": strconv.FormatFloat(pt.Lon(), 'f', -1, 64),
		}
		if notes := stringProp(f.Properties, "name", "description"); notes != "" {
			rec["notes"] = notes
		}
		out = append(out, rec)
	}
	return out, nil
}

func stringProp(props geojson.Properties, keys ...string) string {
	for _, k := range keys {
		if v, ok := props[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
