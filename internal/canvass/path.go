package canvass

import "encoding/json"

// Drawn paths are stored on the route record as a JSON array of {lat,lng}
// objects, matching what map clients hand us. An empty path serializes to
// "[]" rather than null so round-trips stay symmetric.

// EncodePath serializes a coordinate sequence for storage.
func EncodePath(path []LatLng) (string, error) {
	if path == nil {
		path = []LatLng{}
	}
	b, err := json.Marshal(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodePath parses a stored polyline. An empty string is an empty path.
func DecodePath(s string) ([]LatLng, error) {
	if s == "" {
		return nil, nil
	}
	var path []LatLng
	if err := json.Unmarshal([]byte(s), &path); err != nil {
		return nil, err
	}
	return path, nil
}
