package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// decodeNumericMap parses a flat JSON object of stringified integer IDs to
// numeric values, e.g. {"1": 24.5, "2": 60}.
//
// Keys that do not parse as integers and values that are not JSON numbers
// are ErrInvalidPayloadShape. An empty object decodes to an empty map.
func decodeNumericMap(payload []byte) (map[int]float64, error) {
	raw, err := decodeFlatObject(payload)
	if err != nil {
		return nil, err
	}

	result := make(map[int]float64, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q is not an integer id", ErrInvalidPayloadShape, key)
		}
		num, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: value for id %d is not a number", ErrInvalidPayloadShape, id)
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: value for id %d: %v", ErrInvalidPayloadShape, id, err)
		}
		result[id] = f
	}
	return result, nil
}

// decodeBoolMap parses a flat JSON object of stringified integer IDs to
// boolean values, e.g. {"1": true, "2": false}. Controller firmware also
// publishes states as numbers, so 0 and non-zero coerce to false and true.
func decodeBoolMap(payload []byte) (map[int]bool, error) {
	raw, err := decodeFlatObject(payload)
	if err != nil {
		return nil, err
	}

	result := make(map[int]bool, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q is not an integer id", ErrInvalidPayloadShape, key)
		}
		switch v := value.(type) {
		case bool:
			result[id] = v
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w: value for id %d: %v", ErrInvalidPayloadShape, id, err)
			}
			result[id] = f != 0
		default:
			return nil, fmt.Errorf("%w: value for id %d is not a boolean", ErrInvalidPayloadShape, id)
		}
	}
	return result, nil
}

// decodeFlatObject parses the payload as a single-level JSON object.
// Numbers stay json.Number so integer IDs and values survive intact.
func decodeFlatObject(payload []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayloadShape, err)
	}
	// Trailing garbage after the object is also malformed.
	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidPayloadShape)
	}
	return raw, nil
}
