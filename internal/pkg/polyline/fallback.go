package polyline

import (
	"errors"

	"github.com/kulturapass/kulturapass/internal/core/domain"
)

var (
	// ErrTruncated is returned when a value's continuation bit points past
	// the end of the input.
	ErrTruncated = errors.New("polyline: truncated input")
	// ErrOverflow is returned when a value does not fit in 64 bits.
	ErrOverflow = errors.New("polyline: value overflow")
)

// maxShift is the last 5-bit group offset that still fits a 64-bit accumulator.
const maxShift = 60

// DecodeFallback decodes encoded without the library. It follows the reference
// algorithm: each value starts at 1 and consumes (char - 64) groups until one
// falls below 0x1f. For valid input the result is identical to the library path.
func DecodeFallback(encoded string) ([]domain.RoutePoint, error) {
	points := []domain.RoutePoint{}
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		dLat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		dLng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next
		lat += dLat
		lng += dLng

		points = append(points, domain.RoutePoint{
			Lat: float64(lat) / precision,
			Lng: float64(lng) / precision,
		})
	}

	return points, nil
}

// decodeValue reads one signed value starting at index and returns it with
// the index of the next unread byte.
func decodeValue(encoded string, index int) (int, int, error) {
	result, shift := 1, 0
	for {
		if index >= len(encoded) {
			return 0, index, ErrTruncated
		}
		if shift > maxShift {
			return 0, index, ErrOverflow
		}
		b := int(encoded[index]) - 63 - 1
		index++
		result += b << shift
		shift += 5
		if b < 0x1f {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}
