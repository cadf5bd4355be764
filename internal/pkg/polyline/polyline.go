// Package polyline decodes and encodes Google encoded polylines at 1e5
// precision.
//
// Decoding goes through github.com/twpayne/go-polyline first. When the library
// rejects the input, a self-contained decoder is tried before giving up, so a
// slightly non-conforming string from a routing backend still yields a route.
package polyline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	gopolyline "github.com/twpayne/go-polyline"

	"github.com/kulturapass/kulturapass/internal/core/domain"
)

const precision = 1e5

// Source identifies which decoder produced a Result.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
	// SourceNone means both decoders failed and Points is empty.
	SourceNone Source = "none"
)

// Result is the outcome of a decode, including why a decoder was skipped.
type Result struct {
	Points      []domain.RoutePoint
	Source      Source
	PrimaryErr  error
	FallbackErr error
}

// OK reports whether any decoder succeeded. An empty Points with OK false
// means "no route available", not an empty input.
func (r Result) OK() bool {
	return r.Source != SourceNone
}

// Decoder decodes polylines, reporting decoder failures to Logger.
// A nil Logger disables logging.
type Decoder struct {
	Logger *slog.Logger
}

// NewDecoder creates a Decoder that logs to logger.
func NewDecoder(logger *slog.Logger) *Decoder {
	return &Decoder{Logger: logger}
}

// Decode never fails: if both decoders reject encoded it returns an empty,
// non-nil Points slice with Source set to SourceNone.
func (d *Decoder) Decode(ctx context.Context, encoded string) Result {
	points, err := decodePrimary(encoded)
	if err == nil {
		return Result{Points: points, Source: SourcePrimary}
	}
	res := Result{PrimaryErr: err}
	d.log(ctx, slog.LevelWarn, "polyline library decode failed, using fallback", err, len(encoded))

	points, err = DecodeFallback(encoded)
	if err != nil {
		d.log(ctx, slog.LevelError, "polyline fallback decode failed", err, len(encoded))
		res.Points = []domain.RoutePoint{}
		res.Source = SourceNone
		res.FallbackErr = err
		return res
	}

	res.Points = points
	res.Source = SourceFallback
	return res
}

// Decode decodes encoded without logging. See Decoder.Decode.
func Decode(encoded string) []domain.RoutePoint {
	return (&Decoder{}).Decode(context.Background(), encoded).Points
}

// Encode encodes points with the default library codec.
func Encode(points []domain.RoutePoint) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(gopolyline.EncodeCoords(coords))
}

func (d *Decoder) log(ctx context.Context, level slog.Level, msg string, err error, length int) {
	if d == nil || d.Logger == nil {
		return
	}
	d.Logger.Log(ctx, level, msg, "error", err, "length", length)
}

func decodePrimary(encoded string) (points []domain.RoutePoint, err error) {
	if encoded == "" {
		return []domain.RoutePoint{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			points, err = nil, fmt.Errorf("polyline: library panic: %v", r)
		}
	}()

	coords, rest, err := gopolyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("polyline: %d trailing bytes", len(rest))
	}

	points = make([]domain.RoutePoint, len(coords))
	for i, c := range coords {
		if len(c) != 2 {
			return nil, fmt.Errorf("polyline: coordinate %d has %d dimensions", i, len(c))
		}
		points[i] = domain.RoutePoint{Lat: snap(c[0]), Lng: snap(c[1])}
	}
	return points, nil
}

// snap removes the float drift the library accumulates across deltas so the
// value equals the integer accumulator divided by the precision. The int64
// round trip turns a drifted -0 into +0.
func snap(v float64) float64 {
	return float64(int64(math.Round(v*precision))) / precision
}
