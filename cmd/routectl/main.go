// routectl orders venues and encodes or decodes polylines from the command
// line, using the same packages as the route API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kulturapass/kulturapass/internal/core/domain"
	"github.com/kulturapass/kulturapass/internal/core/usecases"
	"github.com/kulturapass/kulturapass/internal/pkg/geospatial"
	"github.com/kulturapass/kulturapass/internal/pkg/logging"
	"github.com/kulturapass/kulturapass/internal/pkg/polyline"
)

const usage = `Usage:
  routectl decode [--fallback] <polyline>
  routectl encode lat,lng [lat,lng ...]
  routectl optimize [--geojson] lat,lng lat,lng ...
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	// Decoder warnings go to stderr so stdout stays machine-readable.
	logger := logging.New(stderr, "warn", "text")
	ctx := logging.WithLogger(context.Background(), logger)

	switch args[0] {
	case "decode":
		return runDecode(ctx, args[1:], stdout, stderr)
	case "encode":
		return runEncode(args[1:], stdout, stderr)
	case "optimize":
		return runOptimize(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return errUsage
	}
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("routectl "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runDecode(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("decode", stderr)
	fallback := fs.Bool("fallback", false, "use only the built-in fallback decoder")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	encoded := fs.Arg(0)

	if *fallback {
		points, err := polyline.DecodeFallback(encoded)
		if err != nil {
			return fmt.Errorf("fallback decode: %w", err)
		}
		fmt.Fprintln(stderr, "source:", polyline.SourceFallback)
		return writeJSON(stdout, points)
	}

	res := polyline.NewDecoder(logging.FromContext(ctx)).Decode(ctx, encoded)
	fmt.Fprintln(stderr, "source:", res.Source)
	if !res.OK() {
		return fmt.Errorf("polyline could not be decoded: %w", res.FallbackErr)
	}
	return writeJSON(stdout, res.Points)
}

func runEncode(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("encode", stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	points, err := parsePoints(fs.Args())
	if err != nil {
		return err
	}
	if len(points) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	fmt.Fprintln(stdout, polyline.Encode(points))
	return nil
}

func runOptimize(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("optimize", stderr)
	asGeoJSON := fs.Bool("geojson", false, "print a GeoJSON FeatureCollection")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	points, err := parsePoints(fs.Args())
	if err != nil {
		return err
	}

	svc := usecases.NewRouteService(nil, nil, nil, usecases.RouteServiceConfig{})
	plan, err := svc.Optimize(ctx, points)
	if err != nil {
		return err
	}

	if *asGeoJSON {
		data, err := geospatial.PlanFeatureCollection(plan).MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	return writeJSON(stdout, plan)
}

// parsePoints reads "lat,lng" arguments.
func parsePoints(args []string) ([]domain.RoutePoint, error) {
	points := make([]domain.RoutePoint, 0, len(args))
	for _, arg := range args {
		latStr, lngStr, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("point %q: want lat,lng", arg)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: latitude: %w", arg, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: longitude: %w", arg, err)
		}
		points = append(points, domain.RoutePoint{Lat: lat, Lng: lng})
	}
	return points, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
