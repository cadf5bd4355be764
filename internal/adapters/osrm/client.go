package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/kulturapass/kulturapass/internal/core/domain"
	"github.com/kulturapass/kulturapass/internal/core/ports"
)

// ErrNoRoute is returned when the backend answers but finds no route.
var ErrNoRoute = errors.New("osrm: no route found")

// Client implements ports.RoutingBackend against an OSRM HTTP server.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// New creates a client for the OSRM server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithClient(baseURL, timeout, &fasthttp.Client{
		Name:                "kulturapass-route",
		MaxConnsPerHost:     32,
		MaxIdleConnDuration: 30 * time.Second,
	})
}

// NewWithClient creates a client using hc for transport.
func NewWithClient(baseURL string, timeout time.Duration, hc *fasthttp.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    hc,
	}
}

// OSRM response format
type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string  `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Route asks OSRM for a road route visiting waypoints in order. The geometry
// is returned still encoded.
func (c *Client) Route(ctx context.Context, profile string, waypoints []domain.RoutePoint) (*ports.RoadRoute, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("osrm: need at least 2 waypoints, got %d", len(waypoints))
	}

	coords := make([]string, len(waypoints))
	for i, p := range waypoints {
		coords[i] = fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)
	}
	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=polyline",
		c.baseURL, profile, strings.Join(coords, ";"))

	status, body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var parsed routeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Proxies in front of OSRM answer errors with HTML bodies.
		if status != fasthttp.StatusOK {
			return nil, fmt.Errorf("osrm: status %d: %w", status, err)
		}
		return nil, fmt.Errorf("osrm: decode response: %w", err)
	}
	if status != fasthttp.StatusOK || parsed.Code != "Ok" {
		if parsed.Code == "NoRoute" {
			return nil, ErrNoRoute
		}
		return nil, fmt.Errorf("osrm: status %d code %q: %s", status, parsed.Code, parsed.Message)
	}
	if len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}

	r := parsed.Routes[0]
	return &ports.RoadRoute{
		Geometry:    r.Geometry,
		DistanceM:   r.Distance,
		DurationSec: r.Duration,
	}, nil
}

// Ping checks that the backend answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.get(ctx, c.baseURL+"/")
	return err
}

func (c *Client) get(ctx context.Context, url string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return 0, nil, fmt.Errorf("osrm: request: %w", err)
	}

	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}
