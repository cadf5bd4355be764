package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kulturapass/kulturapass/internal/core/domain"
	"github.com/kulturapass/kulturapass/internal/core/usecases"
	"github.com/kulturapass/kulturapass/internal/pkg/geospatial"
)

// pointInput is a request coordinate. Both fields are required; ranges are not checked.
type pointInput struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type routeRequest struct {
	Points  []pointInput `json:"points"`
	Profile string       `json:"profile"`
}

type polylineRequest struct {
	Polyline string `json:"polyline"`
}

// parsePoints reads the points of a routeRequest body. A non-empty problem
// describes why the body was rejected.
func parsePoints(c *fiber.Ctx) (points []domain.RoutePoint, profile string, problem string) {
	var req routeRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, "", "invalid request body"
	}
	if len(req.Points) > usecases.MaxPoints {
		return nil, "", usecases.ErrTooManyPoints.Error()
	}

	points = make([]domain.RoutePoint, len(req.Points))
	for i, p := range req.Points {
		if p.Lat == nil || p.Lng == nil {
			return nil, "", "every point needs lat and lng"
		}
		points[i] = domain.RoutePoint{Lat: *p.Lat, Lng: *p.Lng}
	}
	return points, req.Profile, ""
}

// OptimizeRouteHandler orders the posted points into a short tour.
// POST /v1/routes/optimize[?format=geojson]
func OptimizeRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, _, problem := parsePoints(c)
		if problem != "" {
			return errBadRequest(c, problem)
		}

		plan, err := deps.Routes.Optimize(c.UserContext(), points)
		if err != nil {
			return errFromService(c, err)
		}

		if c.Query("format") == "geojson" {
			return sendGeoJSON(c, plan)
		}
		return c.JSON(plan)
	}
}

// PlanRouteHandler optimizes the posted points and adds road geometry.
// POST /v1/routes/plan
func PlanRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, profile, problem := parsePoints(c)
		if problem != "" {
			return errBadRequest(c, problem)
		}

		plan, err := deps.Routes.Plan(c.UserContext(), points, profile)
		if err != nil {
			return errFromService(c, err)
		}

		if c.Query("format") == "geojson" {
			return sendGeoJSON(c, plan)
		}
		return c.JSON(plan)
	}
}

// DecodePolylineHandler decodes an encoded polyline. A polyline neither
// decoder accepts yields 200 with no points and source "none".
// POST /v1/polylines/decode
func DecodePolylineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req polylineRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		res := deps.Routes.Decode(c.UserContext(), req.Polyline)
		body := fiber.Map{
			"points": res.Points,
			"count":  len(res.Points),
			"source": res.Source,
		}
		if !res.OK() {
			body["error"] = "no route available"
		}
		return c.JSON(body)
	}
}

// EncodePolylineHandler encodes the posted points as a polyline.
// POST /v1/polylines/encode
func EncodePolylineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, _, problem := parsePoints(c)
		if problem != "" {
			return errBadRequest(c, problem)
		}

		encoded, err := deps.Routes.Encode(points)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(fiber.Map{"polyline": encoded, "count": len(points)})
	}
}

// PlanStatsHandler returns aggregates of planned routes per profile.
// GET /v1/routes/stats
func PlanStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.PlanStats == nil {
			return c.JSON(fiber.Map{"profiles": []domain.PlanStats{}})
		}
		return c.JSON(fiber.Map{"profiles": deps.PlanStats.Snapshot()})
	}
}

// sendGeoJSON renders a plan as a GeoJSON FeatureCollection.
func sendGeoJSON(c *fiber.Ctx, plan *domain.RoutePlan) error {
	data, err := geospatial.PlanFeatureCollection(plan).MarshalJSON()
	if err != nil {
		return errInternal(c, err.Error())
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}
