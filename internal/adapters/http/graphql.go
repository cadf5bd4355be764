package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/kulturapass/kulturapass/internal/core/domain"
	"github.com/kulturapass/kulturapass/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoutePoint",
		Fields: graphql.Fields{
			"lat":           &graphql.Field{Type: graphql.Float},
			"lng":           &graphql.Field{Type: graphql.Float},
			"originalIndex": &graphql.Field{Type: graphql.Int},
		},
	})

	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lng": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lng": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lng": &graphql.Field{Type: graphql.Float},
		},
	})

	planType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoutePlan",
		Fields: graphql.Fields{
			"points":    &graphql.Field{Type: graphql.NewList(pointType)},
			"length_km": &graphql.Field{Type: graphql.Float},
			"bounds":    &graphql.Field{Type: boundsType},
		},
	})

	decodeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DecodeResult",
		Fields: graphql.Fields{
			"source": &graphql.Field{Type: graphql.String},
			"count":  &graphql.Field{Type: graphql.Int},
			"points": &graphql.Field{Type: graphql.NewList(pointType)},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlanStats",
		Fields: graphql.Fields{
			"profile":   &graphql.Field{Type: graphql.String},
			"plans":     &graphql.Field{Type: graphql.Int},
			"with_road": &graphql.Field{Type: graphql.Int},
			"total_km":  &graphql.Field{Type: graphql.Float},
			"avg_km":    &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"decodePolyline": &graphql.Field{
				Type:        decodeType,
				Description: "Decode an encoded polyline into points",
				Args: graphql.FieldConfigArgument{
					"polyline": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res := deps.Routes.Decode(p.Context, p.Args["polyline"].(string))
					return map[string]interface{}{
						"source": string(res.Source),
						"count":  len(res.Points),
						"points": res.Points,
					}, nil
				},
			},
			"optimizeRoute": &graphql.Field{
				Type:        planType,
				Description: "Order points into a nearest-neighbor tour",
				Args: graphql.FieldConfigArgument{
					"points": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pointInput)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					points, err := pointsArg(p.Args["points"])
					if err != nil {
						return nil, err
					}
					return deps.Routes.Optimize(p.Context, points)
				},
			},
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Great-circle distance in kilometers",
				Args: graphql.FieldConfigArgument{
					"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(pointInput)},
					"to":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(pointInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from, err := pointArg(p.Args["from"])
					if err != nil {
						return nil, err
					}
					to, err := pointArg(p.Args["to"])
					if err != nil {
						return nil, err
					}
					return geospatial.DistanceKm(from, to), nil
				},
			},
			"planStats": &graphql.Field{
				Type:        graphql.NewList(statsType),
				Description: "Planned routes per travel profile",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.PlanStats == nil {
						return []domain.PlanStats{}, nil
					}
					return deps.PlanStats.Snapshot(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func pointArg(v interface{}) (domain.RoutePoint, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return domain.RoutePoint{}, fmt.Errorf("invalid point %v", v)
	}
	lat, latOK := m["lat"].(float64)
	lng, lngOK := m["lng"].(float64)
	if !latOK || !lngOK {
		return domain.RoutePoint{}, fmt.Errorf("point needs lat and lng")
	}
	return domain.RoutePoint{Lat: lat, Lng: lng}, nil
}

func pointsArg(v interface{}) ([]domain.RoutePoint, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("points must be a list")
	}
	points := make([]domain.RoutePoint, len(list))
	for i, item := range list {
		p, err := pointArg(item)
		if err != nil {
			return nil, fmt.Errorf("points[%d]: %w", i, err)
		}
		points[i] = p
	}
	return points, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
