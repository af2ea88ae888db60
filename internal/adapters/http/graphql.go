package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/presenter"
)

func regionArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"sw_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"sw_lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"ne_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"ne_lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}
}

func regionFromArgs(args map[string]interface{}) (domain.Region, error) {
	return domain.NewRegion(
		domain.GeoPoint{Lat: args["sw_lat"].(float64), Lng: args["sw_lng"].(float64)},
		domain.GeoPoint{Lat: args["ne_lat"].(float64), Lng: args["ne_lng"].(float64)},
	)
}

// buildSchema creates the GraphQL schema wired to the map and POI services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	poiType := graphql.NewObject(graphql.ObjectConfig{
		Name: "POI",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"category":   &graphql.Field{Type: graphql.String},
			"coordinate": &graphql.Field{Type: geoPointType},
			"image_url":  &graphql.Field{Type: graphql.String},
			"distance":   &graphql.Field{Type: graphql.Float},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"position":     &graphql.Field{Type: geoPointType},
			"radius":       &graphql.Field{Type: graphql.Float},
			"member_count": &graphql.Field{Type: graphql.Int},
			"leaf":         &graphql.Field{Type: graphql.Boolean},
			"caption":      &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
		},
	})

	frameType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Frame",
		Fields: graphql.Fields{
			"zoom":    &graphql.Field{Type: graphql.Float},
			"count":   &graphql.Field{Type: graphql.Int},
			"markers": &graphql.Field{Type: graphql.NewList(markerType)},
		},
	})

	clusterArgs := regionArgs()
	clusterArgs["zoom"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)}

	poisArgs := regionArgs()
	poisArgs["query"] = &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""}
	poisArgs["offset"] = &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0}
	poisArgs["limit"] = &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"clusters": &graphql.Field{
				Type:        frameType,
				Description: "Cluster the POIs visible in a viewport",
				Args:        clusterArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					region, err := regionFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					frame, err := deps.Map.Recluster(p.Context, presenter.ViewModel{}, region, p.Args["zoom"].(float64))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"zoom":    frame.Zoom,
						"count":   frame.ViewModel.Count,
						"markers": frame.ViewModel.Markers,
					}, nil
				},
			},
			"pois": &graphql.Field{
				Type:        graphql.NewList(poiType),
				Description: "List POIs in a region, nearest to its center first",
				Args:        poisArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					region, err := regionFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					pois, _, err := deps.POIs.ListInRegion(p.Context, region,
						p.Args["query"].(string), p.Args["offset"].(int), p.Args["limit"].(int))
					return pois, err
				},
			},
			"poi": &graphql.Field{
				Type:        poiType,
				Description: "Get a POI by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.POIs.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"poisByCategory": &graphql.Field{
				Type:        graphql.NewList(poiType),
				Description: "List POIs of one category",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.POIs.ListByCategory(p.Context, p.Args["category"].(string), p.Args["limit"].(int))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addPOI": &graphql.Field{
				Type:        poiType,
				Description: "Add a place; x is longitude and y latitude",
				Args: graphql.FieldConfigArgument{
					"name":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"category":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"x":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"y":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"image_url": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.POIs.AddPOI(p.Context, domain.Place{
						Name:     p.Args["name"].(string),
						Category: p.Args["category"].(string),
						X:        p.Args["x"].(string),
						Y:        p.Args["y"].(string),
						ImageURL: p.Args["image_url"].(string),
					})
				},
			},
			"deletePOI": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Delete a POI by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					err := deps.POIs.DeletePOI(p.Context, p.Args["id"].(string))
					if errors.Is(err, domain.ErrNotFound) {
						return false, nil
					}
					return err == nil, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
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
