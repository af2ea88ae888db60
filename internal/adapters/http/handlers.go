package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mabteam/poimap/internal/adapters/geojson"
	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/presenter"
)

const maxBatchSize = 1000

// queryError is a malformed or missing query parameter.
type queryError struct{ msg string }

func (e queryError) Error() string { return e.msg }

// parseRegion reads sw_lat, sw_lng, ne_lat and ne_lng from the query string.
func parseRegion(c *fiber.Ctx) (domain.Region, error) {
	var vals [4]float64
	for i, key := range []string{"sw_lat", "sw_lng", "ne_lat", "ne_lng"} {
		raw := c.Query(key)
		if raw == "" {
			return domain.Region{}, queryError{key + " is required"}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Region{}, queryError{key + " must be a number"}
		}
		vals[i] = v
	}
	return domain.NewRegion(
		domain.GeoPoint{Lat: vals[0], Lng: vals[1]},
		domain.GeoPoint{Lat: vals[2], Lng: vals[3]},
	)
}

// errFromRegion maps a parseRegion failure onto a 400 response.
func errFromRegion(c *fiber.Ctx, err error) error {
	var qe queryError
	if errors.As(err, &qe) {
		return errBadRequest(c, qe.msg)
	}
	return errFromDomain(c, err)
}

// ClustersHandler clusters the POIs in the requested viewport. With a
// session parameter the animation plan is relative to that session's
// previous frame and overlapping requests supersede each other.
func ClustersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		region, err := parseRegion(c)
		if err != nil {
			return errFromRegion(c, err)
		}
		rawZoom := c.Query("zoom")
		if rawZoom == "" {
			return errBadRequest(c, "zoom is required")
		}
		zoom, err := strconv.ParseFloat(rawZoom, 64)
		if err != nil {
			return errBadRequest(c, "zoom must be a number")
		}

		ctx := c.UserContext()
		session := c.Query("session")
		if session != "" && deps.Sessions != nil {
			if len(session) > 128 {
				return errBadRequest(c, "session too long (max 128 characters)")
			}
			frame, err := deps.Sessions.Get(session).Recluster(ctx, region, zoom)
			if err != nil {
				return errFromDomain(c, err)
			}
			c.Set(fiber.HeaderCacheControl, "no-store")
			return c.JSON(frame)
		}

		frame, err := deps.Map.Recluster(ctx, presenter.ViewModel{}, region, zoom)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(frame)
	}
}

// ListPOIsHandler returns the detail list for a region, filtered by name.
func ListPOIsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		region, err := parseRegion(c)
		if err != nil {
			return errFromRegion(c, err)
		}
		query := c.Query("q")
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		pois, total, err := deps.POIs.ListInRegion(c.UserContext(), region, query, offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: pois, Pagination: pg})
	}
}

// GetPOIHandler returns a single POI by ID.
func GetPOIHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "poi id is required")
		}

		poi, err := deps.POIs.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(poi)
	}
}

// CategoryPOIsHandler lists POIs of one category.
func CategoryPOIsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Params("category")
		if category == "" {
			return errBadRequest(c, "category is required")
		}

		pois, err := deps.POIs.ListByCategory(c.UserContext(), category, c.QueryInt("limit", 50))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(pois)
	}
}

// CreatedPOI is returned after adding a POI: the stored record and the zoom
// level a client should fly to in order to show it.
type CreatedPOI struct {
	POI       *domain.POI `json:"poi"`
	FocusZoom float64     `json:"focus_zoom"`
}

// CreatePOIHandler adds one place. The optional zoom query parameter is the
// client's current zoom, used to compute focus_zoom.
func CreatePOIHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var place domain.Place
		if err := c.BodyParser(&place); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(place.Name) == "" {
			return errBadRequest(c, "name is required")
		}

		poi, err := deps.POIs.AddPOI(c.UserContext(), place)
		if err != nil {
			return errFromDomain(c, err)
		}

		LoggerFromCtx(c.UserContext()).Info("poi added", "id", poi.ID)
		c.Location("/v1/pois/" + poi.ID)
		return c.Status(fiber.StatusCreated).JSON(CreatedPOI{
			POI:       poi,
			FocusZoom: deps.Map.FocusZoom(c.QueryFloat("zoom", 0)),
		})
	}
}

// BatchCreateHandler adds many places atomically.
func BatchCreateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Places []domain.Place `json:"places"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(body.Places) == 0 {
			return errBadRequest(c, "places must not be empty")
		}
		if len(body.Places) > maxBatchSize {
			return errBadRequest(c, fmt.Sprintf("too many places (max %d)", maxBatchSize))
		}

		pois, err := deps.POIs.AddPOIs(c.UserContext(), body.Places)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(pois)
	}
}

// DeletePOIHandler removes one POI.
func DeletePOIHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "poi id is required")
		}
		if err := deps.POIs.DeletePOI(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteAllHandler removes every POI.
func DeleteAllHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.POIs.DeleteAll(c.UserContext()); err != nil {
			return errFromDomain(c, err)
		}
		LoggerFromCtx(c.UserContext()).Warn("all pois deleted")
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ExportHandler returns the POIs in a region (default: the whole world) as GeoJSON.
func ExportHandler(deps *Dependencies) fiber.Handler {
	world := domain.Region{
		SouthWest: domain.GeoPoint{Lat: -90, Lng: -180},
		NorthEast: domain.GeoPoint{Lat: 90, Lng: 180},
	}

	return func(c *fiber.Ctx) error {
		region := world
		if c.Query("sw_lat") != "" {
			r, err := parseRegion(c)
			if err != nil {
				return errFromRegion(c, err)
			}
			region = r
		}

		pois, err := deps.POIs.InRegion(c.UserContext(), region)
		if err != nil {
			return errFromDomain(c, err)
		}
		data, err := geojson.Encode(pois)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set(fiber.HeaderContentType, "application/geo+json")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="pois.geojson"`)
		return c.Send(data)
	}
}
