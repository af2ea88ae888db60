package usecases

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mabteam/poimap/internal/clustering"
	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/ports"
	"github.com/mabteam/poimap/internal/core/presenter"
	"github.com/mabteam/poimap/internal/pkg/metrics"
	"github.com/mabteam/poimap/internal/pkg/telemetry"
)

// Frame is the outcome of one recluster cycle.
type Frame struct {
	Viewport  domain.Region            `json:"viewport"`
	Zoom      float64                  `json:"zoom"`
	ViewModel presenter.ViewModel      `json:"view_model"`
	Plan      clustering.AnimationPlan `json:"plan"`
	Clusters  []domain.Cluster         `json:"-"`
}

// MapService drives the fetch, cluster, plan and present cycle for a map view.
type MapService struct {
	store     ports.POIStore
	engine    *clustering.Engine
	presenter *presenter.Presenter
	tracer    trace.Tracer
}

// NewMapService creates a new MapService. Nil engine or presenter fall back to defaults.
func NewMapService(store ports.POIStore, engine *clustering.Engine, pres *presenter.Presenter) *MapService {
	if engine == nil {
		engine = clustering.NewEngine()
	}
	if pres == nil {
		pres = presenter.New()
	}
	return &MapService{store: store, engine: engine, presenter: pres, tracer: telemetry.Tracer()}
}

// Engine exposes the clustering parameters in use.
func (s *MapService) Engine() *clustering.Engine {
	return s.engine
}

// Recluster fetches the POIs in viewport, clusters them at zoom and plans the
// animation from prev. An invalid viewport fails before any store access.
func (s *MapService) Recluster(ctx context.Context, prev presenter.ViewModel, viewport domain.Region, zoom float64) (*Frame, error) {
	if err := viewport.Validate(); err != nil {
		return nil, err
	}
	zoom = s.engine.ClampZoom(zoom)

	ctx, span := s.tracer.Start(ctx, "MapService.Recluster", trace.WithAttributes(
		attribute.Float64("map.zoom", zoom),
		attribute.Float64("map.sw_lat", viewport.SouthWest.Lat),
		attribute.Float64("map.sw_lng", viewport.SouthWest.Lng),
		attribute.Float64("map.ne_lat", viewport.NorthEast.Lat),
		attribute.Float64("map.ne_lng", viewport.NorthEast.Lng),
	))
	defer span.End()
	start := time.Now()

	pois, err := s.store.FetchPOIs(ctx, viewport)
	if err != nil {
		err = storeErr("fetch pois", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clusters := s.engine.Cluster(pois, zoom, viewport)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	proj := presenter.NewMercatorProjector(viewport, zoom, s.engine.TileSize)
	vm := s.presenter.WithProjector(proj).Present(clusters)
	plan := clustering.PlanSnapshots(prev.Snapshots(), vm.Snapshots())

	span.SetAttributes(
		attribute.Int("map.pois", len(pois)),
		attribute.Int("map.clusters", len(clusters)),
		attribute.Bool("map.merge", plan.IsMerge),
	)
	metrics.ReclusterDuration.Observe(time.Since(start).Seconds())
	metrics.ClustersEmitted.Observe(float64(len(clusters)))

	return &Frame{
		Viewport:  viewport,
		Zoom:      zoom,
		ViewModel: vm,
		Plan:      plan,
		Clusters:  clusters,
	}, nil
}

// FocusZoom is the zoom level used to centre on a freshly placed POI:
// two levels short of the maximum, never zooming out.
func (s *MapService) FocusZoom(current float64) float64 {
	focus := s.engine.MaxZoom - 2
	if current > focus {
		return s.engine.ClampZoom(current)
	}
	return focus
}
