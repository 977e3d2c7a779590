// Package features keeps an in-memory registry of feature collections
// fetched from upstream OGC API Features services and answers spatially
// filtered queries against them.
package features

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/samber/lo"
	"github.com/tidwall/rtree"
	"go.opentelemetry.io/otel"
	"gopkg.in/yaml.v2"

	"github.com/openmundi/ogc-feature-proxy/pkg/client"
	"github.com/openmundi/ogc-feature-proxy/pkg/geojson"
	"github.com/openmundi/ogc-feature-proxy/pkg/geom"
)

var tracer = otel.Tracer("ogc-feature-proxy/features")

var ErrCollectionNotFound = fmt.Errorf("collection not found")

// collections at or above this size get an r-tree index; smaller ones
// are filtered linearly.
const indexThreshold = 512

type Config struct {
	Refresh     string             `yaml:"refresh"`
	Collections []CollectionConfig `yaml:"collections"`
}

type CollectionConfig struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	Collection  string `yaml:"collection"`
	MaxItems    int    `yaml:"maxitems"`
}

func NewConfig(config io.ReadCloser) (*Config, error) {
	defer config.Close()

	b, err := io.ReadAll(config)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(b, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// RefreshInterval returns the configured refresh interval, or a quarter
// of an hour when none is set.
func (c Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Refresh)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// CollectionMetadata describes one served collection.
type CollectionMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ItemCount   int    `json:"itemCount"`

	Extent geom.Bounds `json:"-"`
}

type Registry interface {
	Collections(ctx context.Context) []CollectionMetadata
	Collection(ctx context.Context, collectionID string) (CollectionMetadata, error)
	Items(ctx context.Context, collectionID string, bounds geom.Bounds) (geojson.FeatureCollection, error)
	Refresh(ctx context.Context) error
	Start(ctx context.Context)
}

// ClientFactory opens a features client against an upstream base URL.
// Injectable so tests can point the registry at a test double.
type ClientFactory func(baseURL string) client.FeaturesClient

type registry struct {
	config    *Config
	newClient ClientFactory

	mu     sync.RWMutex
	cached map[string]*cachedCollection
}

type cachedCollection struct {
	meta  CollectionMetadata
	items geojson.FeatureCollection
	index *rtree.RTreeG[int]
}

func New(config *Config, newClient ClientFactory) Registry {
	if newClient == nil {
		newClient = client.New
	}

	return &registry{
		config:    config,
		newClient: newClient,
		cached:    map[string]*cachedCollection{},
	}
}

func (r *registry) Collections(ctx context.Context) []CollectionMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.FilterMap(r.config.Collections, func(cfg CollectionConfig, _ int) (CollectionMetadata, bool) {
		cached, ok := r.cached[cfg.ID]
		if !ok {
			return CollectionMetadata{}, false
		}
		return cached.meta, true
	})
}

func (r *registry) Collection(ctx context.Context, collectionID string) (CollectionMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cached, ok := r.cached[collectionID]
	if !ok {
		return CollectionMetadata{}, ErrCollectionNotFound
	}

	return cached.meta, nil
}

func (r *registry) Items(ctx context.Context, collectionID string, bounds geom.Bounds) (geojson.FeatureCollection, error) {
	var err error
	_, span := tracer.Start(ctx, "query-items")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	r.mu.RLock()
	defer r.mu.RUnlock()

	cached, ok := r.cached[collectionID]
	if !ok {
		err = ErrCollectionNotFound
		return geojson.FeatureCollection{}, err
	}

	if bounds.IsEmpty() {
		return cached.items, nil
	}

	if cached.index != nil {
		return intersectViaIndex(cached, bounds), nil
	}

	return cached.items.IntersectByBounds(bounds), nil
}

// intersectViaIndex prefilters candidates through the r-tree and
// confirms each with the exact 2D test, preserving source order.
func intersectViaIndex(cached *cachedCollection, bounds geom.Bounds) geojson.FeatureCollection {
	min, max := bounds.Min(), bounds.Max()

	candidates := make([]int, 0)
	cached.index.Search(
		[2]float64{min.X(), min.Y()},
		[2]float64{max.X(), max.Y()},
		func(_, _ [2]float64, i int) bool {
			candidates = append(candidates, i)
			return true
		},
	)
	sort.Ints(candidates)

	kept := make([]geojson.Feature, 0, len(candidates))
	for _, i := range candidates {
		f := cached.items.At(i)
		if f.Bounds().Intersects2D(bounds) {
			kept = append(kept, f)
		}
	}

	return geojson.NewFeatureCollection(kept, geom.EmptyBounds())
}

func (r *registry) Refresh(ctx context.Context) error {
	var err error
	ctx, span := tracer.Start(ctx, "refresh-collections")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)

	for _, cfg := range r.config.Collections {
		cached, loadErr := r.load(ctx, cfg)
		if loadErr != nil {
			// keep serving the previous snapshot of this collection
			log.Error("failed to refresh collection", "collection_id", cfg.ID, "err", loadErr.Error())
			err = loadErr
			continue
		}

		r.mu.Lock()
		r.cached[cfg.ID] = cached
		r.mu.Unlock()

		log.Info("refreshed collection", "collection_id", cfg.ID, "item_count", cached.meta.ItemCount)
	}

	return err
}

func (r *registry) load(ctx context.Context, cfg CollectionConfig) (*cachedCollection, error) {
	c := r.newClient(cfg.URL)

	info, err := c.Collection(ctx, cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection metadata: %w", err)
	}

	items, err := c.Items(ctx, cfg.Collection, cfg.MaxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection items: %w", err)
	}

	meta := CollectionMetadata{
		ID:          cfg.ID,
		Title:       lo.CoalesceOrEmpty(cfg.Title, info.Title, cfg.ID),
		Description: lo.CoalesceOrEmpty(cfg.Description, info.Description),
		ItemCount:   items.Len(),
		Extent:      info.Extent,
	}

	if meta.Extent.IsEmpty() {
		meta.Extent = items.Bounds()
	}

	return &cachedCollection{
		meta:  meta,
		items: items,
		index: buildIndex(items),
	}, nil
}

func buildIndex(items geojson.FeatureCollection) *rtree.RTreeG[int] {
	if items.Len() < indexThreshold {
		return nil
	}

	index := &rtree.RTreeG[int]{}
	for i := 0; i < items.Len(); i++ {
		b := items.At(i).Bounds()
		if b.IsEmpty() {
			continue
		}
		min, max := b.Min(), b.Max()
		index.Insert(
			[2]float64{min.X(), min.Y()},
			[2]float64{max.X(), max.Y()},
			i,
		)
	}

	return index
}

// Start runs periodic refreshes until the context is cancelled.
func (r *registry) Start(ctx context.Context) {
	go func() {
		log := logging.GetFromContext(ctx)
		interval := r.config.RefreshInterval()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.Refresh(ctx); err != nil {
					log.Error("scheduled refresh failed", "err", err.Error())
				}
			}
		}
	}()
}
