// Package client talks to an upstream OGC API Features service and
// decodes its responses into the geometry/feature model.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/openmundi/ogc-feature-proxy/pkg/geojson"
	"github.com/openmundi/ogc-feature-proxy/pkg/geom"
)

var tracer = otel.Tracer("ogc-feature-proxy/features-client")

// CollectionInfo is the metadata an upstream publishes about one of its
// feature collections.
type CollectionInfo struct {
	ID          string
	Title       string
	Description string
	Extent      geom.Bounds
}

type FeaturesClient interface {
	Collections(ctx context.Context) ([]CollectionInfo, error)
	Collection(ctx context.Context, collectionID string) (CollectionInfo, error)
	Items(ctx context.Context, collectionID string, limit int) (geojson.FeatureCollection, error)
}

type featuresClient struct {
	baseURL    string
	httpClient http.Client
}

func New(baseURL string) FeaturesClient {
	return &featuresClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (fc *featuresClient) Collections(ctx context.Context) ([]CollectionInfo, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-collections")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := fc.get(ctx, fc.baseURL+"/collections", "application/json")
	if err != nil {
		return nil, err
	}

	response := collectionsResponse{}
	err = json.Unmarshal(body, &response)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal collections response: %w", err)
		return nil, err
	}

	collections := make([]CollectionInfo, 0, len(response.Collections))
	for _, c := range response.Collections {
		info, mapErr := c.toInfo()
		if mapErr != nil {
			err = mapErr
			return nil, err
		}
		collections = append(collections, info)
	}

	return collections, nil
}

func (fc *featuresClient) Collection(ctx context.Context, collectionID string) (CollectionInfo, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-collection")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)
	log.Debug("fetching collection metadata", "collection_id", collectionID)

	body, err := fc.get(ctx, fc.baseURL+"/collections/"+collectionID, "application/json")
	if err != nil {
		return CollectionInfo{}, err
	}

	c := collectionDTO{}
	err = json.Unmarshal(body, &c)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal collection response: %w", err)
		return CollectionInfo{}, err
	}

	info, err := c.toInfo()
	if err != nil {
		return CollectionInfo{}, err
	}

	return info, nil
}

func (fc *featuresClient) Items(ctx context.Context, collectionID string, limit int) (geojson.FeatureCollection, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-items")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)
	log.Debug("fetching collection items", "collection_id", collectionID, "limit", limit)

	url := fc.baseURL + "/collections/" + collectionID + "/items"
	if limit > 0 {
		url += "?limit=" + strconv.Itoa(limit)
	}

	body, err := fc.get(ctx, url, "application/geo+json")
	if err != nil {
		return geojson.FeatureCollection{}, err
	}

	// Raw objects are retained so the presentation layer can re-serve
	// the upstream representation without a model-to-JSON encoder.
	collection, err := geojson.DecodeFeatureCollection(body, geojson.WithFeatureFactory(geojson.RawRetainingFactory))
	if err != nil {
		err = fmt.Errorf("failed to decode items response: %w", err)
		return geojson.FeatureCollection{}, err
	}

	return collection, nil
}

func (fc *featuresClient) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := fc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to upstream failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

type collectionsResponse struct {
	Collections []collectionDTO `json:"collections"`
}

type collectionDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Extent      struct {
		Spatial struct {
			BBox [][]float64 `json:"bbox"`
		} `json:"spatial"`
	} `json:"extent"`
}

func (c collectionDTO) toInfo() (CollectionInfo, error) {
	info := CollectionInfo{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Extent:      geom.EmptyBounds(),
	}

	if len(c.Extent.Spatial.BBox) > 0 {
		extent, err := geom.BoundsFromBuffer(c.Extent.Spatial.BBox[0])
		if err != nil {
			return CollectionInfo{}, fmt.Errorf("collection %s carries a malformed extent: %w", c.ID, err)
		}
		info.Extent = extent
	}

	return info, nil
}
