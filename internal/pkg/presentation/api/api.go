package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/openmundi/ogc-feature-proxy/internal/pkg/application/features"
	"github.com/openmundi/ogc-feature-proxy/pkg/geojson"
	"github.com/openmundi/ogc-feature-proxy/pkg/geom"
)

var tracer = otel.Tracer("ogc-feature-proxy/api")

func RegisterHandlers(ctx context.Context, router *chi.Mux, registry features.Registry) *chi.Mux {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log := logging.GetFromContext(ctx)

	router.Route("/api/v0", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", listCollectionsHandler(log, registry))
			r.Get("/{collectionID}", getCollectionHandler(log, registry))
			r.Get("/{collectionID}/items", getItemsHandler(log, registry))
		})
	})

	return router
}

func listCollectionsHandler(log *slog.Logger, registry features.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-collections")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		collections := registry.Collections(ctx)

		b, err := json.Marshal(map[string]any{"collections": collections})
		if err != nil {
			requestLogger.Error("unable to marshal collections", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func getCollectionHandler(log *slog.Logger, registry features.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-collection")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		collectionID := chi.URLParam(r, "collectionID")

		meta, err := registry.Collection(ctx, collectionID)
		if errors.Is(err, features.ErrCollectionNotFound) {
			requestLogger.Debug("collection not found", "collection_id", collectionID)
			writeError(w, http.StatusNotFound, "no such collection")
			return
		}
		if err != nil {
			requestLogger.Error("could not fetch collection", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		b, err := json.Marshal(meta)
		if err != nil {
			requestLogger.Error("unable to marshal collection", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func getItemsHandler(log *slog.Logger, registry features.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-items")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		collectionID := chi.URLParam(r, "collectionID")
		requestLogger = requestLogger.With(slog.String("collection_id", collectionID))

		bounds, err := parseBBoxParam(r.URL.Query().Get("bbox"))
		if err != nil {
			requestLogger.Debug("malformed bbox parameter", "err", err.Error())
			writeError(w, http.StatusBadRequest, "bbox must hold 4 or 6 comma separated numbers")
			return
		}

		collection, err := registry.Items(ctx, collectionID, bounds)
		if errors.Is(err, features.ErrCollectionNotFound) {
			requestLogger.Debug("collection not found")
			writeError(w, http.StatusNotFound, "no such collection")
			return
		}
		if err != nil {
			requestLogger.Error("could not fetch items", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		b, err := json.Marshal(itemsResponse(collection))
		if err != nil {
			requestLogger.Error("unable to marshal items", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Add("Content-Type", "application/geo+json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

// parseBBoxParam turns "minx,miny,maxx,maxy" (optionally with a z pair)
// into a bounds; an absent parameter means no spatial filter.
func parseBBoxParam(param string) (geom.Bounds, error) {
	if param == "" {
		return geom.EmptyBounds(), nil
	}

	parts := strings.Split(param, ",")
	buf := make([]float64, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geom.EmptyBounds(), err
		}
		buf = append(buf, n)
	}

	return geom.BoundsFromBuffer(buf)
}

// itemsResponse re-serves the raw upstream representation of each
// feature; the model itself has no JSON encoder.
func itemsResponse(collection geojson.FeatureCollection) map[string]any {
	members := make([]map[string]any, 0, collection.Len())
	for _, f := range collection.Features() {
		if raw := f.Raw(); raw != nil {
			members = append(members, raw)
			continue
		}

		member := map[string]any{
			"type":       "Feature",
			"properties": f.Properties(),
		}
		if !f.ID().IsZero() {
			member["id"] = f.ID().String()
		}
		members = append(members, member)
	}

	return map[string]any{
		"type":           "FeatureCollection",
		"features":       members,
		"numberMatched":  collection.Len(),
		"numberReturned": len(members),
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
