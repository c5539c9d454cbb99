package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/pastebox/internal/ratelimit"
)

// RegisterRoutes registers all paste routes with per-endpoint rate limit
// configuration. maxBodyBytes caps request bodies before they are buffered;
// it should be the largest configured content ceiling.
func RegisterRoutes(api huma.API, h *PasteHandler, maxBodyBytes int64) {
	// GET / - Service index
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service index",
		Description: "Returns the configured index message or redirects to the configured index link.",
		Tags:        []string{"Pastes"},
	}, h.Index)

	// POST / - Create paste under a generated id
	// Uses stricter rate limits for write operations
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/",
		Summary:       "Create paste",
		Description:   "Stores the request body as a new paste under a generated id.",
		Tags:          []string{"Pastes"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  maxBodyBytes,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 20},      // 20 per minute
					{Window: time.Hour, Max: 200},       // 200 per hour
					{Window: 24 * time.Hour, Max: 1000}, // 1000 per day
				},
			},
		},
	}, h.CreatePaste)

	// POST /{id} - Create or overwrite paste under an explicit id
	huma.Register(api, huma.Operation{
		Method:       http.MethodPost,
		Path:         "/{id}",
		Summary:      "Create or update paste",
		Description:  "Stores the request body under the given id, creating the paste when the id is free.",
		Tags:         []string{"Pastes"},
		MaxBodyBytes: maxBodyBytes,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 20},      // 20 per minute
					{Window: time.Hour, Max: 200},       // 200 per hour
					{Window: 24 * time.Hour, Max: 1000}, // 1000 per day
				},
			},
		},
	}, h.UpsertPaste)

	// GET /all - List pastes
	// chi matches the static segment before /{id}
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/all",
		Summary:     "List pastes",
		Description: "Returns statistics for every stored paste. Requires the service access credential.",
		Tags:        []string{"Pastes"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30}, // 30 per minute
				},
			},
		},
	}, h.ListPastes)

	// GET /{id} - Read paste
	// Uses relaxed rate limits for high-traffic read operations
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{id}",
		Summary:     "Read paste",
		Description: "Serves the paste body; link pastes redirect to their target. Counts a view.",
		Tags:        []string{"Pastes"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 600}, // 600 per minute
				},
			},
		},
	}, h.ReadPaste)

	// GET /{id}/stats - Paste statistics
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{id}/stats",
		Summary:     "Paste statistics",
		Description: "Returns view statistics for a paste without counting a view.",
		Tags:        []string{"Pastes"},
	}, h.GetStats)

	// DELETE /{id} - Delete paste
	huma.Register(api, huma.Operation{
		Method:      http.MethodDelete,
		Path:        "/{id}",
		Summary:     "Delete paste",
		Description: "Removes a paste. Requires the service access credential and the paste's owner credential.",
		Tags:        []string{"Pastes"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30}, // 30 per minute
				},
			},
		},
	}, h.DeletePaste)
}
