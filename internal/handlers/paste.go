package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/pastebox/internal/analytics"
	"github.com/serroba/pastebox/internal/messaging"
	"github.com/serroba/pastebox/internal/paste"
	"go.uber.org/zap"
)

// PasteHandler maps the HTTP surface onto paste.Store operations.
type PasteHandler struct {
	store          *paste.Store
	baseURL        string
	indexMessage   string
	indexLink      string
	publishSaved   messaging.Publish[analytics.PasteSavedEvent]
	publishViewed  messaging.Publish[analytics.PasteViewedEvent]
	publishDeleted messaging.Publish[analytics.PasteDeletedEvent]
	logger         *zap.Logger
}

// NewPasteHandler creates a new paste handler.
func NewPasteHandler(
	store *paste.Store,
	baseURL string,
	indexMessage string,
	indexLink string,
	publishSaved messaging.Publish[analytics.PasteSavedEvent],
	publishViewed messaging.Publish[analytics.PasteViewedEvent],
	publishDeleted messaging.Publish[analytics.PasteDeletedEvent],
	logger *zap.Logger,
) *PasteHandler {
	return &PasteHandler{
		store:          store,
		baseURL:        baseURL,
		indexMessage:   indexMessage,
		indexLink:      indexLink,
		publishSaved:   publishSaved,
		publishViewed:  publishViewed,
		publishDeleted: publishDeleted,
		logger:         logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for analytics.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// Index serves the root route: a redirect when an index link is configured,
// the index message otherwise.
func (h *PasteHandler) Index(_ context.Context, _ *struct{}) (*IndexResponse, error) {
	resp := &IndexResponse{}

	if h.indexLink != "" {
		resp.Status = http.StatusFound
		resp.Headers.Location = h.indexLink

		return resp, nil
	}

	resp.Body.Message = h.indexMessage

	return resp, nil
}

// CreatePaste stores the request body under a freshly generated id.
func (h *PasteHandler) CreatePaste(ctx context.Context, req *CreatePasteRequest) (*CreatePasteResponse, error) {
	result, err := h.save(ctx, req.Type, paste.SaveRequest{
		Content:   req.RawBody,
		AccessKey: req.Access,
		OwnerKey:  req.Password,
	})
	if err != nil {
		return nil, err
	}

	resp := &CreatePasteResponse{}
	resp.Headers.Location = h.pasteURL(result.ID)
	resp.Body = h.savedBody(result.ID)

	return resp, nil
}

// UpsertPaste stores the request body under the id from the path, creating
// the paste when the id is free and overwriting it otherwise.
func (h *PasteHandler) UpsertPaste(ctx context.Context, req *UpsertPasteRequest) (*UpsertPasteResponse, error) {
	result, err := h.save(ctx, req.Type, paste.SaveRequest{
		ID:        req.ID,
		Content:   req.RawBody,
		AccessKey: req.Access,
		OwnerKey:  req.Password,
	})
	if err != nil {
		return nil, err
	}

	resp := &UpsertPasteResponse{Status: http.StatusOK}
	if result.Created {
		resp.Status = http.StatusCreated
	}

	resp.Headers.Location = h.pasteURL(result.ID)
	resp.Body = h.savedBody(result.ID)

	return resp, nil
}

// save resolves the paste type, validates link targets, runs the store
// operation and publishes the saved event.
func (h *PasteHandler) save(ctx context.Context, typeParam string, req paste.SaveRequest) (*paste.SaveResult, error) {
	kind, err := paste.ParseKind(typeParam)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	req.Kind = kind

	if kind == paste.KindLink {
		if err := validateLinkTarget(req.Content); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
	}

	result, err := h.store.Save(ctx, req)
	if err != nil {
		return nil, mapStoreError(err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.PasteSavedEvent{
		ID:        result.ID,
		Kind:      string(kind),
		Size:      len(req.Content),
		Created:   result.Created,
		SavedAt:   time.Now().UTC(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishSaved(event); err != nil {
		h.logger.Error("failed to publish paste saved event",
			zap.String("id", result.ID),
			zap.Error(err),
		)
	}

	return result, nil
}

// ReadPaste serves a paste body. Text pastes are returned raw; link pastes
// redirect to the stored target. Every successful read counts as a view.
func (h *PasteHandler) ReadPaste(ctx context.Context, req *ReadPasteRequest) (*ReadPasteResponse, error) {
	rec, err := h.store.Read(ctx, req.ID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.PasteViewedEvent{
		ID:        rec.ID,
		Kind:      string(rec.Kind),
		Views:     rec.Views,
		ViewedAt:  time.Now().UTC(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}

	if err := h.publishViewed(event); err != nil {
		h.logger.Error("failed to publish paste viewed event",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
	}

	resp := &ReadPasteResponse{}

	if rec.Kind == paste.KindLink {
		resp.Status = http.StatusFound
		resp.Headers.Location = string(rec.Content)

		return resp, nil
	}

	resp.Headers.ContentType = "text/plain; charset=utf-8"
	resp.Body = rec.Content

	return resp, nil
}

// GetStats serves a paste's view statistics without counting a view.
func (h *PasteHandler) GetStats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	entry, err := h.store.Stats(ctx, req.ID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return &StatsResponse{Body: statsBody(*entry)}, nil
}

// ListPastes serves the statistics of every stored paste.
func (h *PasteHandler) ListPastes(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	entries, err := h.store.List(ctx, req.Access)
	if err != nil {
		return nil, mapStoreError(err)
	}

	body := make([]StatsBody, 0, len(entries))
	for _, entry := range entries {
		body = append(body, statsBody(entry))
	}

	return &ListResponse{Body: body}, nil
}

// DeletePaste removes a paste.
func (h *PasteHandler) DeletePaste(ctx context.Context, req *DeletePasteRequest) (*DeletePasteResponse, error) {
	if err := h.store.Delete(ctx, req.ID, req.Access, req.Password); err != nil {
		return nil, mapStoreError(err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.PasteDeletedEvent{
		ID:        req.ID,
		DeletedAt: time.Now().UTC(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishDeleted(event); err != nil {
		h.logger.Error("failed to publish paste deleted event",
			zap.String("id", req.ID),
			zap.Error(err),
		)
	}

	resp := &DeletePasteResponse{}
	resp.Body.ID = req.ID

	return resp, nil
}

func (h *PasteHandler) pasteURL(id string) string {
	return fmt.Sprintf("%s/%s", h.baseURL, id)
}

func (h *PasteHandler) savedBody(id string) SavedBody {
	return SavedBody{
		ID:   id,
		Path: "/" + id,
		URL:  h.pasteURL(id),
	}
}

func statsBody(entry paste.Entry) StatsBody {
	return StatsBody{
		ID:           entry.ID,
		Kind:         string(entry.Kind),
		Size:         entry.Size,
		ViewCount:    entry.Views,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
		LastViewedAt: entry.LastViewedAt,
	}
}

// validateLinkTarget requires link bodies to be absolute URLs.
func validateLinkTarget(content []byte) error {
	u, err := url.Parse(string(content))
	if err != nil || !u.IsAbs() {
		return errors.New("link pastes must contain an absolute url")
	}

	return nil
}

// mapStoreError translates store errors into HTTP errors. Forbidden keeps a
// single message for every credential failure so callers cannot probe which
// layer rejected them.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, paste.ErrNotFound):
		return huma.Error404NotFound("paste not found")
	case errors.Is(err, paste.ErrForbidden):
		return huma.Error403Forbidden("invalid credentials")
	case errors.Is(err, paste.ErrTooLarge):
		return huma.NewError(http.StatusRequestEntityTooLarge, "content exceeds the size limit")
	case errors.Is(err, paste.ErrConflict):
		return huma.Error409Conflict("paste type cannot change")
	case errors.Is(err, paste.ErrExhausted):
		return huma.Error503ServiceUnavailable("could not allocate a free id, retry")
	default:
		return huma.Error500InternalServerError("storage failure")
	}
}
