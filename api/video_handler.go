package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/database"
	"github.com/rpupo63/video-catalog-backend/errs"
	"github.com/rpupo63/video-catalog-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

type videoHandler struct {
	responder Responder
	logger    zerolog.Logger
	videoRepo database.VideoRepository
	rules     catalog.Rules
}

func newVideoHandler(videoRepo database.VideoRepository, rules catalog.Rules) videoHandler {
	logger := log.With().Str("handlerName", "videoHandler").Logger()

	return videoHandler{
		responder: NewResponder(logger),
		logger:    logger,
		videoRepo: videoRepo,
		rules:     rules,
	}
}

// listVideos returns one page of the filtered, ordered catalog
// @Summary List videos
// @Description Filters by q/tag/category, orders by sort/order and pages by limit/offset
// @Tags Videos
// @Produce json
// @Param q query string false "Title substring or exact tag"
// @Param tag query string false "Exact tag"
// @Param category query string false "Exact category"
// @Param sort query string false "added | published | rating"
// @Param order query string false "asc | desc"
// @Param limit query int false "1-100, default 10"
// @Param offset query int false ">= 0"
// @Success 200 {array} models.VideoEntry "Page of videos; x-total-count carries the filtered total"
// @Failure 500 {object} ErrorResponse "Internal Server Error"
// @Router /api/videos [get]
func (h videoHandler) listVideos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := catalog.ParseVideoQuery(r.URL.Query())

		entries, total, err := h.videoRepo.List(r.Context(), query)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if entries == nil {
			entries = []models.VideoEntry{}
		}

		w.Header().Set("x-total-count", strconv.FormatInt(total, 10))
		w.Header().Set("x-limit", strconv.Itoa(query.Limit))
		w.Header().Set("x-offset", strconv.Itoa(query.Offset))
		h.responder.WriteJSON(w, entries)
	}
}

// getVideo retrieves a single video
// @Summary Get video
// @Tags Videos
// @Produce json
// @Param videoID path string true "Video ID" format(uuid)
// @Success 200 {object} models.VideoEntry
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /api/videos/{videoID} [get]
func (h videoHandler) getVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := parseVideoID(chi.URLParam(r, "videoID"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		entry, err := h.videoRepo.FindByID(r.Context(), videoID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, entry)
	}
}

// createVideo stores a new video
// @Summary Create video
// @Description Admin only. Every invalid field is reported in errors.
// @Tags Videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.VideoEntry
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 401 {object} ErrorResponse "Missing token"
// @Failure 403 {object} ErrorResponse "Not the administrator"
// @Router /api/videos [post]
func (h videoHandler) createVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := h.readObject(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		input, err := h.rules.ParseCreate(raw)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		entry := input.NewEntry()
		if err := h.videoRepo.Add(r.Context(), entry); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.audit(r).Str("videoId", entry.ID.String()).Msg("video created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, entry)
	}
}

// updateVideo merge-patches a video; fields absent from the body are untouched
// @Summary Update video
// @Description Admin only. The id comes from the path or, on /api/videos, from the body.
// @Tags Videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param videoID path string false "Video ID" format(uuid)
// @Success 200 {object} models.VideoEntry
// @Failure 400 {object} ErrorResponse "Validation failed or missing id"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /api/videos/{videoID} [patch]
func (h videoHandler) updateVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := h.readObject(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		input, err := h.rules.ParsePatch(raw)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		videoID, err := targetVideoID(r, raw)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.videoRepo.Patch(r.Context(), videoID, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.audit(r).Str("videoId", videoID.String()).Stringer("fields", input.Mask).Msg("video updated")
		h.responder.WriteJSON(w, updated)
	}
}

// deleteVideo permanently removes a video
// @Summary Delete video
// @Tags Videos
// @Produce json
// @Security BearerAuth
// @Param videoID path string false "Video ID" format(uuid)
// @Success 200 {object} DeleteResponse
// @Failure 400 {object} ErrorResponse "Missing id"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /api/videos/{videoID} [delete]
func (h videoHandler) deleteVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// a missing or unreadable body only matters when the path has no id
		raw, err := h.readObject(w, r)
		if err != nil {
			raw = map[string]json.RawMessage{}
		}

		videoID, err := targetVideoID(r, raw)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.videoRepo.Delete(r.Context(), videoID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.audit(r).Str("videoId", videoID.String()).Msg("video deleted")
		h.responder.WriteJSON(w, DeleteResponse{OK: true})
	}
}

func (h videoHandler) readObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.NewMalformedPayloadError("video", err)
	}
	if len(body) > 0 {
		if contentType := r.Header.Get("Content-Type"); contentType != "" {
			if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/json" {
				return nil, errs.NewInvalidContentTypeError(contentType)
			}
		}
	}
	return catalog.DecodeObject(body)
}

func (h videoHandler) audit(r *http.Request) *zerolog.Event {
	email, _ := ctxGetAdminEmail(r.Context())
	return h.logger.Info().Str("admin", maskEmail(email))
}

// targetVideoID prefers the path id and falls back to the body's "id".
func targetVideoID(r *http.Request, raw map[string]json.RawMessage) (uuid.UUID, error) {
	idStr := strings.TrimSpace(chi.URLParam(r, "videoID"))
	if idStr == "" {
		var bodyID string
		if value, ok := raw["id"]; ok && json.Unmarshal(value, &bodyID) == nil {
			idStr = strings.TrimSpace(bodyID)
		}
	}
	if idStr == "" {
		return uuid.Nil, errs.NewMissingIdentifierError()
	}
	return parseVideoID(idStr)
}

// parseVideoID treats an unparsable id like an id that does not exist.
func parseVideoID(idStr string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(idStr))
	if err != nil {
		return uuid.Nil, errs.NewNotFound("video")
	}
	return id, nil
}
