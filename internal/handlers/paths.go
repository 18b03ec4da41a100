package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eliaswendt/mcfp-optimizer/internal/itinerary"
	"github.com/eliaswendt/mcfp-optimizer/internal/models"
	"github.com/eliaswendt/mcfp-optimizer/internal/repository"
)

// GroupPathRepository defines the interface for group path lookups
type GroupPathRepository interface {
	GetGroupPath(ctx context.Context, groupID int64) (*models.GroupRow, error)
	Ping(ctx context.Context) error
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PathHandler handles HTTP requests for group travel plans
type PathHandler struct {
	repo GroupPathRepository
	now  func() time.Time
}

// NewPathHandler creates a new handler with the given repository
func NewPathHandler(repo GroupPathRepository) *PathHandler {
	return &PathHandler{repo: repo, now: time.Now}
}

// GetGroupPath handles GET /api/groups/{groupId}/path
// format=json (default), text or gtfsrt
func (h *PathHandler) GetGroupPath(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawID := chi.URLParam(r, "groupId")

	groupID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error: "groupId must be an integer",
			Details: map[string]interface{}{
				"groupId": rawID,
			},
		})
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "text", "gtfsrt":
	default:
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error: "Unsupported format",
			Details: map[string]interface{}{
				"format": format,
			},
		})
		return
	}

	row, err := h.repo.GetGroupPath(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			writeError(w, http.StatusNotFound, ErrorResponse{
				Error: "Group id not found",
				Details: map[string]interface{}{
					"groupId": groupID,
				},
			})
			return
		}

		writeError(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to retrieve group path",
			Details: map[string]interface{}{
				"internal": err.Error(),
			},
		})
		return
	}

	it, err := itinerary.Decode(row.Path)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Malformed group path",
			Details: map[string]interface{}{
				"groupId":  groupID,
				"internal": err.Error(),
			},
		})
		return
	}

	switch format {
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := it.Write(w); err != nil {
			log.Printf("Error writing path of group %d: %v", groupID, err)
		}
	case "gtfsrt":
		data, err := itinerary.MarshalFeed(groupID, it, h.now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, ErrorResponse{
				Error: "Failed to encode feed",
				Details: map[string]interface{}{
					"internal": err.Error(),
				},
			})
			return
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(models.NewGroupPath(*row, it))
	}
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
