package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vibecurator/internal/catalog"
)

// defaultSearchLimit is the result cap applied when the client sends
// no limit parameter.
const defaultSearchLimit = 20

// SongItem is the wire form of one catalogue track.
type SongItem struct {
	SongID    int64  `json:"song_id"`
	SongName  string `json:"song_name"`
	Artist    string `json:"artist"`
	Genre     string `json:"genre"`
	IssueYear *int   `json:"issue_year"`
}

// SongResponse wraps a single track lookup.
type SongResponse struct {
	Song SongItem `json:"song"`
}

// SearchResponse carries catalogue search results. Total counts the
// returned items, not every match in the catalogue.
type SearchResponse struct {
	Query string     `json:"query"`
	Total int        `json:"total"`
	Items []SongItem `json:"items"`
}

// SongHandler serves catalogue lookups and search. The registry may be
// nil when the catalogue never loaded; both endpoints answer 503 then.
type SongHandler struct {
	catalog *catalog.Registry
}

// NewSongHandler creates a song handler over the loaded catalogue.
func NewSongHandler(cat *catalog.Registry) *SongHandler {
	return &SongHandler{catalog: cat}
}

func songItem(t *catalog.Track) SongItem {
	return SongItem{
		SongID:    t.ID,
		SongName:  t.Name,
		Artist:    t.Artist,
		Genre:     t.Genre,
		IssueYear: t.IssueYear,
	}
}

// GetSong handles GET /songs/:id
func (h *SongHandler) GetSong(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Song id must be an integer",
		})
		return
	}

	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Metadata not loaded",
		})
		return
	}

	track, ok := h.catalog.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Song not found: %d", id),
		})
		return
	}

	c.JSON(http.StatusOK, SongResponse{Song: songItem(track)})
}

// SearchSongs handles GET /search
func (h *SongHandler) SearchSongs(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter q is required",
		})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be an integer",
			})
			return
		}
		if n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be between 1 and 100",
			})
			return
		}
		limit = n
	}

	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Metadata not loaded",
		})
		return
	}

	tracks := h.catalog.Search(query, limit)
	items := make([]SongItem, 0, len(tracks))
	for _, t := range tracks {
		items = append(items, songItem(t))
	}

	c.JSON(http.StatusOK, SearchResponse{
		Query: query,
		Total: len(items),
		Items: items,
	})
}
