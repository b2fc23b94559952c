package tikrelay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// Server is the HTTP handler layer: it validates input URLs, resolves
// metadata through the Client, and relays media byte streams. Stateless;
// one request is handled independently of any other.
type Server struct {
	client *Client
	naming NamingPolicy
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer wires the routes. A nil logger discards.
func NewServer(client *Client, naming NamingPolicy, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		client: client,
		naming: naming,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleDocs)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /info", s.handleInfo)
	s.mux.HandleFunc("GET /thumbnails", s.handleThumbnails)
	s.mux.HandleFunc("GET /download/video", s.handleDownloadVideo)
	s.mux.HandleFunc("GET /download/audio", s.handleDownloadAudio)
	s.mux.HandleFunc("GET /download/thumbnail", s.handleDownloadThumbnail)
	s.mux.HandleFunc("/", s.handleNotFound)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Info("request served", "method", r.Method, "path", r.URL.Path, "status", rec.status)
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out; an encode failure here has no recovery.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, short, message string) {
	writeJSON(w, status, errorBody{Error: short, Message: message})
}

// writeFetchError maps a resolver error onto the HTTP error contract:
// invalid input 400, absent content 404, unreachable or throttled
// upstreams 502, anything else 500.
func (s *Server) writeFetchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "Invalid TikTok URL",
			"Please provide a valid TikTok URL")
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoMedia):
		writeError(w, http.StatusNotFound, "Failed to fetch video information",
			"The video might be private, deleted, or the URL is invalid. Please check the URL and try again.")
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrRateLimited):
		writeError(w, http.StatusBadGateway, "Upstream providers unavailable",
			"Every metadata provider failed to answer. This is usually temporary; try again shortly.")
	default:
		s.logger.Error("unhandled resolver error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

// requireURL extracts the url query parameter, writing a 400 when absent.
func requireURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "Missing 'url' parameter",
			"Please provide a TikTok URL")
		return "", false
	}
	return rawURL, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "tiktok-relay",
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Endpoint not found",
		"Please check the API documentation at '/'")
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURL(w, r)
	if !ok {
		return
	}

	meta, err := s.client.GetVideoInfo(r.Context(), rawURL)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}

	escaped := url.QueryEscape(rawURL)
	writeJSON(w, http.StatusOK, infoResponse{
		Success: true,
		Data: infoData{
			ID:        meta.ID,
			Title:     meta.Title,
			Duration:  meta.Duration,
			Author:    authorJSON{Username: meta.Author.Username, Nickname: meta.Author.Nickname, Avatar: meta.Author.AvatarURL},
			Stats:     statsJSON{Views: meta.Stats.Views, Likes: meta.Stats.Likes, Comments: meta.Stats.Comments, Shares: meta.Stats.Shares},
			CreatedAt: meta.CreatedAt.Unix(),
			HasVideo:  meta.HasVideo(),
			HasAudio:  meta.HasAudio(),
			Thumbnails: thumbnailsJSON{
				Cover:        meta.Thumbnails.Cover,
				OriginCover:  meta.Thumbnails.OriginCover,
				DynamicCover: meta.Thumbnails.DynamicCover,
			},
			DownloadURLs: downloadURLs{
				Video:          "/download/video?url=" + escaped,
				Audio:          "/download/audio?url=" + escaped,
				Thumbnail:      "/download/thumbnail?url=" + escaped,
				ThumbnailsInfo: "/thumbnails?url=" + escaped,
			},
		},
	})
}

func (s *Server) handleThumbnails(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURL(w, r)
	if !ok {
		return
	}

	meta, err := s.client.GetVideoInfo(r.Context(), rawURL)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}

	escaped := url.QueryEscape(rawURL)
	writeJSON(w, http.StatusOK, thumbnailsResponse{
		Success: true,
		Data: thumbnailsData{
			Cover:        meta.Thumbnails.Cover,
			OriginCover:  meta.Thumbnails.OriginCover,
			DynamicCover: meta.Thumbnails.DynamicCover,
			DownloadURLs: thumbnailLinks{
				Cover:        "/download/thumbnail?url=" + escaped + "&quality=high",
				OriginCover:  "/download/thumbnail?url=" + escaped + "&quality=medium",
				DynamicCover: "/download/thumbnail?url=" + escaped + "&quality=low",
			},
		},
	})
}

func (s *Server) handleDownloadVideo(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURL(w, r)
	if !ok {
		return
	}

	meta, err := s.client.GetVideoInfo(r.Context(), rawURL)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	if !meta.HasVideo() {
		writeError(w, http.StatusNotFound, "Video URL not found",
			"This video may not be available for download")
		return
	}

	s.relay(w, r, meta.VideoURL, s.naming.Filename(meta, "", "mp4"), "video/mp4")
}

func (s *Server) handleDownloadAudio(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURL(w, r)
	if !ok {
		return
	}

	meta, err := s.client.GetVideoInfo(r.Context(), rawURL)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	if !meta.HasAudio() {
		writeError(w, http.StatusNotFound, "Audio URL not found",
			"This video may not have extractable audio")
		return
	}

	s.relay(w, r, meta.AudioURL, s.naming.Filename(meta, "", "mp3"), "audio/mpeg")
}

func (s *Server) handleDownloadThumbnail(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURL(w, r)
	if !ok {
		return
	}
	quality := ParseQuality(r.URL.Query().Get("quality"))

	meta, err := s.client.GetVideoInfo(r.Context(), rawURL)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}

	thumbURL := meta.ThumbnailURL(quality)
	if thumbURL == "" {
		writeError(w, http.StatusNotFound, "Thumbnail URL not found",
			"This video may not have available thumbnails")
		return
	}

	s.relay(w, r, thumbURL, s.naming.Filename(meta, string(quality), "jpg"), "image/jpeg")
}

// relay forwards an upstream media stream to the caller chunk-by-chunk
// without buffering. The upstream request is bound to the caller's context,
// so a disconnecting caller tears down the upstream connection. A
// mid-stream upstream failure cannot change the already-sent status, but it
// is logged with the byte count instead of being swallowed.
func (s *Server) relay(w http.ResponseWriter, r *http.Request, mediaURL, filename, contentType string) {
	resp, err := s.client.OpenStream(r.Context(), mediaURL)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		s.logger.Error("media relay interrupted",
			"filename", filename, "bytes_written", n, "err", err)
		return
	}
	s.logger.Debug("media relayed", "filename", filename, "bytes", n)
}

// Caller-facing JSON shapes.

type infoResponse struct {
	Success bool     `json:"success"`
	Data    infoData `json:"data"`
}

type infoData struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Duration     int            `json:"duration"`
	Author       authorJSON     `json:"author"`
	Stats        statsJSON      `json:"stats"`
	CreatedAt    int64          `json:"created_at"`
	HasVideo     bool           `json:"has_video"`
	HasAudio     bool           `json:"has_audio"`
	Thumbnails   thumbnailsJSON `json:"thumbnails"`
	DownloadURLs downloadURLs   `json:"download_urls"`
}

type authorJSON struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type statsJSON struct {
	Views    int `json:"views"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

type thumbnailsJSON struct {
	Cover        string `json:"cover"`
	OriginCover  string `json:"origin_cover"`
	DynamicCover string `json:"dynamic_cover"`
}

type downloadURLs struct {
	Video          string `json:"video"`
	Audio          string `json:"audio"`
	Thumbnail      string `json:"thumbnail"`
	ThumbnailsInfo string `json:"thumbnails_info"`
}

type thumbnailsResponse struct {
	Success bool           `json:"success"`
	Data    thumbnailsData `json:"data"`
}

type thumbnailsData struct {
	Cover        string         `json:"cover"`
	OriginCover  string         `json:"origin_cover"`
	DynamicCover string         `json:"dynamic_cover"`
	DownloadURLs thumbnailLinks `json:"download_urls"`
}

type thumbnailLinks struct {
	Cover        string `json:"cover"`
	OriginCover  string `json:"origin_cover"`
	DynamicCover string `json:"dynamic_cover"`
}

func (s *Server) handleDocs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "TikTok Downloader API",
		"version":     "1.0",
		"description": "Download TikTok videos and audio without saving on server",
		"endpoints": map[string]any{
			"/info": map[string]any{
				"method":      "GET",
				"description": "Get video information",
				"parameters":  map[string]string{"url": "TikTok video URL (required)"},
				"example":     "/info?url=https://www.tiktok.com/@username/video/1234567890",
			},
			"/download/video": map[string]any{
				"method":      "GET",
				"description": "Download video file",
				"parameters":  map[string]string{"url": "TikTok video URL (required)"},
				"example":     "/download/video?url=https://www.tiktok.com/@username/video/1234567890",
			},
			"/download/audio": map[string]any{
				"method":      "GET",
				"description": "Download audio file",
				"parameters":  map[string]string{"url": "TikTok video URL (required)"},
				"example":     "/download/audio?url=https://www.tiktok.com/@username/video/1234567890",
			},
			"/download/thumbnail": map[string]any{
				"method":      "GET",
				"description": "Download video thumbnail image",
				"parameters": map[string]string{
					"url":     "TikTok video URL (required)",
					"quality": "Thumbnail quality: 'high', 'medium', 'low' (optional, default: 'high')",
				},
				"example": "/download/thumbnail?url=https://www.tiktok.com/@username/video/1234567890&quality=high",
			},
			"/thumbnails": map[string]any{
				"method":      "GET",
				"description": "Get all available thumbnail URLs",
				"parameters":  map[string]string{"url": "TikTok video URL (required)"},
				"example":     "/thumbnails?url=https://www.tiktok.com/@username/video/1234567890",
			},
			"/health": map[string]any{
				"method":      "GET",
				"description": "Liveness check",
			},
		},
		"supported_formats": []string{
			"https://www.tiktok.com/@username/video/1234567890",
			"https://vm.tiktok.com/ZMxxxxxx/",
			"https://vt.tiktok.com/ZSxxxxxx/",
		},
	})
}
