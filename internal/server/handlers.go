package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/ironsheep/edgecam/internal/settings"
)

// Fixed response bodies.
const (
	bodyRunning = "Edge server running"
	bodyNoFrame = "no frame"
	maxPreview  = 4096
	minGrid     = 8
)

// settingsRequest is the body of POST /settings. Missing fields, or an empty
// body, fall back to low=0, high=0, enabled=true.
type settingsRequest struct {
	LowThreshold  *int  `json:"lowThreshold"`
	HighThreshold *int  `json:"highThreshold"`
	EdgesEnabled  *bool `json:"edgesEnabled"`
}

func (r settingsRequest) settings() settings.Settings {
	s := settings.Settings{EdgesEnabled: true}
	if r.LowThreshold != nil {
		s.LowThreshold = *r.LowThreshold
	}
	if r.HighThreshold != nil {
		s.HighThreshold = *r.HighThreshold
	}
	if r.EdgesEnabled != nil {
		s.EdgesEnabled = *r.EdgesEnabled
	}
	return s
}

// handleFrame serves the latest processed JPEG.
func (s *Server) handleFrame(c *gin.Context) {
	jpeg, ok := s.pub.Frame()
	if !ok {
		c.String(http.StatusNotFound, bodyNoFrame)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", jpeg)
}

// handleStatus reports the processing status.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.pub.Status().String()})
}

// handleSettings applies new detector settings.
func (s *Server) handleSettings(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.log.Debug("unreadable settings body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}

	// an empty body applies the defaults, like an empty object
	var req settingsRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := binding.JSON.BindBody(body, &req); err != nil {
			s.log.Debug("malformed settings body", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"ok": false})
			return
		}
	}

	next := req.settings()
	if err := s.settings.Apply(next); err != nil {
		s.log.Debug("rejected settings", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}

	s.log.Info("settings applied",
		zap.Int("low", next.LowThreshold),
		zap.Int("high", next.HighThreshold),
		zap.Bool("edges", next.EdgesEnabled))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleStats reports pipeline and render counters.
func (s *Server) handleStats(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.stats())
}

// handlePreview serves the last presented surface as JPEG, optionally
// resized to ?width= keeping the aspect ratio. ?grid=N overlays a labelled
// coordinate grid every N output pixels.
func (s *Server) handlePreview(c *gin.Context) {
	if s.preview == nil {
		c.String(http.StatusNotFound, "no preview")
		return
	}
	img := s.preview.Snapshot()
	if img == nil {
		c.String(http.StatusNotFound, "no preview")
		return
	}

	if w := c.Query("width"); w != "" {
		width, err := strconv.Atoi(w)
		if err != nil || width <= 0 || width > maxPreview {
			c.String(http.StatusBadRequest, "invalid width")
			return
		}
		img = imaging.Resize(img, width, 0, imaging.Linear)
	}
	if g := c.Query("grid"); g != "" {
		spacing, err := strconv.Atoi(g)
		if err != nil || spacing < minGrid || spacing > maxPreview {
			c.String(http.StatusBadRequest, "invalid grid")
			return
		}
		img = gridOverlay(img, spacing)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(s.cfg.PreviewQuality)); err != nil {
		s.log.Warn("preview encode failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "encode failed")
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}

// handleFallback answers every unknown route with a liveness message.
func (s *Server) handleFallback(c *gin.Context) {
	c.String(http.StatusOK, bodyRunning)
}
