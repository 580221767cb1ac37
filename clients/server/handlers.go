package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/xob0t/memocard/pkg/card"
	"github.com/xob0t/memocard/pkg/memo"
	"github.com/xob0t/memocard/pkg/notice"
	"github.com/xob0t/memocard/pkg/settings"
	"github.com/xob0t/memocard/pkg/style"
	"github.com/xob0t/memocard/pkg/workspace"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"settings": s.plugin.Settings().State().String(),
	})
}

type memoRequest struct {
	// Text is the selection of the calling editor. A missing field means the
	// caller has no active editor.
	Text *string `json:"text"`
}

func (s *Server) createMemo(c *gin.Context) {
	var req memoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws := workspace.None
	if req.Text != nil {
		ws = workspace.Static{Editor: workspace.Text(*req.Text)}
	}

	// Each request gets its own recorder so the response carries the one
	// notice this invocation produced.
	rec := &notice.Recorder{}
	res, err := s.plugin.Generate(c.Request.Context(), ws, notice.Multi{rec, s.plugin.Notifier()})
	if err != nil {
		c.JSON(memoStatus(err), gin.H{"error": err.Error(), "notice": rec.Last()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"path":   res.Path,
		"bytes":  res.Bytes,
		"width":  res.Width,
		"height": res.Height,
		"notice": rec.Last(),
	})
}

func memoStatus(err error) int {
	switch {
	case errors.Is(err, memo.ErrNoActiveEditor), errors.Is(err, memo.ErrNoSelection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type previewRequest struct {
	Text      string `json:"text"`
	MaxWidth  int    `json:"maxWidth"`
	MaxHeight int    `json:"maxHeight"`
}

func (s *Server) preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": card.ErrEmptyText.Error()})
		return
	}

	img, data, err := s.plugin.Render(c.Request.Context(), req.Text, s.plugin.Settings().Config())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	b := img.Bounds()
	if (req.MaxWidth > 0 && b.Dx() > req.MaxWidth) || (req.MaxHeight > 0 && b.Dy() > req.MaxHeight) {
		w, h := req.MaxWidth, req.MaxHeight
		if w <= 0 {
			w = b.Dx()
		}
		if h <= 0 {
			h = b.Dy()
		}
		thumb := imaging.Fit(img, w, h, imaging.Lanczos)
		if data, err = s.plugin.Encoder().Encode(thumb); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.Data(http.StatusOK, s.plugin.Encoder().MIMEType(), data)
}

func (s *Server) style(c *gin.Context) {
	desc := style.Resolve(s.plugin.Settings().Config())
	c.JSON(http.StatusOK, gin.H{"style": desc, "css": desc.CSS()})
}

func (s *Server) getSettings(c *gin.Context) {
	store := s.plugin.Settings()
	if store.State() != settings.StateLoaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": settings.ErrNotLoaded.Error()})
		return
	}
	c.JSON(http.StatusOK, store.Config())
}

type fieldView struct {
	settings.Field
	Value string `json:"value"`
}

func (s *Server) getFields(c *gin.Context) {
	cfg := s.plugin.Settings().Config()
	fields := settings.Fields()
	out := make([]fieldView, 0, len(fields))
	for _, f := range fields {
		v, _ := cfg.Get(f.Key)
		out = append(out, fieldView{Field: f, Value: v})
	}
	c.JSON(http.StatusOK, out)
}

type settingRequest struct {
	// Value is a string, or a JSON boolean for toggles.
	Value any `json:"value"`
}

func (s *Server) putSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var value string
	switch v := req.Value.(type) {
	case string:
		value = v
	case bool:
		value = fmt.Sprint(v)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be a string or boolean"})
		return
	}

	store := s.plugin.Settings()
	if err := store.Set(c.Request.Context(), c.Param("key"), value); err != nil {
		c.JSON(settingsStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, store.Config())
}

func (s *Server) resetSettings(c *gin.Context) {
	store := s.plugin.Settings()
	if err := store.Reset(c.Request.Context()); err != nil {
		c.JSON(settingsStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, store.Config())
}

func settingsStatus(err error) int {
	switch {
	case errors.Is(err, settings.ErrUnknownField):
		return http.StatusNotFound
	case errors.Is(err, settings.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, settings.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
