package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/console"
)

type consoleData struct {
	ID        string
	View      console.View
	ExitDelay int64
}

func (h *Handler) renderConsole(c *gin.Context, status int, id string, view console.View) {
	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(status, gin.H{"id": id, "view": view})
	default:
		// A closed widget renders as nothing; the host slot empties.
		if view.Closed {
			c.String(status, "")
			return
		}
		c.HTML(status, "console", consoleData{
			ID:        id,
			View:      view,
			ExitDelay: h.Console.ExitDelay().Milliseconds(),
		})
	}
}

// consoleGone answers requests for sessions that no longer exist.
func (h *Handler) consoleGone(c *gin.Context) {
	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(http.StatusNotFound, gin.H{"error": console.ErrSessionNotFound.Error()})
	default:
		// HTMX swaps 2xx only; an empty 200 removes the widget.
		c.String(http.StatusOK, "")
	}
}

func (h *Handler) consoleEvent(c *gin.Context, fn func(*console.Session)) {
	id := c.Param("id")
	view, err := h.Console.Do(id, fn)
	if errors.Is(err, console.ErrSessionNotFound) {
		h.consoleGone(c)
		return
	}
	if err != nil {
		h.Logger.Error("console event", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	h.renderConsole(c, http.StatusOK, id, view)
}

func (h *Handler) setupConsoleRoutes(r *gin.Engine) {
	g := r.Group("/console")

	// Mount a fresh widget.
	g.POST("", func(c *gin.Context) {
		id, view := h.Console.Mount()
		h.renderConsole(c, http.StatusCreated, id, view)
	})

	g.GET("/:id", func(c *gin.Context) {
		h.consoleEvent(c, nil)
	})

	g.POST("/:id/submit", func(c *gin.Context) {
		raw := c.PostForm("input")
		var (
			accepted bool
			elevated bool
			name     string
		)
		h.consoleEvent(c, func(s *console.Session) {
			elevated = s.Elevated()
			name = commandWord(s.Registry(), raw)
			accepted = s.Submit(raw)
		})
		if accepted {
			h.recordCommand(name, elevated)
		}
	})

	g.POST("/:id/history/:dir", func(c *gin.Context) {
		var step func(*console.Session)
		switch c.Param("dir") {
		case "prev":
			step = (*console.Session).HistoryPrev
		case "next":
			step = (*console.Session).HistoryNext
		default:
			c.String(http.StatusBadRequest, "history direction must be prev or next")
			return
		}
		// The browser owns the text field; adopt its draft before stepping.
		draft, sent := c.GetPostForm("input")
		h.consoleEvent(c, func(s *console.Session) {
			if sent {
				s.SetInput(draft)
			}
			step(s)
		})
	})

	g.POST("/:id/pointer", func(c *gin.Context) {
		target := console.ParseTarget(c.Query("target"))
		h.consoleEvent(c, func(s *console.Session) { s.PointerDown(target) })
	})

	g.DELETE("/:id", func(c *gin.Context) {
		h.Console.Unmount(c.Param("id"))
		c.Status(http.StatusOK)
	})
}

// commandWord classifies raw against the session's own registry.
// Unknown words are grouped so visitors' free text never lands on disk.
func commandWord(reg *console.Registry, raw string) string {
	toks := console.Tokens(raw)
	switch {
	case len(toks) == 0:
		return "(unknown)"
	case len(toks) == 2 && toks[0] == "sudo" && toks[1] == "exit":
		return "sudo exit"
	case toks[0] == "rm" || toks[0] == "drop":
		return toks[0]
	}
	if _, ok := reg.Lookup(toks[0]); ok {
		return toks[0]
	}
	return "(unknown)"
}

// recordCommand counts the command word for the admin dashboard.
func (h *Handler) recordCommand(name string, elevated bool) {
	at := h.Now()
	h.background(func(ctx context.Context) {
		if err := h.Store.RecordCommand(ctx, name, elevated, at); err != nil {
			h.Logger.Warn("error recording console command", zap.Error(err))
		}
	})
}
