package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/content"
)

type navItem struct {
	Path  string
	Label string
}

var navItems = []navItem{
	{Path: "/", Label: "home"},
	{Path: "/projects", Label: "projects"},
	{Path: "/contact", Label: "contact"},
}

// page assembles the data every full page template needs.
func (h *Handler) page(c *gin.Context, extra gin.H) gin.H {
	dark, err := h.Theme.Dark(c.Request.Context(), visitorID(c))
	if err != nil {
		h.Logger.Warn("loading theme preference", zap.Error(err))
	}
	data := gin.H{
		"site":    h.Content.Site(),
		"dark":    dark,
		"path":    c.Request.URL.Path,
		"nav":     navItems,
		"tabs":    content.Tabs,
		"console": h.Console != nil,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

type experienceCard struct {
	content.Experience
	Tab      string
	Index    int
	Expanded bool
}

func experienceData(site *content.Site, tab string) gin.H {
	tab = content.NormalizeTab(tab)
	entries := site.ExperienceFor(tab)
	cards := make([]experienceCard, len(entries))
	for i, e := range entries {
		cards[i] = experienceCard{Experience: e, Tab: tab, Index: i}
	}
	return gin.H{"tabs": content.Tabs, "activeTab": tab, "cards": cards}
}

func (h *Handler) setupPageRoutes(r *gin.Engine) {
	// Home page route
	r.GET("/", func(c *gin.Context) {
		site := h.Content.Site()
		c.HTML(http.StatusOK, "index.html", h.page(c, gin.H{
			"title":      site.Profile.Name,
			"experience": experienceData(site, content.TabWork),
			"featured":   site.Featured(),
		}))
	})

	r.GET("/projects", func(c *gin.Context) {
		c.HTML(http.StatusOK, "projects.html", h.page(c, gin.H{
			"title":    "Projects",
			"projects": h.Content.Site().Projects,
		}))
	})

	r.GET("/contact", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", h.page(c, gin.H{
			"title":   "Get In Touch",
			"methods": h.Content.Site().Contact,
		}))
	})

	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", h.page(c, gin.H{
			"title":     "Privacy Policy",
			"retention": int(h.Privacy.Retention.Hours() / 24),
		}))
	})

	// Experience tabs; unknown tabs show work.
	r.GET("/fragments/experience", func(c *gin.Context) {
		c.HTML(http.StatusOK, "experience", experienceData(h.Content.Site(), c.Query("tab")))
	})

	// One experience card, expanded or collapsed.
	r.GET("/fragments/experience/:tab/:index", func(c *gin.Context) {
		tab := content.NormalizeTab(c.Param("tab"))
		entries := h.Content.Site().ExperienceFor(tab)
		i, err := strconv.Atoi(c.Param("index"))
		if err != nil || i < 0 || i >= len(entries) {
			c.String(http.StatusNotFound, "")
			return
		}
		expanded, _ := strconv.ParseBool(c.DefaultQuery("expanded", "false"))
		c.HTML(http.StatusOK, "experience-card", experienceCard{
			Experience: entries[i],
			Tab:        tab,
			Index:      i,
			Expanded:   expanded,
		})
	})

	// Skills detail panel. Selecting the open skill again closes it.
	r.GET("/fragments/skills/:name", func(c *gin.Context) {
		name := c.Param("name")
		if strings.EqualFold(c.Query("selected"), name) {
			c.HTML(http.StatusOK, "skill-detail", gin.H{})
			return
		}
		skill, ok := h.Content.Site().Skill(name)
		if !ok {
			c.String(http.StatusNotFound, "")
			return
		}
		c.HTML(http.StatusOK, "skill-detail", gin.H{"skill": skill})
	})

	r.POST("/theme/toggle", func(c *gin.Context) {
		dark, err := h.Theme.Toggle(c.Request.Context(), visitorID(c))
		if err != nil {
			h.Logger.Error("saving theme preference", zap.Error(err))
			c.Status(http.StatusInternalServerError)
			return
		}
		if c.GetHeader("HX-Request") == "true" {
			c.Header("HX-Trigger", `{"theme-changed":{"dark":`+strconv.FormatBool(dark)+`}}`)
			c.HTML(http.StatusOK, "theme-button", gin.H{"dark": dark})
			return
		}
		// Only the path of the referrer, so the redirect stays on this site.
		back := "/"
		if u, err := url.Parse(c.GetHeader("Referer")); err == nil && strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(u.Path, "//") {
			back = u.Path
		}
		c.Redirect(http.StatusSeeOther, back)
	})
}
