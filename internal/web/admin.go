package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/store"
)

const (
	adminCookie       = "admin_token"
	devAdminPassword  = "admin123"
	recentVisitorRows = 200
)

// adminAuthMiddleware checks the admin session cookie.
func (h *Handler) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// adminPassword returns the configured password. Debug builds fall back to
// a well-known one; release builds with no password cannot log in at all.
func (h *Handler) adminPassword() (string, bool) {
	if h.Admin.Password != "" {
		return h.Admin.Password, true
	}
	if h.Debug {
		h.Logger.Warn("using default admin password; set PORTFOLIO_ADMIN_PASSWORD")
		return devAdminPassword, true
	}
	return "", false
}

func (h *Handler) checkCredentials(username, password string) bool {
	want, ok := h.adminPassword()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.Admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(want)) == 1
	return userOK && passOK
}

// cleanupOldVisitorData drops visits older than the retention window.
func (h *Handler) cleanupOldVisitorData(ctx context.Context) int64 {
	if h.Store == nil {
		return 0
	}
	n, err := h.Store.PurgeVisitorsBefore(ctx, h.Now().Add(-h.Privacy.Retention))
	if err != nil {
		h.Logger.Error("error cleaning up old visitor data", zap.Error(err))
		return 0
	}
	if n > 0 {
		h.Logger.Info("privacy cleanup",
			zap.Int64("removed", n),
			zap.Duration("retention", h.Privacy.Retention))
	}
	return n
}

func (h *Handler) setupAdminRoutes(r *gin.Engine) {
	// Admin login page
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		client := h.hasher.hashIP(c.ClientIP())
		if !h.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			h.Logger.Warn("failed admin login attempt", zap.String("client", client))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, h.adminToken, 3600*24, "/admin", "", false, true)
		h.Logger.Info("admin login successful", zap.String("client", client))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		h.Logger.Info("admin logout", zap.String("client", h.hasher.hashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(h.adminAuthMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := h.Store.Stats(c.Request.Context(), h.Now())
		if err != nil {
			h.Logger.Error("error loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"title":    "Dashboard",
			"stats":    stats,
			"sessions": h.Console.Len(),
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := h.Store.Stats(c.Request.Context(), h.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visitors, err := h.Store.RecentVisitors(c.Request.Context(), recentVisitorRows)
		if err != nil {
			h.Logger.Error("error loading visitors", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"title":    "Visitors",
			"visitors": visitors,
		})
	})

	// Erase one visitor's records on request.
	adminGroup.DELETE("/visitors/:hash", func(c *gin.Context) {
		hash := c.Param("hash")
		n, err := h.Store.DeleteVisitor(c.Request.Context(), hash)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Visitor not found"})
			return
		}
		if err != nil {
			h.Logger.Error("error deleting visitor", zap.String("visitor", hash), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete visitor"})
			return
		}
		h.Logger.Info("visitor data deleted by admin",
			zap.String("visitor", hash),
			zap.Int64("rows", n),
			zap.String("client", h.hasher.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, gin.H{"message": "Visitor data deleted", "deleted": n})
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		n := h.cleanupOldVisitorData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "deleted": n})
	})

	// Statistics export for backups or analysis
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := h.Store.Stats(c.Request.Context(), h.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=portfolio-stats.json")
		h.Logger.Info("admin stats exported", zap.String("client", h.hasher.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})
}
