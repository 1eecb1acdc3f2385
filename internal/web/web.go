// Package web serves the portfolio: pages, HTMX fragments, the console
// widget endpoints, the contact form and the admin area.
package web

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/console"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/mail"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Mailer delivers contact-form messages.
type Mailer interface {
	Send(ctx context.Context, m mail.Message) error
}

// Deps is everything the handlers need.
type Deps struct {
	Content  *content.Provider
	Console  *console.Manager
	Theme    *theme.Preferences
	Store    *store.Store
	Mailer   Mailer
	Logger   *zap.Logger
	Admin    AdminConfig
	Privacy  PrivacyConfig
	Contact  ContactConfig
	Debug    bool
	Now      func() time.Time
	HashSalt string
}

// AdminConfig holds the admin login.
type AdminConfig struct {
	Username string
	Password string
}

// PrivacyConfig controls visit retention.
type PrivacyConfig struct {
	Retention time.Duration
}

// ContactConfig tunes the contact form.
type ContactConfig struct {
	RatePerMinute float64
}

// Handler holds the wired dependencies and the state the routes share.
type Handler struct {
	Deps
	hasher     *hasher
	limiter    *clientLimiter
	adminToken string
	bg         sync.WaitGroup
}

// New builds the handler. Zero-valued optional deps get defaults.
func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Contact.RatePerMinute <= 0 {
		d.Contact.RatePerMinute = 3
	}
	if d.Privacy.Retention <= 0 {
		d.Privacy.Retention = 365 * 24 * time.Hour
	}
	if d.Admin.Username == "" {
		d.Admin.Username = "admin"
	}
	if d.HashSalt == "" {
		d.HashSalt = randomToken()
	}
	h := &Handler{
		Deps:       d,
		hasher:     &hasher{salt: d.HashSalt},
		limiter:    newClientLimiter(d.Contact.RatePerMinute),
		adminToken: randomToken(),
	}
	d.Logger.Info("admin access available", zap.String("path", "/admin/login"))
	if d.Debug {
		d.Logger.Debug("admin token (dev only)", zap.String("token", h.adminToken))
	}
	d.Logger.Info("privacy: visitor tracking enabled with hashed IP addresses")
	return h
}

// Router wires every route onto a fresh gin engine.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(logging.GinRecovery(h.Logger), logging.GinLogger(h.Logger, h.hasher.hashIP))
	r.SetHTMLTemplate(template.Must(parseTemplates()))

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))

	r.Use(h.visitorIDMiddleware(), h.visitorTrackingMiddleware())

	h.setupPageRoutes(r)
	h.setupConsoleRoutes(r)
	h.setupContactRoutes(r)
	h.setupAdminRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "not-found.html", h.page(c, gin.H{"title": "Not Found"}))
	})
	return r
}

// Maintain runs the periodic jobs: privacy retention cleanup and rate
// limiter pruning. It returns when ctx is done.
func (h *Handler) Maintain(ctx context.Context, every time.Duration) {
	h.cleanupOldVisitorData(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.limiter.prune(h.Now())
			h.cleanupOldVisitorData(ctx)
		}
	}
}

// Wait blocks until background writes started by requests finish.
func (h *Handler) Wait() {
	h.bg.Wait()
}

// background runs f detached from the request so page latency never
// depends on the database.
func (h *Handler) background(f func(ctx context.Context)) {
	h.bg.Add(1)
	go func() {
		defer h.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		f(ctx)
	}()
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"external": func(href string) bool {
			return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
		},
	}).ParseFS(templateFS, "templates/*.html")
}
