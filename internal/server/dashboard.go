package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"themeforge/internal/auth"
	"themeforge/internal/models"
	"themeforge/internal/preview"
	"themeforge/internal/shared"
)

// ThemeReader is the read-only theme access the dashboard needs.
// Implemented by repositories.ThemeRepository.
type ThemeReader interface {
	List(criteria map[string]any) ([]*models.PersistedTheme, error)
	Get(id string) (*models.PersistedTheme, error)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} — ThemeForge</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
       margin: 0; background: #f5f5f5; color: #1a1a2e; }
header { background: #1a1a2e; color: #fff; padding: 1rem 2rem; display: flex; justify-content: space-between; }
header a { color: #e94560; text-decoration: none; }
main { max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { text-align: left; padding: 0.75rem 1rem; border-bottom: 1px solid #eee; }
iframe { width: 100%; height: 70vh; border: 1px solid #ddd; background: #fff; }
.btn { display: inline-block; background: #e94560; color: #fff; padding: 0.6rem 1.2rem;
       border-radius: 4px; text-decoration: none; }
.swatch { display: inline-block; width: 1em; height: 1em; border-radius: 2px; vertical-align: middle; }
</style>
</head>
<body>
<header><strong>ThemeForge</strong><nav><a href="/themes">Themes</a> · <a href="/logout">Log out</a></nav></header>
<main>{{template "content" .}}</main>
</body>
</html>`

const listTemplate = `{{define "content"}}
<h1>Your Themes</h1>
{{if not .Themes}}<p>No themes cached yet. Run a generation from the CLI to get started.</p>{{end}}
{{if .Themes}}
<table>
<tr><th>Name</th><th>Brand</th><th>Colors</th><th>Created</th></tr>
{{range .Themes}}
<tr>
<td><a href="/themes/{{.ID}}">{{.Name}}</a></td>
<td>{{.Brand}}</td>
<td><span class="swatch" style="background: {{.Primary}}"></span> <span class="swatch" style="background: {{.Secondary}}"></span></td>
<td>{{.Created}}</td>
</tr>
{{end}}
</table>
{{end}}
{{end}}`

const detailTemplate = `{{define "content"}}
<h1>{{.Name}}</h1>
<p>{{.Brand}} · {{.Shop}} · {{.FileCount}} files</p>
<iframe src="/preview/{{.ID}}" title="Theme preview"></iframe>
{{end}}`

const loginTemplate = `{{define "content"}}
<h1>Sign in</h1>
<p>Connect your shop to browse and preview generated themes.</p>
<a class="btn" href="/auth/start">Connect Shop</a>
{{end}}`

// Dashboard serves the local theme browser. Protected pages sit behind the
// coarse session guard and the fine token guard; the login page and logout
// do not.
type Dashboard struct {
	mux       *http.ServeMux
	lifecycle *auth.Lifecycle
	themes    ThemeReader
	logger    *log.Logger

	authStart http.Handler

	listPage   *template.Template
	detailPage *template.Template
	loginPage  *template.Template
}

// NewDashboard builds the dashboard over the given lifecycle and theme store.
// authStart, when non-nil, handles GET /auth/start to begin the OAuth flow.
func NewDashboard(lifecycle *auth.Lifecycle, session auth.SessionStore, themes ThemeReader, authStart http.Handler, logger *log.Logger) *Dashboard {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	d := &Dashboard{
		mux:        http.NewServeMux(),
		lifecycle:  lifecycle,
		themes:     themes,
		logger:     logger,
		authStart:  authStart,
		listPage:   template.Must(template.Must(template.New("page").Parse(pageTemplate)).Parse(listTemplate)),
		detailPage: template.Must(template.Must(template.New("page").Parse(pageTemplate)).Parse(detailTemplate)),
		loginPage:  template.Must(template.Must(template.New("page").Parse(pageTemplate)).Parse(loginTemplate)),
	}

	coarse := CoarseGuard(session, "/login")
	fine := NewFineGuard(lifecycle, "/login", logger).Middleware()
	protect := func(h http.HandlerFunc) http.Handler {
		return coarse(fine(h))
	}

	d.mux.Handle("/themes", protect(d.listThemes))
	d.mux.Handle("/themes/", protect(d.showTheme))
	d.mux.Handle("/preview/", protect(d.previewTheme))
	d.mux.HandleFunc("/login", d.login)
	d.mux.HandleFunc("/logout", d.logout)
	if authStart != nil {
		d.mux.Handle("/auth/start", authStart)
	}
	d.mux.HandleFunc("/", d.index)

	return d
}

// Routes returns the HTTP routes this handler serves.
func (d *Dashboard) Routes() []string {
	return []string{"/"}
}

func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mux.ServeHTTP(w, r)
}

func (d *Dashboard) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/themes", http.StatusSeeOther)
}

func (d *Dashboard) login(w http.ResponseWriter, r *http.Request) {
	d.render(w, d.loginPage, map[string]any{"Title": "Sign in"})
}

func (d *Dashboard) logout(w http.ResponseWriter, r *http.Request) {
	d.lifecycle.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (d *Dashboard) listThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := d.themes.List(map[string]any{})
	if err != nil {
		d.logger.Errorf("failed to list themes: %v", err)
		http.Error(w, "Failed to load themes", http.StatusInternalServerError)
		return
	}

	type row struct {
		ID, Name, Brand, Primary, Secondary, Created string
	}
	rows := make([]row, 0, len(themes))
	for _, t := range themes {
		rows = append(rows, row{
			ID:        t.ID(),
			Name:      t.Name(),
			Brand:     t.BrandName(),
			Primary:   safeColor(t.Colors().Primary),
			Secondary: safeColor(t.Colors().Secondary),
			Created:   t.CreatedAt().Format("2006-01-02"),
		})
	}

	d.render(w, d.listPage, map[string]any{"Title": "Themes", "Themes": rows})
}

func (d *Dashboard) showTheme(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/themes/")
	theme, err := d.themes.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	d.render(w, d.detailPage, map[string]any{
		"Title":     theme.Name(),
		"ID":        theme.ID(),
		"Name":      theme.Name(),
		"Brand":     theme.BrandName(),
		"Shop":      theme.ShopDomain(),
		"FileCount": len(theme.Files()),
	})
}

func (d *Dashboard) previewTheme(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/preview/")
	theme, err := d.themes.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	html := preview.Render(theme.Files(), preview.Options{
		ShopName: theme.BrandName(),
		Colors:   theme.Colors(),
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func (d *Dashboard) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		d.logger.Errorf("template render failed: %v", err)
	}
}

// safeColor admits only hex color literals into inline styles.
func safeColor(c string) string {
	if shared.IsHexColor(c) {
		return c
	}
	return "#cccccc"
}
