package webapp

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashokafoundation/website/internal/user"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// pageNames are the content templates; each is parsed together with the
// shared layout so pages cannot leak defines into each other.
var pageNames = []string{
	"home", "about", "contact",
	"login", "register", "dashboard",
	"404", "500",
}

// flash is a one-shot message surfaced on the next page load.
type flash struct {
	Level   string
	Message string
}

// encodeFlash packs a flash into a single cookie value.
func encodeFlash(level, message string) string {
	return level + "|" + message
}

func decodeFlash(raw string) *flash {
	level, message, ok := strings.Cut(raw, "|")
	if !ok {
		return &flash{Level: "info", Message: raw}
	}
	return &flash{Level: level, Message: message}
}

// viewData is the context every template renders with.
type viewData struct {
	Title  string
	User   *user.User
	Flash  *flash
	Form   map[string]string
	Errors map[string]string
	Error  string
	Next   string
	Year   int
}

type renderer struct {
	pages map[string]*template.Template
	log   *slog.Logger
}

func newRenderer(log *slog.Logger) (*renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("webapp: parse page %q: %w", name, err)
		}
		pages[name] = tmpl
	}
	if log == nil {
		log = slog.Default()
	}
	return &renderer{pages: pages, log: log}, nil
}

// render writes a full page. The template executes into a buffer first so a
// render failure never emits a half-written body.
func (rnd *renderer) render(w http.ResponseWriter, r *http.Request, status int, page string, data viewData) {
	tmpl, ok := rnd.pages[page]
	if !ok {
		rnd.log.ErrorContext(r.Context(), "unknown page template", slog.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data.Form == nil {
		data.Form = map[string]string{}
	}
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}
	data.Year = time.Now().Year()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		rnd.log.ErrorContext(r.Context(), "render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
