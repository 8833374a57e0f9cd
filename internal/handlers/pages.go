package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/HammerMeetNail/braincast/internal/assets"
	"github.com/HammerMeetNail/braincast/internal/logging"
)

type PageHandler struct {
	templates *template.Template
	appURL    string
	manifest  *assets.Manifest
}

// NewPageHandler parses the page templates. A nil manifest serves
// unfingerprinted assets.
func NewPageHandler(templatesDir, appURL string, manifest *assets.Manifest) (*PageHandler, error) {
	templates, err := template.ParseGlob(filepath.Join(templatesDir, "*.html"))
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		manifest = assets.NewManifest("")
	}
	return &PageHandler{templates: templates, appURL: strings.TrimRight(appURL, "/"), manifest: manifest}, nil
}

type PageData struct {
	Title string
	CSS   string
	JS    string
	// Embed is the mini app descriptor the social client reads from the
	// page head.
	Embed string
}

type miniAppEmbed struct {
	Version  string        `json:"version"`
	ImageURL string        `json:"imageUrl"`
	Button   miniAppButton `json:"button"`
}

type miniAppButton struct {
	Title  string        `json:"title"`
	Action miniAppAction `json:"action"`
}

type miniAppAction struct {
	Type string `json:"type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

var pageTitles = map[string]string{
	"/login":   "Sign in",
	"/profile": "Your profile",
	"/social":  "Friends & challenges",
	"/create":  "Create a quiz",
	"/admin":   "Admin",
}

func pageTitle(path string) string {
	if strings.HasPrefix(path, "/quiz/") {
		return "Play quiz · BrainCast"
	}
	for prefix, title := range pageTitles {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return title + " · BrainCast"
		}
	}
	return "BrainCast"
}

func (h *PageHandler) embed(path string) string {
	data, _ := json.Marshal(miniAppEmbed{
		Version:  "1",
		ImageURL: h.appURL + "/static/embed.png",
		Button: miniAppButton{
			Title: "Play on BrainCast",
			Action: miniAppAction{
				Type: "launch_miniapp",
				Name: "BrainCast",
				URL:  h.appURL + path,
			},
		},
	})
	return string(data)
}

// Index serves the application shell for every page route. Client-side
// routing renders the page itself.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html", PageData{
		Title: pageTitle(r.URL.Path),
		Embed: h.embed(r.URL.Path),
	})
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404.html", PageData{Title: "Not found · BrainCast"})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	data.CSS = h.manifest.Path("app.css")
	data.JS = h.manifest.Path("app.js")
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logging.FromContext(r.Context()).Error("Template error", logging.Fields{"template": name, "error": err.Error()})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
