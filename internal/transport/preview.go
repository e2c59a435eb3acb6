package transport

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/chessnote/internal/domain/game"
)

const (
	defaultAppTitle       = "Cloud Chess Note - 雲端棋譜筆記"
	defaultAppDescription = "隨時隨地紀錄、分析、分享您的精采對局。"
	defaultRedName        = "紅方"
	defaultBlackName      = "黑方"
)

var previewPage = template.Must(template.New("preview").Parse(`<!doctype html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
{{- if .URL}}
<meta property="og:url" content="{{.URL}}">
{{- end}}
<meta property="twitter:title" content="{{.Title}}">
<meta property="twitter:description" content="{{.Description}}">
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
{{- if .FEN}}
<pre>{{.FEN}}</pre>
{{- end}}
</body>
</html>
`))

type previewView struct {
	Title       string
	Description string
	URL         string
	FEN         string
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	viewerID, _ := OwnerFromContext(r.Context())

	p, err := s.previews.Preview(r.Context(), viewerID, id)
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"
		switch {
		case errors.Is(err, game.ErrGameNotFound):
			status, message = http.StatusNotFound, "game not found"
		case errors.Is(err, game.ErrInvalidInput):
			status, message = http.StatusBadRequest, "invalid game id"
		default:
			s.logger.Error("share preview failed", "game_id", id, "error", err)
		}
		w.Header().Set("Cache-Control", "no-store")
		if wantsHTML(r) {
			s.renderPreview(w, status, previewView{Title: s.appName, Description: defaultAppDescription})
			return
		}
		writeJSON(w, status, errorBody{Error: message})
		return
	}

	if p.IsPublic {
		w.Header().Set("Cache-Control", "s-maxage=60, stale-while-revalidate")
	} else {
		w.Header().Set("Cache-Control", "private, no-store")
	}
	if wantsHTML(r) {
		s.renderPreview(w, http.StatusOK, s.previewView(p))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// previewView titles the page from metadata, then the record title, and
// describes it by the two players when a title is known.
func (s *Server) previewView(p *game.Preview) previewView {
	view := previewView{
		Title:       s.appName,
		Description: defaultAppDescription,
		URL:         p.ShareURL,
		FEN:         p.FEN,
	}
	title := metaString(p.Metadata, "title")
	if title == "" {
		title = p.Title
	}
	if title == "" {
		return view
	}
	red := firstNonEmpty(metaString(p.Metadata, "red"), metaString(p.Metadata, "redName"), defaultRedName)
	black := firstNonEmpty(metaString(p.Metadata, "black"), metaString(p.Metadata, "blackName"), defaultBlackName)
	view.Title = title
	view.Description = fmt.Sprintf("%s vs %s - 點擊查看完整棋譜", red, black)
	return view
}

func (s *Server) renderPreview(w http.ResponseWriter, status int, view previewView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := previewPage.Execute(w, view); err != nil {
		s.logger.Error("render share preview", "error", err)
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func metaString(md map[string]any, key string) string {
	v, _ := md[key].(string)
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
