package applications

import (
	"embed"
	"html/template"
	"strconv"
	"time"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 MST")
	},
	"formatPercent": func(p float64) string {
		return strconv.FormatFloat(p, 'f', -1, 64)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).ParseFS(templateFiles, "templates/*.html"))
