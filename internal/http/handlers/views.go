package handlers

import (
	"time"

	"github.com/dustin/go-humanize"
	html "github.com/gofiber/template/html/v2"
)

// NewViews builds the template engine with the helpers every page uses.
func NewViews(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("money", func(v float64) string { return humanize.Ftoa(v) })
	engine.AddFunc("ago", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t)
	})
	engine.AddFunc("date", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	})
	return engine
}
