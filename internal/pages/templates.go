package pages

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/event-master/backend/internal/feedback"
	"github.com/event-master/backend/internal/models"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"roles": func() []models.Role { return models.Roles },
	"tabs": func() []models.EventFilter {
		return []models.EventFilter{models.FilterUpcoming, models.FilterCompleted, models.FilterAll}
	},
	"ratings": func() []int {
		out := make([]int, 0, feedback.MaxRating-feedback.MinRating+1)
		for r := feedback.MaxRating; r >= feedback.MinRating; r-- {
			out = append(out, r)
		}
		return out
	},
	"date":  func(t time.Time) string { return t.Format(time.DateOnly) },
	"clock": func(t time.Time) string { return t.Format("15:04") },
	"rating": func(avg *float64) string {
		if avg == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f", *avg)
	},
	"percent": func(v float64) string { return fmt.Sprintf("%.0f%%", v) },
}

// Templates parses the embedded page templates. Each page is addressed by its file name.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(funcs).ParseFS(files, "templates/*.html")
}
