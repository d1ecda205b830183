package router

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-contrib/multitemplate"
)

// views are registered under their path relative to views/.
var views = []string{
	"index.html",
	"forum.html",
	"marketplace.html",
	"profile.html",
	"error.html",
	"auth/login.html",
	"auth/register.html",
	"post/detail.html",
	"post/create.html",
	"post/edit.html",
}

// LoadTemplates pairs every view with the base layout and shared includes.
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		panic(err)
	}
	includes, err := filepath.Glob(filepath.Join(templatesDir, "includes", "*.html"))
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		return append(files, filepath.Join(templatesDir, "views", view))
	}

	for _, view := range views {
		r.AddFromFilesFuncs(view, funcMap, assemble(view)...)
	}
	return r
}

var funcMap = template.FuncMap{
	"dict": func(values ...interface{}) (map[string]interface{}, error) {
		if len(values)%2 != 0 {
			return nil, fmt.Errorf("invalid dict call")
		}
		dict := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings")
			}
			dict[key] = values[i+1]
		}
		return dict, nil
	},
	"add": func(a, b int) int {
		return a + b
	},
	"timeAgo":    timeAgo,
	"formatTime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"price": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"upload": func(filename string) string {
		return "/uploads/" + url.PathEscape(filename)
	},
	"excerpt": func(s string, n int) string {
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		return string([]rune(s)[:n]) + "…"
	},
}

func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
