package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	policy.AllowImages()
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts user-supplied markdown to sanitised HTML.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		// never fall back to raw input: it has not been sanitised
		return template.HTML(template.HTMLEscapeString(source))
	}
	return EnhanceHTMLContent(string(policy.SanitizeBytes(buf.Bytes())))
}

// MarkdownRenderer memoises RenderMarkdown per content version.
type MarkdownRenderer struct {
	cache *Cache[template.HTML]
	ttl   time.Duration
}

func NewMarkdownRenderer(size int, ttl time.Duration) (*MarkdownRenderer, error) {
	c, err := NewCache[template.HTML](size)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{cache: c, ttl: ttl}, nil
}

// Render returns the HTML for source. version must change whenever source
// does (an id plus an update timestamp works).
func (r *MarkdownRenderer) Render(kind string, id uint, version time.Time, source string) template.HTML {
	key := fmt.Sprintf("%s:%d:%d", kind, id, version.UnixNano())
	if out, ok := r.cache.Get(key); ok {
		return out
	}
	out := RenderMarkdown(source)
	r.cache.Set(key, out, r.ttl)
	return out
}
