package sink

import (
	"regexp"
	"strings"

	"clipwatch/pkg/watcher"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rs/zerolog"
)

var htmlTag = regexp.MustCompile(`(?i)<(html|body|div|p|span|a|ul|ol|li|table|tr|td|th|h[1-6]|br|strong|em|b|i|code|pre|blockquote)[\s>/]`)

// LooksLikeHTML reports whether s appears to be an HTML fragment.
func LooksLikeHTML(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "<") && htmlTag.MatchString(t)
}

// Markdown converts HTML-looking values to Markdown before passing the
// change on. Other values, and values that fail to convert, pass through
// unchanged.
type Markdown struct {
	Next watcher.Sink
	conv *converter.Converter
	log  zerolog.Logger
}

func NewMarkdown(next watcher.Sink, log zerolog.Logger) *Markdown {
	return &Markdown{
		Next: next,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				strikethrough.NewStrikethroughPlugin(),
				table.NewTablePlugin(),
			),
		),
		log: log,
	}
}

func (m *Markdown) ContentChanged(c watcher.Change) {
	if LooksLikeHTML(c.Value) {
		md, err := m.conv.ConvertString(c.Value)
		if err != nil {
			m.log.Warn().Err(err).Msg("html to markdown conversion failed")
		} else {
			c.Value = strings.TrimSpace(md)
		}
	}
	m.Next.ContentChanged(c)
}
