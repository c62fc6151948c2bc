// Package htmlify renders tweet text as HTML.
package htmlify

import (
	"regexp"
	"strings"
)

// Applied in order; the ampersand goes first so the entities added by the
// later pairs are not escaped twice.
var entities = [][2]string{
	{"&", "&amp;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{"'", "&apos;"},
	{`"`, "&quot;"},
}

var hashtagPattern = regexp.MustCompile(`#(\S+)(\s|$)`)

// Escape escapes & < > ' " and links every hashtag to its search page.
func Escape(text string) string {
	for _, e := range entities {
		text = strings.ReplaceAll(text, e[0], e[1])
	}
	return Linkify(text)
}

// Linkify wraps each hashtag of already-escaped text in an anchor, keeping the
// whitespace that terminated it.
func Linkify(escaped string) string {
	return hashtagPattern.ReplaceAllString(escaped, `<a class="hashtag" href="/hashtag/${1}">#${1}</a>${2}`)
}
