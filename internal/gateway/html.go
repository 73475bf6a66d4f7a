package gateway

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/omergehad405/EduMaster/internal/track"
)

// htmlBlocks flattens lesson HTML into ordered content blocks. Text without
// markup becomes one text block per paragraph.
func htmlBlocks(src string) []track.ContentBlock {
	if !strings.Contains(src, "<") {
		var out []track.ContentBlock
		for _, p := range splitParagraphs(src) {
			out = append(out, track.ContentBlock{Kind: track.BlockText, Text: p})
		}
		return out
	}

	b := &blockBuilder{kind: track.BlockText}
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			b.flush()
			return b.out
		case html.TextToken:
			b.text(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			b.start(tok)
		case html.EndTagToken:
			tok := z.Token()
			b.end(tok.DataAtom)
		}
	}
}

type blockBuilder struct {
	out      []track.ContentBlock
	kind     track.BlockKind
	language string
	buf      strings.Builder
	pre      int
}

func (b *blockBuilder) start(tok html.Token) {
	switch tok.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		b.open(track.BlockHeading)
	case atom.P, atom.Div, atom.Li, atom.Blockquote, atom.Section, atom.Article:
		if b.pre == 0 {
			b.open(track.BlockText)
		}
		if tok.DataAtom == atom.Li {
			b.buf.WriteString("• ")
		}
	case atom.Pre:
		b.open(track.BlockCode)
		b.pre++
	case atom.Code:
		if b.pre > 0 {
			b.language = languageOf(tok)
		}
	case atom.Br:
		b.buf.WriteString("\n")
	case atom.Img:
		b.flush()
		if src := attr(tok, "src"); src != "" {
			b.out = append(b.out, track.ContentBlock{Kind: track.BlockImage, Text: src})
		}
	}
}

func (b *blockBuilder) end(a atom.Atom) {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.P, atom.Div, atom.Li, atom.Blockquote, atom.Section, atom.Article:
		if b.pre == 0 {
			b.open(track.BlockText)
		}
	case atom.Pre:
		if b.pre > 0 {
			b.pre--
		}
		b.open(track.BlockText)
	}
}

func (b *blockBuilder) text(s string) {
	if b.pre > 0 {
		b.buf.WriteString(s)
		return
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			b.space()
		}
		return
	}
	if startsWithSpace(s) {
		b.space()
	}
	b.buf.WriteString(strings.Join(fields, " "))
	if endsWithSpace(s) {
		b.space()
	}
}

// space writes a single separating blank unless one is already pending.
func (b *blockBuilder) space() {
	cur := b.buf.String()
	if cur == "" || strings.HasSuffix(cur, " ") || strings.HasSuffix(cur, "\n") {
		return
	}
	b.buf.WriteString(" ")
}

// open flushes the pending block and starts a new one of kind k.
func (b *blockBuilder) open(k track.BlockKind) {
	b.flush()
	b.kind = k
}

func (b *blockBuilder) flush() {
	text := b.buf.String()
	b.buf.Reset()
	if b.kind == track.BlockCode {
		text = strings.Trim(text, "\n")
	} else {
		text = strings.TrimSpace(text)
	}
	lang := b.language
	b.language = ""
	if text == "" {
		return
	}
	blk := track.ContentBlock{Kind: b.kind, Text: text}
	if b.kind == track.BlockCode {
		blk.Language = lang
	}
	b.out = append(b.out, blk)
}

func languageOf(tok html.Token) string {
	for _, cls := range strings.Fields(attr(tok, "class")) {
		if lang, ok := strings.CutPrefix(cls, "language-"); ok {
			return lang
		}
		if lang, ok := strings.CutPrefix(cls, "lang-"); ok {
			return lang
		}
	}
	return ""
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[0]))
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[len(s)-1]))
}
