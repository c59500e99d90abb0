package terminal

import (
	"strings"

	"golang.org/x/net/html"
)

// chromeClasses mark frame elements that have no meaning in a terminal.
var chromeClasses = map[string]bool{
	"slide-navigation": true,
	"slide-indicators": true,
	"slide-progress":   true,
	"reload-btn":       true,
}

// Text converts rendered slide markup into plain terminal text. Headings
// are underlined, list items get bullets and frame controls are dropped.
func Text(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))

	var (
		b       strings.Builder
		line    strings.Builder
		skip    int
		heading string
	)
	flush := func() {
		text := strings.Join(strings.Fields(line.String()), " ")
		line.Reset()
		if text == "" {
			return
		}
		b.WriteString(text)
		b.WriteByte('\n')
		switch heading {
		case "h1":
			b.WriteString(strings.Repeat("=", len([]rune(text))) + "\n")
		case "h2", "h3":
			b.WriteString(strings.Repeat("-", len([]rune(text))) + "\n")
		}
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			flush()
			return strings.TrimRight(b.String(), "\n")

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if skip > 0 {
				if tt == html.StartTagToken && !voidTags[tag] {
					skip++
				}
				continue
			}
			if hasAttr && isChrome(z) || tag == "script" || tag == "style" || tag == "button" {
				if tt == html.StartTagToken && !voidTags[tag] {
					skip = 1
				}
				continue
			}
			switch tag {
			case "h1", "h2", "h3":
				flush()
				heading = tag
			case "li":
				flush()
				line.WriteString("  * ")
			case "img":
				line.WriteString(" [image] ")
			case "mark":
				line.WriteString("*")
			default:
				if blockTags[tag] {
					flush()
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skip > 0 {
				skip--
				continue
			}
			switch tag {
			case "h1", "h2", "h3":
				flush()
				heading = ""
			case "mark":
				line.WriteString("*")
			case "span", "td", "th":
				line.WriteString(" ")
			default:
				if blockTags[tag] || tag == "li" {
					flush()
				}
			}

		case html.TextToken:
			if skip == 0 {
				line.Write(z.Text())
			}
		}
	}
}

func isChrome(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" {
			for _, c := range strings.Fields(string(val)) {
				if chromeClasses[c] {
					return true
				}
			}
		}
		if !more {
			return false
		}
	}
}

var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true, "link": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true, "ul": true, "ol": true,
	"table": true, "tr": true, "pre": true, "blockquote": true, "details": true,
	"summary": true, "section": true, "article": true,
}
