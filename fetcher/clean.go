package fetcher

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"reddit-persona/models"
)

// minCommentChars 이하 길이의 댓글은 분석 가치가 없어 버린다.
const minCommentChars = 10

func isRemovedText(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "[deleted]", "[removed]":
		return true
	}
	return false
}

// cleanText 는 Reddit 마크다운에 남아 있는 HTML 엔티티를 복원하고 공백을 정리한다.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

// normalize 는 레코드를 정리하고, 분석 대상에서 제외할 레코드면 false 를 반환한다.
func normalize(rec models.ActivityRecord) (models.ActivityRecord, bool) {
	rec.Title = cleanText(rec.Title)
	rec.Body = cleanText(rec.Body)
	rec.Subreddit = strings.TrimPrefix(strings.TrimSpace(rec.Subreddit), "r/")

	switch rec.Kind {
	case models.KindPost:
		if isRemovedText(rec.Title) {
			return rec, false
		}
		if isRemovedText(rec.Body) {
			rec.Body = ""
		}
	default:
		if isRemovedText(rec.Body) || utf8.RuneCountInString(rec.Body) <= minCommentChars {
			return rec, false
		}
	}
	return rec, true
}

// htmlToText 는 피드 본문 HTML 을 일반 텍스트로 변환한다.
// Reddit 피드의 본문은 class="md" 인 div 안에 있으며, 없으면 전체 텍스트를 사용한다.
func htmlToText(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return cleanText(s)
	}

	root := findMarkdownDiv(doc)
	if root == nil {
		root = doc
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "blockquote", "pre", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		}
	}
	walk(root)

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func findMarkdownDiv(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "div" {
		for _, attr := range n.Attr {
			if attr.Key == "class" && hasClass(attr.Val, "md") {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findMarkdownDiv(c); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(classes, want string) bool {
	for _, c := range strings.Fields(classes) {
		if c == want {
			return true
		}
	}
	return false
}
