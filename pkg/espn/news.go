package espn

import (
	"fmt"
	"html"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/predict"
)

const espnDomain = "https://www.espn.com"

// CleanText strips markup from ESPN headlines and descriptions and collapses whitespace
func CleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		logger.Debug("Could not parse news markup", err)
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// NewsDigest renders a team's news as markdown, flagging roster issues when the keywords match
func NewsDigest(team string, items []predict.NewsItem, keywords []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s news</h2>", html.EscapeString(team))
	if predict.DetectRosterNews(items, keywords) {
		b.WriteString("<p><strong>Roster issues reported</strong></p>")
	}
	if len(items) == 0 {
		b.WriteString("<p>No recent news.</p>")
	} else {
		b.WriteString("<ul>")
		for _, it := range items {
			b.WriteString("<li>")
			headline := html.EscapeString(it.Headline)
			if it.Link != "" {
				fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(it.Link), headline)
			} else {
				b.WriteString(headline)
			}
			if !it.Published.IsZero() {
				fmt.Fprintf(&b, " <em>(%s)</em>", it.Published.Format("2006-01-02"))
			}
			if it.Description != "" {
				fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(it.Description))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}

	md, err := htmltomarkdown.ConvertString(b.String(), converter.WithDomain(espnDomain))
	if err != nil {
		return "", fmt.Errorf("failed to render news digest: %w", err)
	}
	return strings.TrimSpace(md), nil
}
