package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/ppiankov/feedbrief/internal/htmltext"
)

// Document is a parsed feed document.
type Document struct {
	Dialect string // "rss", "atom" or "bare"
	Source  string
	Entries int // entries found before the per-feed cap
	Items   []NewsItem
}

// Parse extracts at most MaxEntriesPerFeed items from a feed document.
// A document that is not well-formed XML yields no items; the failure is
// logged rather than returned.
func Parse(doc []byte, sourceURL string) []NewsItem {
	d, err := ParseDocument(doc, sourceURL)
	if err != nil {
		slog.Warn("feed parse failed", "url", sourceURL, "error", err)
		return nil
	}
	return d.Items
}

// ParseDocument is Parse with the parse error and the detected dialect exposed.
func ParseDocument(doc []byte, sourceURL string) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	det := detect(root)
	source := hostName(sourceURL)
	if det.container != nil {
		if title := childText(det.container, "title", det.dialect.namespace); title != "" {
			source = strings.TrimSpace(title)
		}
	}

	entries := det.entries
	if len(entries) > MaxEntriesPerFeed {
		entries = entries[:MaxEntriesPerFeed]
	}

	items := make([]NewsItem, 0, len(entries))
	for i, entry := range entries {
		item, err := extractItem(entry, det.dialect, source)
		if err != nil {
			slog.Debug("feed entry skipped", "url", sourceURL, "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}

	return &Document{
		Dialect: det.dialect.name,
		Source:  source,
		Entries: len(det.entries),
		Items:   items,
	}, nil
}

// extractItem reads one entry. A panic on an unexpected tree shape only
// loses this entry.
func extractItem(entry *xmlquery.Node, d dialect, source string) (item NewsItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract entry: %v", r)
		}
	}()

	title := strings.TrimSpace(entryText(entry, "title"))
	if title == "" {
		title = UntitledPlaceholder
	}

	summary := htmltext.Normalize(entryText(entry, d.summaryTag))

	return NewsItem{
		Title:   title,
		Summary: htmltext.Truncate(summary, MaxSummaryRunes),
		Link:    entryLink(entry),
		Source:  source,
		RawDate: strings.TrimSpace(entryText(entry, d.dateTag)),
	}, nil
}

// entryText looks a child tag up Atom-namespaced first, then unqualified,
// then in any other namespace. Empty elements are skipped at each step.
func entryText(entry *xmlquery.Node, tag string) string {
	if text := childText(entry, tag, atomNS); text != "" {
		return text
	}
	if text := childText(entry, tag, ""); text != "" {
		return text
	}
	return anyNSText(entry, tag)
}

// anyNSText returns the first non-empty text of a child named local,
// whatever its namespace.
func anyNSText(n *xmlquery.Node, local string) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			if text := elementText(c); text != "" {
				return text
			}
		}
	}
	return ""
}

// entryLink resolves the link chain: Atom link href, link text, guid text,
// empty string. Among Atom links the alternate one wins. Link and guid text
// are looked up unqualified first, then in any namespace (RSS 1.0 puts them
// in its default one).
func entryLink(entry *xmlquery.Node) string {
	var firstHref string
	for _, l := range childElements(entry, "link", atomNS) {
		href := strings.TrimSpace(l.SelectAttr("href"))
		if href == "" {
			continue
		}
		if rel := l.SelectAttr("rel"); rel == "" || rel == "alternate" {
			return href
		}
		if firstHref == "" {
			firstHref = href
		}
	}
	if firstHref != "" {
		return firstHref
	}

	for _, tag := range []string{"link", "guid"} {
		if text := strings.TrimSpace(childText(entry, tag, "")); text != "" {
			return text
		}
		if text := strings.TrimSpace(anyNSText(entry, tag)); text != "" {
			return text
		}
	}
	return ""
}

// childText returns the text of the first child named local in ns.
func childText(n *xmlquery.Node, local, ns string) string {
	c := firstChild(n, local, ns)
	if c == nil {
		return ""
	}
	return elementText(c)
}

// elementText concatenates the text and CDATA directly inside n. Markup in
// descriptions arrives escaped or as CDATA, so nested elements are ignored.
func elementText(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			sb.WriteString(c.Data)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return ""
	}
	return sb.String()
}

// hostName derives a source name from a feed URL.
func hostName(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return UnknownSource
	}
	return u.Host
}
