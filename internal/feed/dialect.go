package feed

import "github.com/antchfx/xmlquery"

const atomNS = "http://www.w3.org/2005/Atom"

// dialect is the tag vocabulary a document uses. It is chosen once per
// document and every entry of that document is read with it.
type dialect struct {
	name       string
	entryTag   string
	dateTag    string
	summaryTag string
	namespace  string // namespace of the container, its title and its entries
}

var (
	rssDialect = dialect{
		name:       "rss",
		entryTag:   "item",
		dateTag:    "pubDate",
		summaryTag: "description",
	}
	atomDialect = dialect{
		name:       "atom",
		entryTag:   "entry",
		dateTag:    "published",
		summaryTag: "summary",
		namespace:  atomNS,
	}
	// bareDialect covers documents without a channel or feed element. Tags
	// are read with the RSS names.
	bareDialect = dialect{
		name:       "bare",
		entryTag:   "item",
		dateTag:    "pubDate",
		summaryTag: "description",
	}
)

// detection is the outcome of matching a document against the dialects.
type detection struct {
	dialect   dialect
	container *xmlquery.Node // channel or feed element, nil for bare
	entries   []*xmlquery.Node
}

// detect picks the dialect of doc in priority order: an RSS channel anywhere,
// then an Atom feed anywhere, then bare item or entry elements anywhere.
func detect(doc *xmlquery.Node) detection {
	if channel := findElement(doc, "channel", ""); channel != nil {
		return detection{
			dialect:   rssDialect,
			container: channel,
			entries:   childElements(channel, rssDialect.entryTag, ""),
		}
	}

	if feed := findElement(doc, "feed", atomNS); feed != nil {
		return detection{
			dialect:   atomDialect,
			container: feed,
			entries:   childElements(feed, atomDialect.entryTag, atomNS),
		}
	}

	entries, _ := xmlquery.QueryAll(doc, "//item")
	if len(entries) == 0 {
		entries, _ = xmlquery.QueryAll(doc, "//entry")
	}
	return detection{dialect: bareDialect, entries: entries}
}

// findElement returns the first element in document order, n included,
// with the given local name and namespace.
func findElement(n *xmlquery.Node, local, ns string) *xmlquery.Node {
	if isElement(n, local, ns) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, local, ns); found != nil {
			return found
		}
	}
	return nil
}

// childElements returns the direct children of n with the given local name
// and namespace.
func childElements(n *xmlquery.Node, local, ns string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, local, ns) {
			out = append(out, c)
		}
	}
	return out
}

// firstChild returns the first direct child element named local in ns.
func firstChild(n *xmlquery.Node, local, ns string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, local, ns) {
			return c
		}
	}
	return nil
}

func isElement(n *xmlquery.Node, local, ns string) bool {
	return n.Type == xmlquery.ElementNode && n.Data == local && n.NamespaceURI == ns
}
