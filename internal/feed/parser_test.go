package feed

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func rssFixture(n int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Daily News</title>
    <link>https://news.example.com/</link>
`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, `    <item>
      <title>Item %d</title>
      <link>https://news.example.com/%d</link>
      <description><![CDATA[<p>Body of item %d</p>]]></description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
`, i, i, i)
	}
	sb.WriteString("  </channel>\n</rss>\n")
	return sb.String()
}

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Blog</title>
  <entry>
    <title>First entry</title>
    <link rel="self" href="https://blog.example.com/self/1"/>
    <link href="https://blog.example.com/posts/1"/>
    <summary>Short &lt;b&gt;atom&lt;/b&gt; summary</summary>
    <published>2024-01-02T03:04:05Z</published>
  </entry>
  <entry>
    <title>Second entry</title>
    <id>urn:uuid:2</id>
  </entry>
</feed>`

func TestParse_RSSCapsEntries(t *testing.T) {
	items := Parse([]byte(rssFixture(12)), "https://news.example.com/rss")

	if len(items) != MaxEntriesPerFeed {
		t.Fatalf("got %d items, want %d", len(items), MaxEntriesPerFeed)
	}
	first := items[0]
	if first.Title != "Item 1" {
		t.Errorf("title = %q, want Item 1", first.Title)
	}
	if first.Link != "https://news.example.com/1" {
		t.Errorf("link = %q", first.Link)
	}
	if first.Source != "Daily News" {
		t.Errorf("source = %q, want Daily News", first.Source)
	}
	if first.RawDate != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Errorf("raw date = %q", first.RawDate)
	}
	if first.Published != nil {
		t.Errorf("published = %v, want nil", first.Published)
	}
	if !strings.Contains(first.Summary, "Body of item 1") || strings.Contains(first.Summary, "<p>") {
		t.Errorf("summary = %q, want plain text", first.Summary)
	}
	if items[9].Title != "Item 10" {
		t.Errorf("last title = %q, want Item 10", items[9].Title)
	}
}

func TestParseDocument_Dialects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		dialect string
		entries int
	}{
		{"rss", rssFixture(3), "rss", 3},
		{"atom", atomFixture, "atom", 2},
		{"bare items", `<items><item><title>A</title></item><item><title>B</title></item></items>`, "bare", 2},
		{"bare entries", `<list><entry><title>A</title></entry></list>`, "bare", 1},
		{"nothing", `<html><body>not a feed</body></html>`, "bare", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDocument([]byte(tt.doc), "https://example.com/feed")
			if err != nil {
				t.Fatalf("ParseDocument: %v", err)
			}
			if d.Dialect != tt.dialect {
				t.Errorf("dialect = %q, want %q", d.Dialect, tt.dialect)
			}
			if d.Entries != tt.entries {
				t.Errorf("entries = %d, want %d", d.Entries, tt.entries)
			}
		})
	}
}

func TestParse_Atom(t *testing.T) {
	items := Parse([]byte(atomFixture), "https://blog.example.com/atom.xml")
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.Title != "First entry" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Link != "https://blog.example.com/posts/1" {
		t.Errorf("link = %q, want the alternate link", first.Link)
	}
	if first.Source != "Atom Blog" {
		t.Errorf("source = %q, want Atom Blog", first.Source)
	}
	if first.RawDate != "2024-01-02T03:04:05Z" {
		t.Errorf("raw date = %q", first.RawDate)
	}
	if !strings.Contains(first.Summary, "atom") || strings.Contains(first.Summary, "<b>") {
		t.Errorf("summary = %q, want tags removed", first.Summary)
	}

	if items[1].Link != "" {
		t.Errorf("second link = %q, want empty", items[1].Link)
	}
}

func TestParse_AtomSelfLinkOnly(t *testing.T) {
	doc := `<feed xmlns="http://www.w3.org/2005/Atom"><title>T</title>
<entry><title>E</title><link rel="self" href="https://example.com/self"/></entry></feed>`

	items := Parse([]byte(doc), "https://example.com/atom")
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Link != "https://example.com/self" {
		t.Errorf("link = %q, want the only href", items[0].Link)
	}
}

func TestParse_LinkChain(t *testing.T) {
	doc := `<rss><channel><title>Chain</title>
<item><title>with link</title><link> https://example.com/a </link><guid>g-a</guid></item>
<item><title>guid only</title><guid>https://example.com/b</guid></item>
<item><title>nothing</title></item>
</channel></rss>`

	items := Parse([]byte(doc), "https://example.com/rss")
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	want := []string{"https://example.com/a", "https://example.com/b", ""}
	for i, w := range want {
		if items[i].Link != w {
			t.Errorf("item %d link = %q, want %q", i, items[i].Link, w)
		}
	}
}

func TestParse_RDFDefaultNamespace(t *testing.T) {
	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/">
<channel rdf:about="http://x/"><title>RDF channel</title><link>http://x/</link></channel>
<item rdf:about="http://x/1"><title>R1</title><link>http://x/1</link><description>first</description></item>
<item rdf:about="http://x/2"><title>R2</title><guid>http://x/2</guid></item>
</rdf:RDF>`

	items := Parse([]byte(doc), "https://x.example/rdf")
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	want := []struct{ title, link string }{
		{"R1", "http://x/1"},
		{"R2", "http://x/2"},
	}
	for i, w := range want {
		if items[i].Title != w.title {
			t.Errorf("item %d title = %q, want %q", i, items[i].Title, w.title)
		}
		if items[i].Link != w.link {
			t.Errorf("item %d link = %q, want %q", i, items[i].Link, w.link)
		}
	}
	if items[0].Summary != "first" {
		t.Errorf("summary = %q, want %q", items[0].Summary, "first")
	}
}

func TestParse_TitlePlaceholder(t *testing.T) {
	doc := `<rss><channel><title>C</title>
<item><description>no title</description></item>
<item><title>   </title></item>
</channel></rss>`

	items := Parse([]byte(doc), "https://example.com/rss")
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for i, it := range items {
		if it.Title != UntitledPlaceholder {
			t.Errorf("item %d title = %q, want placeholder", i, it.Title)
		}
	}
}

func TestParse_SourceFallback(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		sourceURL string
		want      string
	}{
		{"channel without title", `<rss><channel><item><title>x</title></item></channel></rss>`, "https://feeds.example.net/rss", "feeds.example.net"},
		{"bare uses host", `<root><item><title>x</title></item></root>`, "https://bare.example.org/x.xml", "bare.example.org"},
		{"no host", `<root><item><title>x</title></item></root>`, "", UnknownSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Parse([]byte(tt.doc), tt.sourceURL)
			if len(items) != 1 {
				t.Fatalf("got %d items, want 1", len(items))
			}
			if items[0].Source != tt.want {
				t.Errorf("source = %q, want %q", items[0].Source, tt.want)
			}
		})
	}
}

func TestParse_SummaryTruncated(t *testing.T) {
	long := strings.Repeat("ж", 400)
	doc := `<rss><channel><title>C</title><item><title>t</title><description>` + long + `</description></item></channel></rss>`

	items := Parse([]byte(doc), "https://example.com/rss")
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if n := utf8.RuneCountInString(items[0].Summary); n != MaxSummaryRunes {
		t.Errorf("summary length = %d runes, want %d", n, MaxSummaryRunes)
	}
}

func TestParse_Malformed(t *testing.T) {
	docs := []string{
		`<rss><channel><item></channel></rss>`,
		``,
	}
	for _, doc := range docs {
		if items := Parse([]byte(doc), "https://example.com/rss"); len(items) != 0 {
			t.Errorf("Parse(%q) = %d items, want 0", doc, len(items))
		}
	}

	if _, err := ParseDocument([]byte(`<rss><channel><item></channel></rss>`), ""); err == nil {
		t.Error("expected error for mismatched tags")
	}
}

func TestParse_ChannelAsRoot(t *testing.T) {
	doc := `<channel><title>Root Channel</title><item><title>x</title></item></channel>`

	d, err := ParseDocument([]byte(doc), "https://example.com/rss")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if d.Dialect != "rss" {
		t.Errorf("dialect = %q, want rss", d.Dialect)
	}
	if d.Source != "Root Channel" {
		t.Errorf("source = %q, want Root Channel", d.Source)
	}
}
