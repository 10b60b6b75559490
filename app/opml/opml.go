// Package opml reads and writes OPML subscription lists.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

type Document struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

type Head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline is either a feed (XMLURL set) or a folder of nested outlines.
type Outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr,omitempty"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	HTMLURL  string    `xml:"htmlUrl,attr,omitempty"`
	Outlines []Outline `xml:"outline,omitempty"`
}

// Subscription is a flattened feed entry. Category is the name of the
// outermost folder the feed sits in; feeds at the document root have an
// empty Category.
type Subscription struct {
	Category string
	Title    string
	URL      string
}

// Parse decodes an OPML document into a flat subscription list. Nested
// folders collapse onto the outermost folder name.
func Parse(r io.Reader) ([]Subscription, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode OPML: %w", err)
	}

	var subs []Subscription
	var walk func(outlines []Outline, category string)
	walk = func(outlines []Outline, category string) {
		for _, o := range outlines {
			if o.XMLURL != "" {
				title := o.Title
				if title == "" {
					title = o.Text
				}
				subs = append(subs, Subscription{
					Category: category,
					Title:    title,
					URL:      o.XMLURL,
				})
				continue
			}
			if len(o.Outlines) > 0 {
				name := category
				if name == "" {
					name = o.Text
					if name == "" {
						name = o.Title
					}
				}
				walk(o.Outlines, name)
			}
		}
	}
	walk(doc.Body.Outlines, "")

	return subs, nil
}

// Folder groups subscriptions for export. The order of folders and feeds is
// preserved in the output.
type Folder struct {
	Name  string
	Feeds []Subscription
}

// Export renders folders as an OPML 2.0 document, one outline per folder
// with its feeds nested underneath.
func Export(title string, folders []Folder) ([]byte, error) {
	doc := Document{
		Version: "2.0",
		Head: Head{
			Title:       title,
			DateCreated: time.Now().Format(time.RFC1123Z),
		},
	}

	for _, folder := range folders {
		outline := Outline{Text: folder.Name, Title: folder.Name}
		for _, feed := range folder.Feeds {
			outline.Outlines = append(outline.Outlines, Outline{
				Text:   feed.Title,
				Title:  feed.Title,
				Type:   "rss",
				XMLURL: feed.URL,
			})
		}
		doc.Body.Outlines = append(doc.Body.Outlines, outline)
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode OPML: %w", err)
	}

	return append([]byte(xml.Header), output...), nil
}
