// Package facebook wraps the Facebook Graph API and the public post-embed
// endpoint for Theta.
//
// This file implements the unauthenticated embed scrape used when the Graph
// API refuses to serve an object. The embed endpoint serves a public HTML
// rendering of a post; text is pulled from the meta description (title as a
// fallback) and a bounded list of content images is collected from the CDN.
// The markup is an external site's and changes without notice, so everything
// here degrades to "nothing found" rather than failing hard.
package facebook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// MaxScrapeImages bounds the image list collected from one embed page.
const MaxScrapeImages = 4

// Browser-like request signature for the embed endpoint. Requests without it
// get served a login interstitial instead of the post.
var embedHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Sec-Fetch-Dest":  "iframe",
	"Sec-Fetch-Mode":  "navigate",
	"Sec-Fetch-Site":  "cross-site",
	"Referer":         "https://www.google.com/",
}

// EmbedContent is the extraction result of one embed page.
type EmbedContent struct {
	Text   string
	Images []string
}

// FetchEmbed fetches the public embed rendering of a post and extracts its
// plain text and content images.
func (c *Client) FetchEmbed(ctx context.Context, pageID, postID string) (*EmbedContent, error) {
	if c.embedURL == "" {
		return nil, fmt.Errorf("embed URL not configured")
	}
	href := fmt.Sprintf("https://www.facebook.com/%s/posts/%s", pageID, postID)
	q := url.Values{}
	q.Set("href", href)
	q.Set("width", "500")
	endpoint := c.embedURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build embed request: %w", err)
	}
	for k, v := range embedHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Client.FetchEmbed: request failed", "error", err, "page_id", pageID, "post_id", postID)
		return nil, fmt.Errorf("embed fetch for %s_%s failed: %w", pageID, postID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed fetch for %s_%s: status %d", pageID, postID, resp.StatusCode)
	}

	content, err := extractEmbedContent(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed parse for %s_%s failed: %w", pageID, postID, err)
	}
	slog.Debug("Client.FetchEmbed: extraction complete",
		"page_id", pageID, "post_id", postID, "text_len", len(content.Text), "images", len(content.Images))
	return content, nil
}

// extractEmbedContent walks the embed HTML collecting the meta description,
// the document title, and content image URLs.
func extractEmbedContent(r io.Reader) (*EmbedContent, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var metaDescription, title string
	var images []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if attr(n, "name") == "description" {
					metaDescription = strings.TrimSpace(attr(n, "content"))
				}
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "img":
				if src := attr(n, "src"); isContentImage(src) && len(images) < MaxScrapeImages {
					images = append(images, src)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := metaDescription
	if text == "" {
		text = cleanEmbedTitle(title)
	}
	return &EmbedContent{Text: text, Images: images}, nil
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// isContentImage filters image sources to actual post media: the scontent
// CDN hosts uploads, while avatars, spacers, and icons live under static
// asset paths.
func isContentImage(src string) bool {
	if src == "" {
		return false
	}
	return strings.Contains(src, "scontent") && !strings.Contains(src, "static")
}

// cleanEmbedTitle strips the boilerplate the embed page appends to titles.
func cleanEmbedTitle(title string) string {
	for _, sep := range []string{" | Facebook", " - Facebook"} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
		}
	}
	return strings.TrimSpace(title)
}
