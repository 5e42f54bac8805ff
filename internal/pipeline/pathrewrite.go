package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// linkAttrs lists the attributes resolved per element. Stylesheets matter for
// rendered .Rhtml documents, which usually reference a sibling CSS file.
var linkAttrs = map[atom.Atom]string{
	atom.Img:  "src",
	atom.A:    "href",
	atom.Link: "href",
}

// ResolveRelativeLinks rewrites relative img, a and link references into
// file:// URLs under baseDir, so an HTML document keeps its images and
// stylesheets when printed from a temporary copy elsewhere on disk.
// References escaping baseDir are left untouched. An empty baseDir returns
// htmlContent unchanged.
func ResolveRelativeLinks(htmlContent, baseDir string) (string, error) {
	if baseDir == "" {
		return htmlContent, nil
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	root, fragment, err := parseDocument(htmlContent)
	if err != nil {
		return "", err
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if key, ok := linkAttrs[n.DataAtom]; ok {
				resolveAttr(n, key, absBase)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var buf strings.Builder
	if !fragment {
		if err := html.Render(&buf, root); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// parseDocument parses a full document, or a fragment in <body> context.
// Fragment nodes are gathered under a synthetic document node.
func parseDocument(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, true, nil
}

func resolveAttr(n *html.Node, key, base string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativeRef(attr.Val) {
			continue
		}
		target := filepath.Join(base, filepath.FromSlash(attr.Val))
		rel, err := filepath.Rel(base, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(target)}).String()
	}
}

// isRelativeRef reports whether ref is a relative filesystem path: not a URL,
// not an anchor, not absolute.
func isRelativeRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return !filepath.IsAbs(ref)
}
