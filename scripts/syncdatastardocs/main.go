// Package main fetches the data-star.dev reference for the Datastar attributes
// and actions the widget's components use, and saves it as markdown.
//
// The docs page has semantic HTML with all content in one <article> tag.
// Sections are delineated by <h1> headings with IDs matching the sidebar nav;
// the attribute and action sections hold one <h3> per API item.
//
// Usage:
//
//	go run ./scripts/syncdatastardocs
//	go run ./scripts/syncdatastardocs -strict
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Configuration.
const (
	docsURL       = "https://data-star.dev/docs"
	contextDir    = "context/datastar-docs"
	componentsDir = "internal/ui/features/common/components"
	staticDir     = "internal/ui/resources/static"
)

var strict = flag.Bool("strict", false, "fail when a used attribute or action has no reference entry")

// Sections that are split by H3 headers, one file per used API item.
var referenceSections = map[string]bool{
	"attributes": true,
	"actions":    true,
}

// Pre-compiled regex patterns.
var (
	reNonWord           = regexp.MustCompile(`[^\w\s-]`)
	reSpacesUnderscores = regexp.MustCompile(`[\s_]+`)
	reMultipleHyphens   = regexp.MustCompile(`-+`)
	reAnchorLinks       = regexp.MustCompile(`\s*\[#\]\(#[\w-]*\)`)
	reLineNumbers       = regexp.MustCompile(`^(\s*)\d{1,4}(.*)$`)
	reExcessiveNewlines = regexp.MustCompile(`\n{4,}`)
	reH3Header          = regexp.MustCompile(`(?m)(^### .+$)`)
	reH3Prefix          = regexp.MustCompile(`^### `)
	reProLink           = regexp.MustCompile(`\[Pro\]\([^)]*\)`)
	reSlugCleanup       = regexp.MustCompile("[`()\\[\\]]")

	reAttrUse   = regexp.MustCompile(`\bdata-([a-z][a-z-]*)`)
	reActionUse = regexp.MustCompile(`@([a-z][a-zA-Z]*)\(`)
)

// Section holds content extracted from an H1 section.
type Section struct {
	Title   string
	ID      string
	Content string
}

// Subsection holds content extracted from an H3 subsection.
type Subsection struct {
	Slug    string
	Content string
}

// Usage is the set of Datastar features found in the widget sources,
// keyed by reference slug (data-on, post).
type Usage struct {
	Attributes []string
	Actions    []string
}

func main() {
	flag.Parse()

	usage, err := scanUsage(componentsDir, staticDir)
	if err != nil {
		log.Fatalf("Failed to scan components: %v", err)
	}
	log.Printf("Widget uses attributes %v and actions %v", usage.Attributes, usage.Actions)

	// Setup output directory
	if err := setupOutputDir(contextDir); err != nil {
		log.Fatalf("Failed to setup output directory: %v", err)
	}

	log.Printf("Fetching documentation page %s...", docsURL)
	htmlContent, err := fetchPage(docsURL)
	if err != nil {
		log.Fatalf("Failed to fetch page: %v", err)
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		log.Fatalf("Failed to parse HTML: %v", err)
	}

	sections := extractSectionsByH1(doc)
	log.Printf("Found %d sections", len(sections))

	wanted := map[string][]string{
		"attributes": usage.Attributes,
		"actions":    usage.Actions,
	}
	var missing []string
	for _, section := range sections {
		id := slugify(section.ID)
		if !referenceSections[id] {
			continue
		}
		subsections := extractH3Subsections(cleanMarkdown(section.Content))
		kept, notFound := selectSubsections(subsections, wanted[id])
		for _, slug := range notFound {
			missing = append(missing, id+"/"+slug)
		}
		if err := saveSubsections(filepath.Join(contextDir, id), section.Title, kept); err != nil {
			log.Fatalf("Failed to save %s: %v", id, err)
		}
	}

	if err := os.WriteFile(filepath.Join(contextDir, "index.md"), []byte(usageIndex(usage, missing)), 0o644); err != nil {
		log.Fatalf("Failed to save index: %v", err)
	}

	if len(missing) > 0 {
		// plain data-* attributes (data-scanning) land here too
		log.Printf("No reference entry for: %s", strings.Join(missing, ", "))
		if *strict {
			os.Exit(1)
		}
	}
	log.Printf("Saved the reference to %s", contextDir)
}

// scanUsage collects the Datastar attributes and actions referenced in the
// Go and JavaScript files of the given directories.
func scanUsage(dirs ...string) (Usage, error) {
	attrs := map[string]bool{}
	actions := map[string]bool{}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return Usage{}, err
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasSuffix(name, "_test.go") ||
				(filepath.Ext(name) != ".go" && filepath.Ext(name) != ".js") {
				continue
			}
			src, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return Usage{}, err
			}
			u := findUsage(string(src))
			for _, a := range u.Attributes {
				attrs[a] = true
			}
			for _, a := range u.Actions {
				actions[a] = true
			}
		}
	}
	return Usage{Attributes: sortedKeys(attrs), Actions: sortedKeys(actions)}, nil
}

// findUsage extracts feature slugs from one source text.
func findUsage(src string) Usage {
	attrs := map[string]bool{}
	for _, m := range reAttrUse.FindAllStringSubmatch(src, -1) {
		attrs["data-"+m[1]] = true
	}
	actions := map[string]bool{}
	for _, m := range reActionUse.FindAllStringSubmatch(src, -1) {
		actions[strings.ToLower(m[1])] = true
	}
	return Usage{Attributes: sortedKeys(attrs), Actions: sortedKeys(actions)}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// selectSubsections keeps the index and the subsections whose slug is wanted.
// It returns the wanted slugs that have no subsection.
func selectSubsections(subs []Subsection, wanted []string) (kept []Subsection, missing []string) {
	found := map[string]bool{}
	for _, sub := range subs {
		if sub.Slug == "index" || slices.Contains(wanted, sub.Slug) {
			kept = append(kept, sub)
			found[sub.Slug] = true
		}
	}
	for _, w := range wanted {
		if !found[w] {
			missing = append(missing, w)
		}
	}
	return kept, missing
}

// saveSubsections writes one markdown file per subsection into dir.
func saveSubsections(dir, title string, subs []Subsection) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, sub := range subs {
		content := sub.Content
		if sub.Slug == "index" {
			if !strings.HasPrefix(content, "#") {
				content = fmt.Sprintf("# %s\n\n%s", title, content)
			}
		} else {
			// Promote H3 to H1 for standalone files
			content = reH3Prefix.ReplaceAllString(content, "# ")
		}
		path := filepath.Join(dir, sub.Slug+".md")
		if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
			return err
		}
		log.Printf("   Saved: %s", path)
	}
	return nil
}

// usageIndex renders the overview of what the widget uses.
func usageIndex(u Usage, missing []string) string {
	var sb strings.Builder
	sb.WriteString("# Datastar features used by the widget\n\n")
	sb.WriteString("Generated by scripts/syncdatastardocs from " + docsURL + ".\n\n## Attributes\n\n")
	for _, a := range u.Attributes {
		fmt.Fprintf(&sb, "- [`%s`](attributes/%s.md)\n", a, a)
	}
	sb.WriteString("\n## Actions\n\n")
	for _, a := range u.Actions {
		fmt.Fprintf(&sb, "- [`@%s()`](actions/%s.md)\n", a, a)
	}
	if len(missing) > 0 {
		sb.WriteString("\n## Not in the reference\n\n")
		for _, m := range missing {
			fmt.Fprintf(&sb, "- %s\n", m)
		}
	}
	return sb.String()
}

// setupOutputDir removes existing directory and creates a fresh one.
func setupOutputDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		log.Printf("Cleaning existing directory: %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove existing directory: %w", err)
		}
	}
	return os.MkdirAll(dir, 0o755)
}

// fetchPage fetches HTML content from a URL.
func fetchPage(pageURL string) (string, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; DatastarDocsScraper/1.0)")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

// slugify converts text to a safe filename slug.
func slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = reNonWord.ReplaceAllString(text, "")
	text = reSpacesUnderscores.ReplaceAllString(text, "-")
	text = reMultipleHyphens.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

// extractSectionsByH1 extracts sections by splitting on <h1> headings.
func extractSectionsByH1(doc *html.Node) []Section {
	var sections []Section

	// Find the main article tag
	article := findElement(doc, "article")
	if article == nil {
		log.Println("Warning: No main article tag found")
		return sections
	}

	// Find all h1 headings with IDs
	var h1s []*html.Node
	var findH1s func(*html.Node)
	findH1s = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "h1" {
			if id := getAttr(n, "id"); id != "" {
				h1s = append(h1s, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findH1s(c)
		}
	}
	findH1s(article)

	if len(h1s) == 0 {
		log.Println("Warning: No h1 headings with IDs found")
		return sections
	}

	// For each h1, collect content until next h1
	for i, h1 := range h1s {
		sectionID := getAttr(h1, "id")
		title := strings.TrimRight(getTextContent(h1), "#") // Remove trailing # from title

		// Collect all sibling elements until next h1
		var contentParts []string
		contentParts = append(contentParts, renderNode(h1))

		// Get the next h1 to know when to stop (if any)
		var nextH1 *html.Node
		if i+1 < len(h1s) {
			nextH1 = h1s[i+1]
		}

		// Traverse siblings
		for sibling := h1.NextSibling; sibling != nil; sibling = sibling.NextSibling {
			if sibling == nextH1 {
				break
			}
			if sibling.Type == html.ElementNode && sibling.Data == "h1" {
				break
			}
			contentParts = append(contentParts, renderNode(sibling))
		}

		htmlContent := strings.Join(contentParts, "")

		// Convert to markdown
		mdContent, err := htmltomarkdown.ConvertString(htmlContent)
		if err != nil {
			log.Printf("Warning: failed to convert section %s to markdown: %v", sectionID, err)
			continue
		}

		sections = append(sections, Section{
			Title:   strings.TrimSpace(title),
			ID:      sectionID,
			Content: mdContent,
		})
	}

	return sections
}

// extractH3Subsections splits markdown content by H3 headers into separate subsections.
func extractH3Subsections(content string) []Subsection {
	var subsections []Subsection

	parts := reH3Header.Split(content, -1)
	matches := reH3Header.FindAllString(content, -1)

	// First part is content before any H3 (intro/overview)
	if intro := strings.TrimSpace(parts[0]); intro != "" {
		subsections = append(subsections, Subsection{Slug: "index", Content: intro})
	}

	// Process H3 sections
	for i, match := range matches {
		title := strings.TrimSpace(strings.TrimPrefix(match, "###"))

		var sectionContent string
		if i+1 < len(parts) {
			sectionContent = strings.TrimSpace(parts[i+1])
		}

		fullContent := strings.TrimSpace(match + "\n\n" + sectionContent)

		// Create slug from title (remove backticks, parentheses, [Pro] links, etc.)
		slugText := reProLink.ReplaceAllString(title, "")
		slugText = reSlugCleanup.ReplaceAllString(slugText, "")

		subsections = append(subsections, Subsection{
			Slug:    slugify(slugText),
			Content: fullContent,
		})
	}

	return subsections
}

// cleanMarkdown cleans up markdown content.
func cleanMarkdown(content string) string {
	// Remove anchor links like [#](#section-name) from headings
	content = reAnchorLinks.ReplaceAllString(content, "")

	// Remove line numbers from code blocks
	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			cleanedLines = append(cleanedLines, line)
		} else if inCodeBlock {
			// Remove leading line numbers, preserving everything after
			if match := reLineNumbers.FindStringSubmatch(line); match != nil {
				cleanedLines = append(cleanedLines, match[1]+match[2])
			} else {
				cleanedLines = append(cleanedLines, line)
			}
		} else {
			cleanedLines = append(cleanedLines, line)
		}
	}

	content = strings.Join(cleanedLines, "\n")
	content = reExcessiveNewlines.ReplaceAllString(content, "\n\n\n")

	// Remove trailing whitespace from lines
	lines = strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// getAttr returns the value of an attribute, or empty string if not found.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// getTextContent returns the text content of a node and its children.
func getTextContent(n *html.Node) string {
	var sb strings.Builder
	var getText func(*html.Node)
	getText = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			getText(c)
		}
	}
	getText(n)
	return strings.TrimSpace(sb.String())
}

// renderNode renders an HTML node back to string.
func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}
