package preview

import (
	"fmt"
	"regexp"
	"strings"

	"themeforge/internal/models"
	"themeforge/internal/shared"
)

// Conventional file paths the renderer looks for. Absence of either is
// tolerated; rendering degrades gracefully.
const (
	LayoutPath = "layout/theme.liquid"
	MainPath   = "templates/index.liquid"
)

// contentToken stands in for {{ content_for_layout }} until composition.
const contentToken = "@@content-for-layout@@"

// Sections composed, in order, when the main template references no known
// sections. Many generated themes compose sections only implicitly.
var fallbackSections = []string{"header", "hero", "featured-products", "footer"}

// Options supplies runtime values for variable outputs and the brand colors
// injected as CSS custom properties.
type Options struct {
	ShopName  string
	PageTitle string
	Colors    models.ColorScheme
}

// The substitution chain below runs in a fixed order. Later patterns never
// see text an earlier pattern removed; reordering visibly changes output on
// inputs with overlapping syntax, so treat the order as part of the contract.
var (
	reShopName         = regexp.MustCompile(`\{\{-?\s*shop\.name\s*-?\}\}`)
	rePageTitle        = regexp.MustCompile(`\{\{-?\s*page_title\s*-?\}\}`)
	reContentForLayout = regexp.MustCompile(`\{\{-?\s*content_for_layout\s*-?\}\}`)
	reContentForHeader = regexp.MustCompile(`\{\{-?\s*content_for_header\s*-?\}\}`)

	reStylesheetBlock = regexp.MustCompile(`(?s)\{%-?\s*stylesheet\s*-?%\}(.*?)\{%-?\s*endstylesheet\s*-?%\}`)
	reStyleBlock      = regexp.MustCompile(`(?s)\{%-?\s*style\s*-?%\}(.*?)\{%-?\s*endstyle\s*-?%\}`)
	reInlineStyle     = regexp.MustCompile(`(?s)<style[^>]*>(.*?)</style>`)
	reJavascriptBlock = regexp.MustCompile(`(?s)\{%-?\s*javascript\s*-?%\}.*?\{%-?\s*endjavascript\s*-?%\}`)
	reInlineScript    = regexp.MustCompile(`(?s)<script[^>]*>.*?</script>`)

	reComment = regexp.MustCompile(`(?s)\{%-?\s*comment\s*-?%\}.*?\{%-?\s*endcomment\s*-?%\}`)
	reSchema  = regexp.MustCompile(`(?s)\{%-?\s*schema\s*-?%\}.*?\{%-?\s*endschema\s*-?%\}`)
	reIf      = regexp.MustCompile(`(?s)\{%-?\s*if\s.*?\{%-?\s*endif\s*-?%\}`)
	reUnless  = regexp.MustCompile(`(?s)\{%-?\s*unless\s.*?\{%-?\s*endunless\s*-?%\}`)
	reCase    = regexp.MustCompile(`(?s)\{%-?\s*case\s.*?\{%-?\s*endcase\s*-?%\}`)
	reFor     = regexp.MustCompile(`(?s)\{%-?\s*for\s.*?\{%-?\s*endfor\s*-?%\}`)
	reCapture = regexp.MustCompile(`(?s)\{%-?\s*capture\s.*?\{%-?\s*endcapture\s*-?%\}`)
	reAssign  = regexp.MustCompile(`\{%-?\s*assign\s[^%]*?-?%\}`)

	reSectionTag = regexp.MustCompile(`\{%-?\s*section\s+['"]([^'"]+)['"]\s*-?%\}`)

	reLeftoverTag    = regexp.MustCompile(`(?s)\{%.*?%\}`)
	reLeftoverOutput = regexp.MustCompile(`(?s)\{\{.*?\}\}`)

	rePlaceholder = regexp.MustCompile(`@@section:([a-z0-9-]*)@@`)
	reHeadOpen    = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)
)

const baselineCSS = `* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
  line-height: 1.6;
  color: var(--color-primary);
  background: var(--color-background);
}
h1, h2, h3, h4 { line-height: 1.2; margin-bottom: 0.5em; }
a { color: var(--color-secondary); text-decoration: none; }
img { max-width: 100%; display: block; }
section, header, footer { padding: 2rem 1.5rem; }
button, .btn {
  background: var(--color-secondary);
  color: #fff;
  border: 0;
  padding: 0.75rem 1.5rem;
  border-radius: 4px;
  cursor: pointer;
}
`

// Render converts a template file set into a single self-contained HTML
// document. It is pure and idempotent; it never fails — unrecognized or
// malformed syntax is stripped, not reported.
func Render(files models.TemplateFileSet, opts Options) string {
	shopName := opts.ShopName
	if shopName == "" {
		shopName = "Your Store"
	}
	pageTitle := opts.PageTitle
	if pageTitle == "" {
		pageTitle = shopName
	}

	processed := make(map[string]string, len(files))
	var styles []string
	for _, path := range files.SortedPaths() {
		body, extracted := processFile(files[path], shopName, pageTitle)
		processed[path] = body
		styles = append(styles, extracted...)
	}

	main := composeMain(processed)
	doc := composeDocument(processed, main, pageTitle)

	// Tokens surviving composition (a section including another section,
	// a layout token outside the layout file) must never reach the output.
	doc = rePlaceholder.ReplaceAllString(doc, "")
	doc = strings.ReplaceAll(doc, contentToken, "")

	return injectStyles(doc, opts.Colors, styles)
}

// processFile runs the fixed substitution chain over one file and returns the
// visible markup plus any extracted stylesheet contents, in source order.
func processFile(source, shopName, pageTitle string) (string, []string) {
	// Variable outputs first: runtime values and the layout content slot.
	out := reShopName.ReplaceAllString(source, shopName)
	out = rePageTitle.ReplaceAllString(out, pageTitle)
	out = reContentForLayout.ReplaceAllString(out, contentToken)
	out = reContentForHeader.ReplaceAllString(out, "")

	// Stylesheet extraction before block stripping, so a style block is
	// collected even when the stripping pass would have removed it.
	var styles []string
	collect := func(re *regexp.Regexp, s string) string {
		for _, m := range re.FindAllStringSubmatch(s, -1) {
			if css := strings.TrimSpace(m[1]); css != "" {
				styles = append(styles, css)
			}
		}
		return re.ReplaceAllString(s, "")
	}
	out = collect(reStylesheetBlock, out)
	out = collect(reStyleBlock, out)
	out = collect(reInlineStyle, out)
	out = reJavascriptBlock.ReplaceAllString(out, "")
	out = reInlineScript.ReplaceAllString(out, "")

	// Control flow and metadata strip as empty, contents included.
	out = reComment.ReplaceAllString(out, "")
	out = reSchema.ReplaceAllString(out, "")
	out = reIf.ReplaceAllString(out, "")
	out = reUnless.ReplaceAllString(out, "")
	out = reCase.ReplaceAllString(out, "")
	out = reFor.ReplaceAllString(out, "")
	out = reCapture.ReplaceAllString(out, "")
	out = reAssign.ReplaceAllString(out, "")

	// Section inclusions become deterministic placeholders.
	out = reSectionTag.ReplaceAllStringFunc(out, func(m string) string {
		name := reSectionTag.FindStringSubmatch(m)[1]
		return fmt.Sprintf("@@section:%s@@", shared.NormalizeSectionName(name))
	})

	// Whatever still looks like tag syntax is dropped wholesale.
	out = reLeftoverTag.ReplaceAllString(out, "")
	out = reLeftoverOutput.ReplaceAllString(out, "")

	return out, styles
}

// composeMain resolves section placeholders in the main template, falling
// back to the fixed default composition when no known section is referenced.
func composeMain(processed map[string]string) string {
	main := processed[MainPath]

	substituted := 0
	main = rePlaceholder.ReplaceAllStringFunc(main, func(m string) string {
		name := rePlaceholder.FindStringSubmatch(m)[1]
		if content, ok := processed["sections/"+name+".liquid"]; ok {
			substituted++
			return content
		}
		return ""
	})

	if substituted > 0 {
		return main
	}

	var parts []string
	for _, name := range fallbackSections {
		if content, ok := processed["sections/"+name+".liquid"]; ok {
			parts = append(parts, content)
		}
	}
	if rest := strings.TrimSpace(main); rest != "" {
		parts = append(parts, rest)
	}

	return strings.Join(parts, "\n")
}

// composeDocument injects the composed main content into the layout, or
// synthesizes a minimal document wrapper when no layout file was supplied.
func composeDocument(processed map[string]string, main, pageTitle string) string {
	layout, ok := processed[LayoutPath]
	if !ok {
		return fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>
`, pageTitle, main)
	}

	if strings.Contains(layout, contentToken) {
		return strings.ReplaceAll(layout, contentToken, main)
	}

	// Layout without a content slot: append rather than drop the content.
	return layout + "\n" + main
}

// injectStyles prepends a style element with brand color variables, the
// baseline ruleset, then extracted styles — in that order, so extracted rules
// can override the baseline while the variables stay available to every rule.
func injectStyles(doc string, colors models.ColorScheme, extracted []string) string {
	primary, secondary, background := colors.Primary, colors.Secondary, colors.Background
	if primary == "" {
		primary = "#1a1a2e"
	}
	if secondary == "" {
		secondary = "#e94560"
	}
	if background == "" {
		background = "#ffffff"
	}

	var b strings.Builder
	b.WriteString("<style>\n:root {\n")
	fmt.Fprintf(&b, "  --color-primary: %s;\n", primary)
	fmt.Fprintf(&b, "  --color-secondary: %s;\n", secondary)
	fmt.Fprintf(&b, "  --color-background: %s;\n", background)
	b.WriteString("}\n")
	b.WriteString(baselineCSS)
	for _, css := range extracted {
		b.WriteString(css)
		b.WriteString("\n")
	}
	b.WriteString("</style>")
	style := b.String()

	if loc := reHeadOpen.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + "\n" + style + doc[loc[1]:]
	}

	return style + "\n" + doc
}
