package preview

import (
	"strings"
	"testing"

	"themeforge/internal/models"
)

func demoColors() models.ColorScheme {
	return models.ColorScheme{Primary: "#112233", Secondary: "#445566", Background: "#778899"}
}

func demoFileSet() models.TemplateFileSet {
	return models.TemplateFileSet{
		LayoutPath: `<!doctype html>
<html>
<head><title>{{ page_title }}</title></head>
<body>{{ content_for_layout }}</body>
</html>`,
		MainPath:                          `{% section 'header' %}{% section 'hero' %}`,
		"sections/header.liquid":          `<header>{{ shop.name }}</header>`,
		"sections/hero.liquid":            `<section class="hero"><h1>Welcome</h1></section>`,
		"sections/featured-products.liquid": `<section class="products">Products</section>`,
		"sections/footer.liquid":          `<footer>© {{ shop.name }}</footer>`,
	}
}

func TestRender(t *testing.T) {
	t.Run("Idempotence", func(t *testing.T) {
		opts := Options{ShopName: "Thornwood Goods", Colors: demoColors()}

		first := Render(demoFileSet(), opts)
		second := Render(demoFileSet(), opts)
		if first != second {
			t.Error("identical inputs must produce byte-identical output")
		}
	})

	t.Run("Section Substitution", func(t *testing.T) {
		out := Render(demoFileSet(), Options{ShopName: "Thornwood Goods", Colors: demoColors()})

		if !strings.Contains(out, "<header>Thornwood Goods</header>") {
			t.Errorf("header section should be inlined with the shop name, got:\n%s", out)
		}
		if !strings.Contains(out, `<section class="hero">`) {
			t.Error("hero section should be inlined")
		}
		if strings.Contains(out, "@@section:") {
			t.Error("no placeholder tokens may survive composition")
		}
		if strings.Contains(out, "{%") || strings.Contains(out, "{{") {
			t.Errorf("no raw tag syntax may survive, got:\n%s", out)
		}
	})

	t.Run("Fallback Composition Order", func(t *testing.T) {
		files := demoFileSet()
		files[MainPath] = `<p>No explicit sections here.</p>`

		out := Render(files, Options{ShopName: "Fallback Co", Colors: demoColors()})

		header := strings.Index(out, "<header>")
		hero := strings.Index(out, `<section class="hero">`)
		products := strings.Index(out, `<section class="products">`)
		footer := strings.Index(out, "<footer>")

		for name, idx := range map[string]int{"header": header, "hero": hero, "featured-products": products, "footer": footer} {
			if idx < 0 {
				t.Fatalf("fallback composition is missing section %q:\n%s", name, out)
			}
		}
		if !(header < hero && hero < products && products < footer) {
			t.Errorf("sections out of order: header=%d hero=%d products=%d footer=%d", header, hero, products, footer)
		}
	})

	t.Run("Graceful Degradation On Malformed Input", func(t *testing.T) {
		files := demoFileSet()
		files["sections/broken.liquid"] = `{% if product.available %}{{ product.title {% endfor %} <div>dangling`

		out := Render(files, Options{ShopName: "Sturdy", Colors: demoColors()})
		if out == "" {
			t.Fatal("output must be non-empty")
		}
		if !strings.Contains(out, "<header>Sturdy</header>") {
			t.Error("well-formed files should still render")
		}
	})

	t.Run("Color Variables Present Verbatim", func(t *testing.T) {
		colors := models.ColorScheme{Primary: "#AbCdEf", Secondary: "#010203", Background: "#FEFEFE"}
		out := Render(demoFileSet(), Options{ShopName: "Chromatic", Colors: colors})

		for _, want := range []string{
			"--color-primary: #AbCdEf;",
			"--color-secondary: #010203;",
			"--color-background: #FEFEFE;",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing declaration %q", want)
			}
		}
	})

	t.Run("Missing Layout Synthesizes Wrapper", func(t *testing.T) {
		files := demoFileSet()
		delete(files, LayoutPath)

		out := Render(files, Options{ShopName: "Bare", PageTitle: "Bare Storefront", Colors: demoColors()})

		if !strings.Contains(out, "<!doctype html>") {
			t.Error("synthesized document should be complete HTML")
		}
		if !strings.Contains(out, "<title>Bare Storefront</title>") {
			t.Error("synthesized document should carry the page title")
		}
		if !strings.Contains(out, "<header>Bare</header>") {
			t.Error("main content should be present inside the wrapper")
		}
	})

	t.Run("Conditional Contents Are Dropped", func(t *testing.T) {
		files := models.TemplateFileSet{
			MainPath: `<p>kept</p>{% if cart.empty %}<p>conditional {{ shop.name }}</p>{% endif %}`,
		}

		out := Render(files, Options{ShopName: "Dropper", Colors: demoColors()})
		if !strings.Contains(out, "<p>kept</p>") {
			t.Error("unconditional markup should be kept")
		}
		if strings.Contains(out, "conditional") {
			t.Error("conditional contents must be stripped entirely")
		}
	})

	t.Run("Stylesheet Extraction And Order", func(t *testing.T) {
		files := models.TemplateFileSet{
			MainPath: `{% section 'hero' %}`,
			"sections/hero.liquid": `<div class="hero">hi</div>
{% stylesheet %}
.hero { padding: 4rem; }
{% endstylesheet %}`,
			LayoutPath: `<html><head></head><body>{{ content_for_layout }}
<style>body { outline: none; }</style></body></html>`,
		}

		out := Render(files, Options{ShopName: "Styled", Colors: demoColors()})

		rootIdx := strings.Index(out, ":root {")
		heroCSS := strings.Index(out, ".hero { padding: 4rem; }")
		layoutCSS := strings.Index(out, "body { outline: none; }")

		if rootIdx < 0 || heroCSS < 0 || layoutCSS < 0 {
			t.Fatalf("expected variables and both extracted stylesheets present:\n%s", out)
		}
		if !(rootIdx < layoutCSS && layoutCSS < heroCSS) {
			// layout/theme.liquid sorts before sections/hero.liquid, so its
			// extracted styles come first.
			t.Errorf("extracted styles out of order: root=%d layout=%d hero=%d", rootIdx, layoutCSS, heroCSS)
		}
		if strings.Count(out, "<style>") != 1 {
			t.Errorf("expected exactly one style element, got %d", strings.Count(out, "<style>"))
		}
	})

	t.Run("Section Name Normalization", func(t *testing.T) {
		files := models.TemplateFileSet{
			MainPath:               `{% section 'Featured_Products' %}`,
			"sections/featured-products.liquid": `<section>catalog</section>`,
		}

		out := Render(files, Options{ShopName: "Normal", Colors: demoColors()})
		if !strings.Contains(out, "<section>catalog</section>") {
			t.Errorf("hyphen/case variants should resolve to the same section, got:\n%s", out)
		}
	})

	t.Run("Unknown Section Reference Falls Back", func(t *testing.T) {
		files := demoFileSet()
		files[MainPath] = `{% section 'mystery' %}`

		out := Render(files, Options{ShopName: "Mystery", Colors: demoColors()})
		if !strings.Contains(out, "<header>Mystery</header>") {
			t.Error("referencing only unknown sections should use the default composition")
		}
	})

	t.Run("Empty File Set", func(t *testing.T) {
		out := Render(models.TemplateFileSet{}, Options{Colors: demoColors()})
		if !strings.Contains(out, "<!doctype html>") {
			t.Error("empty input should still yield a complete document")
		}
	})
}
