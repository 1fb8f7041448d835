package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"themeforge/internal/models"
	"themeforge/internal/shared"
	"themeforge/internal/tasks"
)

// ViewState represents the current step in the wizard.
type ViewState int

const (
	BrandView ViewState = iota
	ColorsView
	VisionView
	ProductsView
	ReviewView
	GenerateView
	ResultView
)

// Field indices within the brand step.
const (
	brandName = iota
	brandTagline
	brandIndustry
	brandAbout
)

// Field indices within the colors step.
const (
	colorPrimary = iota
	colorSecondary
	colorBackground
)

// Field indices within the products step.
const (
	productTitle = iota
	productDescription
	productPrice
	productImageURL
)

const draftSaveDelay = 750 * time.Millisecond

// DraftSaver persists an in-progress generation request so an interrupted
// wizard session can be resumed.
type DraftSaver func(models.GenerationRequest) error

// Model represents the wizard application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine tasks.Engine
	width  int
	height int

	brandInputs   []textinput.Model
	colorInputs   []textinput.Model
	vision        textarea.Model
	productInputs []textinput.Model
	products      []models.Product
	focus         int
	fieldErr      string

	saveDraft DraftSaver
	debouncer *shared.Debouncer

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.GenerationRunResult
	err          error
	help         help.Model
	keys         keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type generateCompleteMsg struct {
	result *tasks.GenerationRunResult
	err    error
}

// NewModel creates a wizard model with the provided dependencies. saveDraft
// may be nil to disable draft autosave.
func NewModel(ctx context.Context, engine tasks.Engine, saveDraft DraftSaver) *Model {
	m := &Model{
		ctx:       ctx,
		view:      BrandView,
		engine:    engine,
		saveDraft: saveDraft,
		debouncer: shared.NewDebouncer(draftSaveDelay),
		help:      help.New(),
		keys:      newKeyMap(),
	}

	m.brandInputs = makeInputs("Brand name", "Tagline", "Industry", "What the brand is about")
	m.colorInputs = makeInputs("#1a1a2e", "#e94560", "#ffffff")
	m.productInputs = makeInputs("Product title", "Description", "Price", "Image URL")

	m.vision = textarea.New()
	m.vision.Placeholder = "Describe the look and feel you want for the storefront..."
	m.vision.SetWidth(60)
	m.vision.SetHeight(5)

	m.brandInputs[brandName].Focus()
	return m
}

func makeInputs(placeholders ...string) []textinput.Model {
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.CharLimit = 200
		in.Width = 48
		inputs[i] = in
	}
	return inputs
}

// Request assembles a [models.GenerationRequest] from the current wizard state.
// Empty color fields fall back to the preview defaults.
func (m *Model) Request() models.GenerationRequest {
	return models.GenerationRequest{
		Brand: models.BrandProfile{
			Name:     strings.TrimSpace(m.brandInputs[brandName].Value()),
			Tagline:  strings.TrimSpace(m.brandInputs[brandTagline].Value()),
			Industry: strings.TrimSpace(m.brandInputs[brandIndustry].Value()),
			About:    strings.TrimSpace(m.brandInputs[brandAbout].Value()),
		},
		Colors: models.ColorScheme{
			Primary:    strings.TrimSpace(m.colorInputs[colorPrimary].Value()),
			Secondary:  strings.TrimSpace(m.colorInputs[colorSecondary].Value()),
			Background: strings.TrimSpace(m.colorInputs[colorBackground].Value()),
		},
		Vision:   strings.TrimSpace(m.vision.Value()),
		Products: m.products,
	}
}

// SeedRequest pre-fills the wizard from a previously saved draft.
func (m *Model) SeedRequest(req models.GenerationRequest) {
	m.brandInputs[brandName].SetValue(req.Brand.Name)
	m.brandInputs[brandTagline].SetValue(req.Brand.Tagline)
	m.brandInputs[brandIndustry].SetValue(req.Brand.Industry)
	m.brandInputs[brandAbout].SetValue(req.Brand.About)
	m.colorInputs[colorPrimary].SetValue(req.Colors.Primary)
	m.colorInputs[colorSecondary].SetValue(req.Colors.Secondary)
	m.colorInputs[colorBackground].SetValue(req.Colors.Background)
	m.vision.SetValue(req.Vision)
	m.products = req.Products
}

// Result returns the outcome of the last generation run, if any.
func (m *Model) Result() (*tasks.GenerationRunResult, error) {
	return m.result, m.err
}

// Init starts the cursor blink for the focused input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.debouncer.Stop()
			return m, tea.Quit
		}

		switch m.view {
		case BrandView:
			return m.handleBrandKeys(msg)
		case ColorsView:
			return m.handleColorKeys(msg)
		case VisionView:
			return m.handleVisionKeys(msg)
		case ProductsView:
			return m.handleProductKeys(msg)
		case ReviewView:
			return m.handleReviewKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case generateCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateInputs(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case BrandView:
		return m.renderBrand()
	case ColorsView:
		return m.renderColors()
	case VisionView:
		return m.renderVision()
	case ProductsView:
		return m.renderProducts()
	case ReviewView:
		return m.renderReview()
	case GenerateView:
		return m.renderGenerate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleBrandKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, m.focusInput(m.brandInputs, m.focus+1)
	case "shift+tab", "up":
		return m, m.focusInput(m.brandInputs, m.focus-1)
	case "enter":
		if m.focus < len(m.brandInputs)-1 {
			return m, m.focusInput(m.brandInputs, m.focus+1)
		}
		if strings.TrimSpace(m.brandInputs[brandName].Value()) == "" {
			m.fieldErr = "Brand name is required"
			return m, m.focusInput(m.brandInputs, brandName)
		}
		m.fieldErr = ""
		m.view = ColorsView
		return m, m.focusInput(m.colorInputs, 0)
	}

	return m.updateFocused(m.brandInputs, msg)
}

func (m *Model) handleColorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, m.focusInput(m.colorInputs, m.focus+1)
	case "shift+tab", "up":
		return m, m.focusInput(m.colorInputs, m.focus-1)
	case "esc":
		m.view = BrandView
		return m, m.focusInput(m.brandInputs, 0)
	case "enter":
		if m.focus < len(m.colorInputs)-1 {
			return m, m.focusInput(m.colorInputs, m.focus+1)
		}
		if bad := m.invalidColor(); bad != "" {
			m.fieldErr = fmt.Sprintf("%q is not a hex color", bad)
			return m, nil
		}
		m.fieldErr = ""
		m.view = VisionView
		m.blurAll(m.colorInputs)
		return m, m.vision.Focus()
	}

	return m.updateFocused(m.colorInputs, msg)
}

func (m *Model) invalidColor() string {
	for _, in := range m.colorInputs {
		if v := strings.TrimSpace(in.Value()); v != "" && !shared.IsHexColor(v) {
			return v
		}
	}
	return ""
}

func (m *Model) handleVisionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = ColorsView
		m.vision.Blur()
		return m, m.focusInput(m.colorInputs, 0)
	case "tab":
		m.view = ProductsView
		m.vision.Blur()
		return m, m.focusInput(m.productInputs, 0)
	}

	var cmd tea.Cmd
	m.vision, cmd = m.vision.Update(msg)
	m.scheduleDraftSave()
	return m, cmd
}

func (m *Model) handleProductKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, m.focusInput(m.productInputs, m.focus+1)
	case "shift+tab", "up":
		return m, m.focusInput(m.productInputs, m.focus-1)
	case "esc":
		m.view = VisionView
		m.blurAll(m.productInputs)
		return m, m.vision.Focus()
	case "enter":
		if m.focus < len(m.productInputs)-1 {
			return m, m.focusInput(m.productInputs, m.focus+1)
		}

		title := strings.TrimSpace(m.productInputs[productTitle].Value())
		if title == "" {
			// Enter with no title finishes the step.
			m.view = ReviewView
			m.blurAll(m.productInputs)
			return m, nil
		}

		m.products = append(m.products, models.Product{
			Title:       title,
			Description: strings.TrimSpace(m.productInputs[productDescription].Value()),
			Price:       strings.TrimSpace(m.productInputs[productPrice].Value()),
			ImageURL:    strings.TrimSpace(m.productInputs[productImageURL].Value()),
		})
		for i := range m.productInputs {
			m.productInputs[i].SetValue("")
		}
		m.scheduleDraftSave()
		return m, m.focusInput(m.productInputs, productTitle)
	}

	return m.updateFocused(m.productInputs, msg)
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.debouncer.Stop()
		return m, tea.Quit
	case "n", "esc":
		m.view = BrandView
		return m, m.focusInput(m.brandInputs, 0)
	case "y", "enter":
		m.view = GenerateView
		return m, m.startGeneration()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.debouncer.Stop()
		return m, tea.Quit
	case "r":
		m.result = nil
		m.err = nil
		m.view = BrandView
		return m, m.focusInput(m.brandInputs, 0)
	}
	return m, nil
}

func (m *Model) focusInput(inputs []textinput.Model, idx int) tea.Cmd {
	if idx < 0 {
		idx = len(inputs) - 1
	}
	if idx >= len(inputs) {
		idx = 0
	}

	m.focus = idx
	for i := range inputs {
		if i == idx {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
	return textinput.Blink
}

func (m *Model) blurAll(inputs []textinput.Model) {
	for i := range inputs {
		inputs[i].Blur()
	}
}

func (m *Model) updateFocused(inputs []textinput.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	inputs[m.focus], cmd = inputs[m.focus].Update(msg)
	m.scheduleDraftSave()
	return m, cmd
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BrandView:
		m.brandInputs[m.focus], cmd = m.brandInputs[m.focus].Update(msg)
	case ColorsView:
		m.colorInputs[m.focus], cmd = m.colorInputs[m.focus].Update(msg)
	case VisionView:
		m.vision, cmd = m.vision.Update(msg)
	case ProductsView:
		m.productInputs[m.focus], cmd = m.productInputs[m.focus].Update(msg)
	}
	return m, cmd
}

// scheduleDraftSave captures the current request and persists it after the
// debounce delay. The snapshot is taken here so the background write never
// reads wizard state concurrently with Update.
func (m *Model) scheduleDraftSave() {
	if m.saveDraft == nil {
		return
	}
	req := m.Request()
	save := m.saveDraft
	m.debouncer.Trigger(func() {
		_ = save(req)
	})
}

func (m *Model) startGeneration() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.debouncer.Stop()

	go func() {
		result, err := m.engine.Generate(m.ctx, m.progressChan, m.Request())
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return generateCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return generateCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderBrand() string {
	return m.renderForm("Tell us about your brand", m.brandInputs,
		[]string{"Name", "Tagline", "Industry", "About"},
		[]key.Binding{m.keys.next, m.keys.quit})
}

func (m *Model) renderColors() string {
	title := styles.title.Render("Pick your brand colors")
	labels := []string{"Primary", "Secondary", "Background"}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for i, in := range m.colorInputs {
		swatch := ""
		if v := strings.TrimSpace(in.Value()); shared.IsHexColor(v) {
			swatch = " " + Swatch(v)
		}
		fmt.Fprintf(&b, "%-11s %s%s\n", labels[i], in.View(), swatch)
	}
	b.WriteString("\nLeave a field blank to use the default.\n")

	if m.fieldErr != "" {
		b.WriteString("\n" + styles.err.Render(m.fieldErr) + "\n")
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.back, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderVision() string {
	title := styles.title.Render("Describe your vision")
	nextKey := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "continue"))
	helpKeys := []key.Binding{nextKey, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.vision.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderProducts() string {
	title := styles.title.Render("Add products (optional)")
	labels := []string{"Title", "Description", "Price", "Image URL"}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")

	if len(m.products) > 0 {
		for _, p := range m.products {
			line := p.Title
			if p.Price != "" {
				line = fmt.Sprintf("%s — %s", line, p.Price)
			}
			b.WriteString(styles.ok.Render("✓ ") + line + "\n")
		}
		b.WriteString("\n")
	}

	for i, in := range m.productInputs {
		fmt.Fprintf(&b, "%-12s %s\n", labels[i], in.View())
	}
	b.WriteString("\nPress enter on an empty title to finish.\n")

	helpKeys := []key.Binding{m.keys.next, m.keys.back, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderReview() string {
	req := m.Request()
	title := styles.title.Render(fmt.Sprintf("Generate a theme for '%s'?", req.Brand.Name))

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Brand:    %s\n", req.Brand.Name)
	if req.Brand.Tagline != "" {
		fmt.Fprintf(&b, "Tagline:  %s\n", req.Brand.Tagline)
	}
	if req.Brand.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", req.Brand.Industry)
	}
	fmt.Fprintf(&b, "Colors:   %s %s %s\n",
		colorOrDefault(req.Colors.Primary, "#1a1a2e"),
		colorOrDefault(req.Colors.Secondary, "#e94560"),
		colorOrDefault(req.Colors.Background, "#ffffff"))
	if req.Vision != "" {
		fmt.Fprintf(&b, "Vision:   %s\n", req.Vision)
	}
	fmt.Fprintf(&b, "Products: %d\n", len(req.Products))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func colorOrDefault(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}

func (m *Model) renderGenerate() string {
	title := styles.title.Render("Generating Theme")

	var phase string
	switch m.progress.Phase {
	case tasks.SubmitRequest:
		phase = "Submitting generation request..."
	case tasks.AwaitGeneration:
		phase = "Waiting for the Forge backend..."
	case tasks.RenderPreview:
		phase = "Rendering preview..."
	case tasks.CacheTheme:
		phase = "Caching theme locally..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Generation failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Theme Generated!")
	info := fmt.Sprintf(
		"\nTheme: %s\nFiles: %d\nTime:  %s",
		m.result.Theme.Name,
		m.result.FileCount,
		m.result.Elapsed.Round(time.Millisecond),
	)
	if m.result.LocalID != "" {
		info += fmt.Sprintf("\nCached locally as %s", m.result.LocalID)
	} else {
		info += "\n" + styles.warn.Render("Theme was not cached locally")
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderForm(heading string, inputs []textinput.Model, labels []string, helpKeys []key.Binding) string {
	title := styles.title.Render(heading)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for i, in := range inputs {
		fmt.Fprintf(&b, "%-10s %s\n", labels[i], in.View())
	}

	if m.fieldErr != "" {
		b.WriteString("\n" + styles.err.Render(m.fieldErr) + "\n")
	}

	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}
