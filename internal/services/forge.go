// Forge API implementation of [Service]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"themeforge/internal/auth"
	"themeforge/internal/models"
	"themeforge/internal/shared"
)

const defaultForgeBaseURL = "https://api.forge.dev"

// forgeTheme is the wire representation of a theme.
type forgeTheme struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	ShopDomain string            `json:"shop_domain"`
	Files      map[string]string `json:"files"`
}

func (t forgeTheme) toModel() models.Theme {
	return models.Theme{
		ID:         t.ID,
		Name:       t.Name,
		ShopDomain: t.ShopDomain,
		Files:      models.TemplateFileSet(t.Files),
	}
}

type forgeThemeList struct {
	Themes []forgeTheme `json:"themes"`
}

// forgeSession is the token triple every session endpoint returns.
type forgeSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ShopDomain   string `json:"shop_domain"`
}

func (s forgeSession) toState() auth.TokenState {
	return auth.TokenState{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ShopDomain:   s.ShopDomain,
	}
}

type generatePayload struct {
	Brand           brandPayload     `json:"brand"`
	Colors          colorPayload     `json:"colors"`
	Vision          string           `json:"vision,omitempty"`
	Products        []productPayload `json:"products,omitempty"`
	ReferenceImages []string         `json:"reference_images,omitempty"`
}

type brandPayload struct {
	Name     string `json:"name"`
	Tagline  string `json:"tagline,omitempty"`
	Industry string `json:"industry,omitempty"`
	About    string `json:"about,omitempty"`
}

type colorPayload struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
}

type productPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

func toGeneratePayload(req models.GenerationRequest) generatePayload {
	p := generatePayload{
		Brand: brandPayload{
			Name:     req.Brand.Name,
			Tagline:  req.Brand.Tagline,
			Industry: req.Brand.Industry,
			About:    req.Brand.About,
		},
		Colors: colorPayload{
			Primary:    req.Colors.Primary,
			Secondary:  req.Colors.Secondary,
			Background: req.Colors.Background,
		},
		Vision:          req.Vision,
		ReferenceImages: req.ReferenceImages,
	}
	for _, prod := range req.Products {
		p.Products = append(p.Products, productPayload{
			Title:       prod.Title,
			Description: prod.Description,
			Price:       prod.Price,
			ImageURL:    prod.ImageURL,
		})
	}
	return p
}

// apiFailure mirrors the backend's stable error envelope.
type apiFailure struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ForgeService implements [Service] against the Forge HTTP API. Theme
// operations go through the gate; session operations go through the plain
// client. It also implements [auth.SessionAPI].
type ForgeService struct {
	baseURL string
	gate    Doer
	client  *http.Client
	logger  *log.Logger
}

// NewForgeService creates a Forge client. gate carries authenticated theme
// traffic; a nil client or empty baseURL falls back to defaults.
func NewForgeService(baseURL string, gate Doer, client *http.Client, logger *log.Logger) *ForgeService {
	if baseURL == "" {
		baseURL = defaultForgeBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ForgeService{
		baseURL: baseURL,
		gate:    gate,
		client:  client,
		logger:  logger,
	}
}

func (f *ForgeService) Name() string {
	return "Forge"
}

// SetGate installs the authenticated transport after construction. The gate
// depends on the token lifecycle, which depends on this service for refresh
// calls, so startup wiring closes the cycle here before any theme operation.
func (f *ForgeService) SetGate(gate Doer) {
	f.gate = gate
}

// doRequest performs one HTTP exchange through the given doer, encoding body
// as JSON when present and decoding a 2xx response into result.
func (f *ForgeService) doRequest(ctx context.Context, doer Doer, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doer.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return f.failureError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// failureError converts a non-2xx response into a typed error, consuming the
// body for the error envelope.
func (f *ForgeService) failureError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var failure apiFailure
	_ = json.Unmarshal(data, &failure)
	code := failure.Error.Code
	if code == "" {
		code = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrThemeNotFound, code)
	case code == "generation_failed":
		return fmt.Errorf("%w: %s", shared.ErrGenerationFailed, failure.Error.Message)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d (%s)", shared.ErrServiceUnavailable, resp.StatusCode, code)
	default:
		return fmt.Errorf("%w: status %d (%s)", shared.ErrAPIRequest, resp.StatusCode, code)
	}
}

// Generate submits a generation request and blocks until the backend returns
// the finished theme.
func (f *ForgeService) Generate(ctx context.Context, req models.GenerationRequest) (*models.Theme, error) {
	var wire forgeTheme
	if err := f.doRequest(ctx, f.gate, http.MethodPost, "/v1/themes/generate", toGeneratePayload(req), &wire); err != nil {
		return nil, err
	}

	theme := wire.toModel()
	f.logger.Infof("generated theme %s (%d files)", theme.ID, len(theme.Files))
	return &theme, nil
}

// ListThemes retrieves every theme for the authenticated shop.
func (f *ForgeService) ListThemes(ctx context.Context) ([]models.Theme, error) {
	var wire forgeThemeList
	if err := f.doRequest(ctx, f.gate, http.MethodGet, "/v1/themes", nil, &wire); err != nil {
		return nil, err
	}

	themes := make([]models.Theme, 0, len(wire.Themes))
	for _, t := range wire.Themes {
		themes = append(themes, t.toModel())
	}
	return themes, nil
}

// GetTheme retrieves a single theme with its full file set.
func (f *ForgeService) GetTheme(ctx context.Context, themeID string) (*models.Theme, error) {
	var wire forgeTheme
	if err := f.doRequest(ctx, f.gate, http.MethodGet, "/v1/themes/"+themeID, nil, &wire); err != nil {
		return nil, err
	}

	theme := wire.toModel()
	return &theme, nil
}

// UpdateTheme replaces a theme's name and files on the backend.
func (f *ForgeService) UpdateTheme(ctx context.Context, theme *models.Theme) (*models.Theme, error) {
	payload := forgeTheme{
		ID:         theme.ID,
		Name:       theme.Name,
		ShopDomain: theme.ShopDomain,
		Files:      theme.Files,
	}

	var wire forgeTheme
	if err := f.doRequest(ctx, f.gate, http.MethodPut, "/v1/themes/"+theme.ID, payload, &wire); err != nil {
		return nil, err
	}

	updated := wire.toModel()
	return &updated, nil
}

// DeleteTheme removes a theme from the backend.
func (f *ForgeService) DeleteTheme(ctx context.Context, themeID string) error {
	return f.doRequest(ctx, f.gate, http.MethodDelete, "/v1/themes/"+themeID, nil, nil)
}

// ExchangeCode trades an OAuth authorization code for a token triple. Used
// once at the end of the login flow.
func (f *ForgeService) ExchangeCode(ctx context.Context, code, redirectURI string) (auth.TokenState, error) {
	payload := map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": redirectURI,
	}

	var session forgeSession
	if err := f.doRequest(ctx, f.client, http.MethodPost, "/v1/oauth/token", payload, &session); err != nil {
		return auth.TokenState{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return session.toState(), nil
}

// RefreshSession exchanges a refresh token for a new token triple. Travels
// through the plain client: the credential is the body, not a bearer header.
func (f *ForgeService) RefreshSession(ctx context.Context, refreshToken string) (auth.TokenState, error) {
	payload := map[string]string{"refresh_token": refreshToken}

	var session forgeSession
	if err := f.doRequest(ctx, f.client, http.MethodPost, "/v1/session/refresh", payload, &session); err != nil {
		return auth.TokenState{}, err
	}

	return session.toState(), nil
}

// LogoutSession invalidates the server-side session for a shop domain.
func (f *ForgeService) LogoutSession(ctx context.Context, shopDomain string) error {
	payload := map[string]string{"shop_domain": shopDomain}
	return f.doRequest(ctx, f.client, http.MethodPost, "/v1/session/logout", payload, nil)
}

// Status asks the backend whether the given access token still names an
// active session. Diagnostic only; the persisted session file, not this
// endpoint, decides the startup state.
func (f *ForgeService) Status(ctx context.Context, accessToken string) (*SessionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/v1/session", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &SessionStatus{Active: false}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, f.failureError(resp)
	}

	var status SessionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &status, nil
}
