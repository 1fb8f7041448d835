package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"themeforge/internal/server"
	"themeforge/internal/shared"
)

// AuthLogin performs the OAuth2 authorization flow for a shop.
//
// Starts a local HTTP server on the redirect URI's port, opens the browser
// for authorization, exchanges the code for tokens, and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.config
	if configPath != "" && configPath != r.configPath {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		}
	}

	forge := config.Credentials.Forge
	if forge.ClientID == "" || forge.ClientSecret == "" {
		return fmt.Errorf("%w: Forge client_id and client_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     forge.ClientID,
		ClientSecret: forge.ClientSecret,
		RedirectURL:  forge.RedirectURI,
		Scopes:       []string{"themes", "shop"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  forge.BaseURL + "/oauth/authorize",
			TokenURL: forge.BaseURL + "/v1/oauth/token",
		},
	}

	result, err := r.doOAuth(oauthConfig)
	if err != nil {
		return err
	}

	token := result.Token
	shopDomain := forge.ShopDomain
	if result.ShopDomain != "" {
		shopDomain = result.ShopDomain
	} else if domain, ok := token.Extra("shop_domain").(string); ok && domain != "" {
		shopDomain = domain
	}

	if err := r.lifecycle.SetAuthenticated(token.AccessToken, token.RefreshToken, shopDomain); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	r.writePlainln("✓ Shop connected")
	r.writePlain("✓ Session saved to %s\n\n", sessionPath())
	r.writePlain("You can now use: themeforge generate\n")

	return nil
}

// AuthStatus checks the current session against the Forge API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.lifecycle.Initialize(ctx)

	status, err := r.forge.Status(ctx, r.lifecycle.Store().AccessToken())
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if !status.Active {
		r.writePlain("Authentication: ✗ Not connected\n")
		r.writePlain("Run 'themeforge auth login' to connect a shop\n")
		return nil
	}

	r.writePlain("Authentication: ✓ Connected\n")
	r.writePlain("Shop: %s\n", status.ShopDomain)
	if status.Plan != "" {
		r.writePlain("Plan: %s\n", status.Plan)
	}
	return nil
}

// AuthLogout invalidates the server-side session and clears local state.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.lifecycle.Initialize(ctx)
	r.lifecycle.Logout(ctx)

	r.writePlain("✓ Logged out\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(oauthConfig *oauth2.Config) (server.OAuthResult, error) {
	state := shared.GenerateID()
	authURL := oauthConfig.AuthCodeURL(state)

	oauthHandler := server.NewOAuthHandler(oauthConfig, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	redirect, err := url.Parse(oauthConfig.RedirectURL)
	if err != nil {
		return server.OAuthResult{}, fmt.Errorf("%w: invalid redirect URI: %v", shared.ErrInvalidConfig, err)
	}

	httpServer := &http.Server{
		Addr:    redirect.Host,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", redirect.Host)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser to connect your shop...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return server.OAuthResult{}, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return server.OAuthResult{}, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return server.OAuthResult{}, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return server.OAuthResult{}, fmt.Errorf("no token received")
	}

	return result, nil
}
