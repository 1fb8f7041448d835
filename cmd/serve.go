package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"themeforge/internal/auth"
	"themeforge/internal/server"
	"themeforge/internal/shared"
)

// Serve starts the local dashboard for browsing and previewing cached themes.
//
// The dashboard reuses the CLI's token lifecycle: /auth/start begins an OAuth
// flow whose callback lands on this server, and a successful exchange is
// persisted to the shared session file.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	r.lifecycle.Initialize(ctx)

	repo, db, err := r.openThemeStore()
	if err != nil {
		return err
	}
	defer db.Close()

	forge := r.config.Credentials.Forge
	state := shared.GenerateID()
	oauthConfig := &oauth2.Config{
		ClientID:     forge.ClientID,
		ClientSecret: forge.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://%s/callback", addr),
		Scopes:       []string{"themes", "shop"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  forge.BaseURL + "/oauth/authorize",
			TokenURL: forge.BaseURL + "/v1/oauth/token",
		},
	}

	oauthHandler := server.NewOAuthHandler(oauthConfig, state)
	authStart := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, oauthConfig.AuthCodeURL(state), http.StatusSeeOther)
	})

	go func() {
		result, ok := <-oauthHandler.Result()
		if !ok || result.Error() != nil || result.Token == nil {
			return
		}
		shopDomain := forge.ShopDomain
		if result.ShopDomain != "" {
			shopDomain = result.ShopDomain
		} else if domain, ok := result.Token.Extra("shop_domain").(string); ok && domain != "" {
			shopDomain = domain
		}
		if err := r.lifecycle.SetAuthenticated(result.Token.AccessToken, result.Token.RefreshToken, shopDomain); err != nil {
			r.logger.Warnf("failed to persist session: %v", err)
			return
		}
		r.logger.Info("shop connected", "shop", shopDomain)
	}()

	session := auth.NewSessionFile(sessionPath())
	dashboard := server.NewDashboard(r.lifecycle, session, repo, authStart, r.logger)

	router := server.NewBasicRouter()
	router.Handler(oauthHandler)
	router.Handler(dashboard)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("dashboard listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	r.writePlain("✓ Dashboard running at http://%s\n", addr)
	r.writePlain("Press Ctrl+C to stop\n")

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-serveCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	r.writePlain("\n✓ Dashboard stopped\n")
	return nil
}
