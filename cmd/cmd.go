// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles shop authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage shop authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Connect a shop via OAuth in the browser",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check the current session against the Forge API",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Invalidate the session and clear local credentials",
				Action: r.AuthLogout,
			},
		},
	}
}

// generateCommand handles theme generation, interactive and flag-driven.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a theme from a brand description",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "brand",
				Usage: "Brand name (skips the wizard when set)",
			},
			&cli.StringFlag{
				Name:  "tagline",
				Usage: "Brand tagline",
			},
			&cli.StringFlag{
				Name:  "industry",
				Usage: "Brand industry",
			},
			&cli.StringFlag{
				Name:  "vision",
				Usage: "Free-form description of the desired look",
			},
			&cli.StringFlag{
				Name:  "primary",
				Usage: "Primary brand color (hex)",
			},
			&cli.StringFlag{
				Name:  "secondary",
				Usage: "Secondary brand color (hex)",
			},
			&cli.StringFlag{
				Name:  "background",
				Usage: "Background color (hex)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip caching the generated theme locally",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run summary as JSON",
			},
		},
		Action: r.Generate,
	}
}

// themesCommand handles operations on locally cached themes.
func themesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "themes",
		Aliases: []string{"theme"},
		Usage:   "Manage locally cached themes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached themes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "shop",
						Usage: "Filter by shop domain",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ThemesList,
			},
			{
				Name:  "show",
				Usage: "Show a cached theme with its file listing",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ThemesShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a cached theme",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ThemesDelete,
			},
			{
				Name:  "export",
				Usage: "Export cached themes to disk as theme directories",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Theme ID to export (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every cached theme",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent export workers",
						Value: 4,
					},
				},
				Action: r.ThemesExport,
			},
		},
	}
}

// previewCommand renders a cached theme to a standalone HTML document.
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Render a cached theme to a preview HTML document",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the rendered preview in the browser",
			},
		},
		Action: r.Preview,
	}
}

// serveCommand starts the local dashboard server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the local dashboard for browsing and previewing themes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}
