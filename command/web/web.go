package web

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"cloud-carbon/connectors/climatiq"
	"cloud-carbon/connectors/config"
	"cloud-carbon/connectors/metadata"
	"cloud-carbon/domain/batch"
	"cloud-carbon/domain/emissions"
)

// Run starts a small Echo web server backing the browser calculator: a JSON
// API for batch accumulation and calculation plus an optional SPA dashboard.
//
// Usage:
//
//	cloud-carbon web [-addr :8080] [-ui ./ui/dist]
//
// Endpoints:
//
//	GET  /api/providers                  -> provider ids and display names
//	GET  /api/metadata                   -> region/instance catalog per provider
//	GET  /api/batches                    -> current entries of all six batches
//	POST /api/batch/:provider/vm         -> append one VM entry
//	POST /api/batch/:provider/storage    -> append one storage entry
//	POST /api/batch/reset                -> clear all batches
//	POST /api/calculate                  -> breakdown, total and chart data
//
// When -ui points to a built Vite app (index.html exists), static files are
// served at / and unknown routes fall back to index.html for SPA routing.
func Run(args []string) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Web.Addr, "http listen address (host:port)")
	uiDir := fs.String("ui", cfg.Web.UIDir, "directory containing built UI (Vite dist)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := climatiq.NewClient(cfg.Climatiq.BaseURL, config.APIKey(), time.Duration(cfg.Climatiq.TimeoutSeconds)*time.Second)
	srv := newServer(batch.NewStore(), metadata.Load(cfg.Metadata.Path), emissions.NewAggregator(client))

	e := echo.New()
	srv.register(e)

	// Static UI (optional)
	indexPath := filepath.Join(*uiDir, "index.html")
	if fi, err := os.Stat(indexPath); err == nil && !fi.IsDir() {
		// Serve built assets under /
		e.Static("/", *uiDir)
		// Root path -> index.html
		e.GET("/", func(c echo.Context) error { return c.File(indexPath) })

		// Fallback to index.html for non-API 404s (SPA routing) while keeping static assets working
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
				p := c.Request().URL.Path
				if !strings.HasPrefix(p, "/api") {
					_ = c.File(indexPath)
					return
				}
			}
			e.DefaultHTTPErrorHandler(err, c)
		}
	}

	return e.Start(*addr)
}
