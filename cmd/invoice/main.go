// Command invoice renders an invoice from an order exported as JSON.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/safetyshop-backend/internal/invoice"
	"github.com/angelmondragon/safetyshop-backend/internal/invoice/pdf"
	"github.com/angelmondragon/safetyshop-backend/pkg/config"
	"github.com/angelmondragon/safetyshop-backend/pkg/currency"
	"github.com/angelmondragon/safetyshop-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "invoice", Format: "console"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	in := flag.String("in", "-", "order JSON file, - for stdin")
	out := flag.String("out", "", "output path (defaults to the invoice filename)")
	asJSON := flag.Bool("json", false, "write the normalized invoice document instead of a PDF")
	flag.Parse()

	cfg, err := loadConfig(ctx, logg)
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	order, err := readOrder(*in)
	if err != nil {
		logg.Error(ctx, "failed to read order", err)
		os.Exit(1)
	}

	builder := invoice.NewBuilder(logg, invoice.LetterheadFromConfig(cfg.Company), cfg.Invoice.NumberPrefix)
	doc, err := builder.Build(ctx, order)
	if err != nil {
		logg.Error(ctx, "failed to build invoice", err)
		os.Exit(1)
	}

	var body []byte
	if *asJSON {
		body, err = json.MarshalIndent(doc, "", "  ")
	} else {
		renderCtx, cancel := renderContext(ctx, cfg.Invoice.RenderTimeout)
		defer cancel()
		renderer := pdf.NewRenderer(currency.New(cfg.Invoice.Locale, cfg.Invoice.CurrencySymbol, cfg.Invoice.Timezone), cfg.Invoice.FooterNote)
		body, err = renderer.Render(renderCtx, doc)
	}
	if err != nil {
		logg.Error(ctx, "failed to render invoice", err)
		os.Exit(1)
	}

	path := *out
	if path == "" {
		path = invoice.Filename(doc, "invoice")
		if *asJSON {
			path = path[:len(path)-len(filepath.Ext(path))] + ".json"
		}
	}
	if path == "-" {
		_, err = os.Stdout.Write(body)
	} else {
		err = os.WriteFile(path, body, 0o644)
	}
	if err != nil {
		logg.Error(ctx, "failed to write invoice", err)
		os.Exit(1)
	}
	if path != "-" {
		fmt.Fprintln(os.Stderr, "wrote", path)
	}
}

// renderContext bounds rendering by timeout; zero or negative means unbounded.
func renderContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// loadConfig tolerates a missing environment; the command needs no database.
func loadConfig(ctx context.Context, logg *logger.Logger) (*config.Config, error) {
	defaults := map[string]string{}
	if os.Getenv(config.EnvAppEnv) == "" {
		defaults[config.EnvAppEnv] = config.AppEnvDev
	}
	if os.Getenv(config.EnvDBDSN) == "" && os.Getenv(config.EnvDBHost) == "" {
		defaults[config.EnvUseSQLite] = "true"
	}
	for key, value := range defaults {
		if err := os.Setenv(key, value); err != nil {
			logg.Warn(logg.WithFields(ctx, map[string]any{"env": key, "error": err.Error()}), "failed to apply config default")
		}
	}
	return config.Load()
}

func readOrder(path string) (any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(raw)
	}
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	var order any
	if err := decoder.Decode(&order); err != nil {
		return nil, fmt.Errorf("decoding order: %w", err)
	}
	return order, nil
}
