package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/beachspainc/hostui"
	hostuiecho "github.com/beachspainc/hostui/adapters/echo"
	"github.com/beachspainc/hostui/lib/config"
	"github.com/beachspainc/hostui/lib/dom"
	"github.com/beachspainc/hostui/lib/logging"
	"github.com/beachspainc/hostui/lib/markup"
	"github.com/beachspainc/hostui/widgets"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "inject":
		if err := runInject(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "widgets":
		for _, name := range newRegistry(widgets.DefaultConfig()).Names() {
			fmt.Println(name)
		}
	case "version":
		fmt.Printf("hostui version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hostui - widget injection for HTML host pages

Usage:
  hostui <command> [arguments]

Commands:
  inject <page> [options]   Inject widgets into a page (file path or URL)
  serve [upstream]          Proxy an upstream site with widgets injected
  widgets                   List the available widgets
  version                   Print version
  help                      Show this help

Options for inject:
  -o, --out <file>          Write the patched page to file (default stdout)
  -w, --widget <name>       Widget to inject, repeatable (default HOSTUI_WIDGETS_NAMES)

Options for serve:
  --addr <addr>             Listen address (default HOSTUI_SERVER_ADDR)

Environment:
  HOSTUI_LOGGING_LEVEL, HOSTUI_FETCH_TIMEOUT, HOSTUI_STATE_KEY, ...

Examples:
  hostui inject booking.html -o patched.html
  hostui inject https://booking.example.com -w calendar -w tip-tag
  hostui serve https://booking.example.com --addr :9000`)
}

type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func newRegistry(cfg widgets.Config) *hostui.Registry {
	reg := hostui.NewRegistry()
	widgets.Register(reg, cfg)
	return reg
}

func (e *env) injector(names []string) *hostui.Injector {
	if len(names) == 0 {
		names = e.cfg.Widgets.Names
	}
	reg := newRegistry(widgets.ConfigFrom(e.cfg.Widgets))
	return hostui.NewInjector(reg, names, func(doc *dom.Document) (*hostui.Host, error) {
		return hostui.NewHostFromConfig(doc, e.cfg, e.logger)
	})
}

// pageFetcher retrieves host pages. Pages are never sanitised.
func (e *env) pageFetcher() markup.Fetcher {
	return markup.NewHTTPFetcher(markup.Options{
		Timeout:   e.cfg.Fetch.Timeout,
		Retries:   e.cfg.Fetch.Retries,
		UserAgent: e.cfg.Fetch.UserAgent,
		RateLimit: e.cfg.Fetch.RateLimit,
	})
}

func runInject(args []string) error {
	var source, out string
	var names []string

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-o", "--out", "-w", "--widget":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			i++
			if arg == "-o" || arg == "--out" {
				out = args[i]
			} else {
				names = append(names, args[i])
			}
		default:
			if source != "" {
				return fmt.Errorf("unexpected argument: %s", arg)
			}
			source = arg
		}
	}
	if source == "" {
		return errors.New("inject requires a page")
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	ctx := context.Background()
	page, err := e.readPage(ctx, source)
	if err != nil {
		return err
	}
	patched, err := e.injector(names).Inject(ctx, page)
	if err != nil {
		return err
	}

	if out == "" {
		_, err = fmt.Fprint(os.Stdout, patched)
		return err
	}
	return os.WriteFile(out, []byte(patched), 0o644)
}

func (e *env) readPage(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return e.pageFetcher().Fetch(ctx, source)
	}
	b, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func runServe(args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	upstream := e.cfg.Server.Upstream
	addr := e.cfg.Server.Addr
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--addr", "-addr":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			i++
			addr = args[i]
		default:
			upstream = arg
		}
	}
	if upstream == "" {
		return errors.New("serve requires an upstream URL (argument or HOSTUI_SERVER_UPSTREAM)")
	}

	srv := echo.New()
	srv.HideBanner = true
	hostuiecho.Mount(srv, upstream, e.injector(nil), hostuiecho.WithFetcher(e.pageFetcher()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("serving", zap.String("addr", addr), zap.String("upstream", upstream))
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
