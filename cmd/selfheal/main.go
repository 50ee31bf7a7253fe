package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/emreeduymaz/self-healing-ios/internal/config"
	"github.com/emreeduymaz/self-healing-ios/internal/element"
	"github.com/emreeduymaz/self-healing-ios/internal/healing"
	"github.com/emreeduymaz/self-healing-ios/internal/server"
	"github.com/emreeduymaz/self-healing-ios/internal/store"
	"github.com/emreeduymaz/self-healing-ios/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if corpus := c.String("corpus"); corpus != "" {
		cfg.Store.Path = corpus
	}
	if c.IsSet("threshold") {
		cfg.Matching.SimilarityThreshold = c.Float64("threshold")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func newService(c *cli.Context) (*healing.Service, *config.Config, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}
	return healing.New(cfg, store.New(cfg.Store)), cfg, nil
}

// elementFlags are shared by the commands that build a query element.
func elementFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "element id of the query"},
		&cli.StringFlag{Name: "xpath", Usage: "XPath locator of the query"},
		&cli.StringFlag{Name: "accessibility-id", Usage: "accessibility id of the query"},
		&cli.StringFlag{Name: "class-name", Usage: "class name of the query"},
		&cli.StringFlag{Name: "name", Usage: "name attribute of the query"},
		&cli.StringFlag{Name: "screen", Usage: "screen the query belongs to"},
		&cli.StringFlag{Name: "type", Usage: "element type of the query"},
	}
}

func elementFromFlags(c *cli.Context) element.Element {
	return element.Element{
		ElementID:       c.String("id"),
		XPath:           c.String("xpath"),
		AccessibilityID: c.String("accessibility-id"),
		ClassName:       c.String("class-name"),
		Name:            c.String("name"),
		Screen:          c.String("screen"),
		ElementType:     c.String("type"),
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	app := &cli.App{
		Name:                   "selfheal",
		Usage:                  "Self-healing UI element matching for iOS test suites",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.DefaultConfigFile,
			},
			&cli.StringFlag{
				Name:  "corpus",
				Usage: "Element corpus file or glob (overrides config)",
			},
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Similarity acceptance threshold (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit machine-readable JSON output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the self-healing HTTP server",
				Action: runServe,
			},
			{
				Name:   "find",
				Usage:  "Find the best corpus match for a query element",
				Flags:  elementFlags(),
				Action: runFind,
			},
			{
				Name:   "suggest",
				Usage:  "List ranked alternatives for a query element",
				Flags:  elementFlags(),
				Action: runSuggest,
			},
			{
				Name:      "compare",
				Usage:     "Score two raw strings against each other",
				ArgsUsage: "<first> <second>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "xpath", Usage: "Compare as XPath locators"},
				},
				Action: runCompare,
			},
			{
				Name:   "validate",
				Usage:  "Check whether an element is usable as a query",
				Flags:  elementFlags(),
				Action: runValidate,
			},
			{
				Name:   "stats",
				Usage:  "Show corpus statistics",
				Action: runStats,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	st := store.New(cfg.Store)
	service := healing.New(cfg, st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Store.Watch {
		watcher, err := store.NewWatcher(st)
		if err != nil {
			return err
		}
		defer watcher.Close()
		go func() {
			_ = watcher.Run(ctx)
		}()
	}

	srv := server.New(cfg, service)
	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Printf("Self-healing server listening on %s\n", srv.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func runFind(c *cli.Context) error {
	service, _, err := newService(c)
	if err != nil {
		return err
	}

	outcome, err := service.FindElement(elementFromFlags(c))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return printJSON(outcome)
	}

	fmt.Printf("Status: %s (score %.3f)\n", outcome.Kind, outcome.Score)
	if outcome.Matched != nil {
		printElement(*outcome.Matched)
	}
	if outcome.AutoApplied {
		fmt.Println("Corpus updated with the matched element.")
	}
	return nil
}

func runSuggest(c *cli.Context) error {
	service, _, err := newService(c)
	if err != nil {
		return err
	}

	suggestions, err := service.Suggestions(elementFromFlags(c))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return printJSON(suggestions)
	}

	if len(suggestions) == 0 {
		fmt.Println("No suggestions.")
		return nil
	}
	for i, s := range suggestions {
		fmt.Printf("%d. [%s] %.3f  %s\n", i+1, s.Kind, s.Score, describeElement(s.Element))
	}
	return nil
}

func runCompare(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("compare needs exactly two arguments")
	}
	first, second := c.Args().Get(0), c.Args().Get(1)

	service, cfg, err := newService(c)
	if err != nil {
		return err
	}
	engine := service.Engine()

	var score float64
	if c.Bool("xpath") {
		score = engine.Comparator().CompareXPaths(first, second)
	} else {
		score = engine.Comparator().CompareStrings(first, second)
	}
	threshold := engine.Matcher().DynamicThreshold(first, second, cfg.Matching.SimilarityThreshold)

	if c.Bool("json") {
		return printJSON(map[string]any{
			"first":             first,
			"second":            second,
			"score":             score,
			"dynamic_threshold": threshold,
		})
	}

	fmt.Printf("Score: %.3f (dynamic threshold %.3f)\n", score, threshold)
	return nil
}

func runValidate(c *cli.Context) error {
	service, _, err := newService(c)
	if err != nil {
		return err
	}

	query := elementFromFlags(c)
	reasons := service.ValidateElement(&query)

	if c.Bool("json") {
		return printJSON(map[string]any{
			"valid":   len(reasons) == 0,
			"reasons": reasons,
		})
	}

	if len(reasons) == 0 {
		fmt.Println("Valid.")
		return nil
	}
	for _, r := range reasons {
		fmt.Printf("- %s\n", r)
	}
	return cli.Exit("", 1)
}

func runStats(c *cli.Context) error {
	service, _, err := newService(c)
	if err != nil {
		return err
	}

	stats, err := service.Statistics()
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return printJSON(stats)
	}

	fmt.Printf("Elements: %d\n", stats.TotalElements)
	fmt.Printf("Threshold: %.2f  Auto-update: %v  Max suggestions: %d\n",
		stats.SimilarityThreshold, stats.AutoUpdateEnabled, stats.MaxSuggestions)
	if len(stats.ElementsByScreen) > 0 {
		fmt.Println("By screen:")
		for screen, n := range stats.ElementsByScreen {
			fmt.Printf("  %-24s %d\n", screen, n)
		}
	}
	if len(stats.ElementsByType) > 0 {
		fmt.Println("By type:")
		for typ, n := range stats.ElementsByType {
			fmt.Printf("  %-24s %d\n", typ, n)
		}
	}
	return nil
}

func printElement(e element.Element) {
	fmt.Printf("Matched: %s\n", describeElement(e))
	if element.HasValue(e.XPath) {
		fmt.Printf("  xpath: %s\n", e.XPath)
	}
}

func describeElement(e element.Element) string {
	id := e.KeyIdentifier()
	if id == "" {
		id = "<unnamed>"
	}
	if element.HasValue(e.Screen) {
		return fmt.Sprintf("%s (%s)", id, e.Screen)
	}
	return id
}
