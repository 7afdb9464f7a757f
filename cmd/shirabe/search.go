package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/shirabe/internal/cli"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/pkg/utils"
	"go.uber.org/zap"
)

// searchFlags are the parsed options of one search invocation.
type searchFlags struct {
	typ      string
	category string
	sort     string
	page     int
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: shirabe search [flags] [query]\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. An empty query browses newest content first.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  shirabe search remote jobs
  shirabe search --type job --category careers
  shirabe search --sort date-asc --page 2 golang
  shirabe search --memory --dir ./content "getting started"
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. The flag package
// stops at the first non-flag argument, so "shirabe search remote -type job"
// would otherwise leave -type unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// searchValues encodes the raw search parameters the way the HTTP API reads them.
// Empty options are omitted so the server applies its own defaults.
func searchValues(query string, f searchFlags) url.Values {
	v := url.Values{}
	if query != "" {
		v.Set(models.ParamQuery, query)
	}
	if f.typ != "" {
		v.Set(models.ParamType, f.typ)
	}
	if f.category != "" {
		v.Set(models.ParamCategory, f.category)
	}
	if f.sort != "" {
		v.Set(models.ParamSort, f.sort)
	}
	if f.page > 1 {
		v.Set(models.ParamPage, strconv.Itoa(f.page))
	}
	return v
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	memory := fs.Bool("memory", false, "search content files in memory without storage or server")
	dirs := fs.String("dir", "", "comma-separated content directories for --memory (default: watch directories from config)")
	var f searchFlags
	fs.StringVar(&f.typ, "type", "", "content type filter (e.g. article, job)")
	fs.StringVar(&f.category, "category", "", "category slug filter")
	fs.StringVar(&f.sort, "sort", "", "sort order: relevance, date-desc, date-asc, title-asc")
	fs.IntVar(&f.page, "page", 1, "result page (1-based)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	values := searchValues(buildSearchQuery(fs.Args()), f)

	if *serverURL != "" && !*memory {
		// Use HTTP API when server is running (avoids Bleve/SQLite lock conflict).
		page, err := searchViaHTTP(*serverURL, values)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		writePage(page, format)
		return
	}

	cfg, _, err := loadConfig(*configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSeconds)*time.Second)
	defer cancel()
	q := buildNormalizer(cfg).NormalizeValues(values)

	var page *models.SearchResultPage
	if *memory {
		roots := cfg.Watch.Directories
		if *dirs != "" {
			roots = splitList(*dirs)
		}
		if len(roots) == 0 {
			fmt.Fprintln(os.Stderr, "No content directories: pass --dir or configure watch.directories")
			os.Exit(1)
		}
		store, err := loadMemoryStore(ctx, cfg, roots, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
			os.Exit(1)
		}
		logger.Debug("content loaded", zap.Int("items", store.Len()), zap.Strings("dirs", roots))
		page, err = buildEngine(cfg, store, engineDeps{logger: logger}).Search(ctx, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		// Direct storage access (when server is not running).
		components, err := initializeComponents(cfg, logger, cfg.Debug, nil)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()
		page, err = components.Engine.Search(ctx, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}
	writePage(page, format)
}

func writePage(page *models.SearchResultPage, format cli.SearchOutputFormat) {
	if err := cli.WriteSearchPage(os.Stdout, page, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func searchViaHTTP(serverURL string, values url.Values) (*models.SearchResultPage, error) {
	endpoint := strings.TrimRight(serverURL, "/") + "/api/v1/search"
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}
	resp, err := http.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var page models.SearchResultPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &page, nil
}
