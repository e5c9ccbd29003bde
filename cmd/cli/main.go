package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"kanatoon/internal/comics"
	"kanatoon/internal/history"
	"kanatoon/internal/reader"
	"kanatoon/internal/track"
	"kanatoon/pkg/database"
	"kanatoon/pkg/models"
	"kanatoon/pkg/utils"
)

func main() {
	global := flag.NewFlagSet("kanatoon", flag.ExitOnError)
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg := utils.LoadServerConfig()
	ctx := context.Background()
	client := comics.NewClient(cfg.ComicAPI, cfg.FetchTimeout, cfg.CacheTTL)

	reporter := track.NewReporter(cfg.TrackAPI, track.DefaultReportDelay)
	defer reporter.Stop()

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	case "latest":
		items, err := client.Latest(ctx)
		if err != nil {
			log.Fatalf("latest failed: %v", err)
		}
		reporter.Report("/", "Latest", "")
		printSummaries(items)
	case "trending":
		items, err := client.Trending(ctx)
		if err != nil {
			log.Fatalf("trending failed: %v", err)
		}
		reporter.Report("/trending", "Trending", "")
		printSummaries(items)
	case "library":
		handleLibrary(ctx, client, reporter, rest)
	case "search":
		handleSearch(ctx, client, reporter, rest)
	case "detail":
		handleDetail(ctx, client, reporter, rest)
	case "read":
		handleRead(ctx, client, reporter, rest)
	case "history":
		handleHistory(ctx, rest)
	case "watch":
		handleWatch(rest)
	default:
		printUsage()
		os.Exit(1)
	}

	// Let a just-scheduled page view flush before exit.
	if cfg.TrackAPI != "" {
		time.Sleep(track.DefaultReportDelay + 200*time.Millisecond)
	}
}

func handleLibrary(ctx context.Context, client *comics.Client, reporter *track.Reporter, args []string) {
	fs := flag.NewFlagSet("library", flag.ExitOnError)
	page := fs.Int("page", 1, "library page")
	_ = fs.Parse(args)

	items, hasNext, err := client.Library(ctx, *page)
	if err != nil {
		if err == comics.ErrEndOfCatalog {
			fmt.Println("no more comics")
			return
		}
		log.Fatalf("library failed: %v", err)
	}
	reporter.Report(fmt.Sprintf("/pustaka?page=%d", *page), "Library", "")
	printSummaries(items)
	if hasNext {
		fmt.Printf("more available: -page %d\n", *page+1)
	}
}

func handleSearch(ctx context.Context, client *comics.Client, reporter *track.Reporter, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("q", "", "search query")
	_ = fs.Parse(args)

	items, err := client.Search(ctx, *query)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}
	reporter.Report("/search?q="+url.QueryEscape(*query), "Search", "")
	printSummaries(items)
}

func handleDetail(ctx context.Context, client *comics.Client, reporter *track.Reporter, args []string) {
	fs := flag.NewFlagSet("detail", flag.ExitOnError)
	link := fs.String("link", "", "normalized comic link, e.g. /one-piece/")
	title := fs.String("title", "", "title from the listing, wins over the fetched one")
	_ = fs.Parse(args)
	if *link == "" {
		log.Fatal("link is required")
	}

	var summary *models.ComicSummary
	if *title != "" {
		summary = &models.ComicSummary{Title: *title}
	}

	detail, err := client.Detail(ctx, *link, summary)
	if err != nil {
		log.Fatalf("detail failed: %v", err)
	}
	reporter.Report("/detail-comic"+strings.TrimSuffix(*link, "/"), detail.Title, "")
	printJSON(detail)
}

func handleRead(ctx context.Context, client *comics.Client, reporter *track.Reporter, args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	title := fs.String("title", "", "comic title")
	slug := fs.String("slug", "", "comic slug (derived from title when empty)")
	image := fs.String("image", "", "cover image URL")
	chapter := fs.String("chapter", "", "chapter label, e.g. 'Chapter 207'")
	link := fs.String("link", "", "chapter link, e.g. /one-piece-chapter-1/")
	_ = fs.Parse(args)
	if *link == "" {
		log.Fatal("link is required")
	}
	if *slug == "" {
		*slug = comics.Slugify(*title)
	}

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	session := reader.NewSession(client, history.NewRepo(db))
	comic := models.ComicSummary{Title: *title, Image: *image, Slug: *slug}

	if err := session.Open(ctx, comic, *chapter, *link); err != nil {
		log.Printf("chapter load failed: %v", err)
	}
	reporter.Report("/chapter-comic"+strings.TrimSuffix(*link, "/"), *chapter, "")
	printSession(session)

	// Interactive navigation until EOF or q.
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: n(ext) p(rev) f(ullscreen) q(uit)")
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "n":
			moved, err := session.Next(ctx)
			if err != nil {
				log.Printf("next failed: %v", err)
			}
			if !moved {
				fmt.Println("no next chapter")
			}
			printSession(session)
		case "p":
			moved, err := session.Prev(ctx)
			if err != nil {
				log.Printf("prev failed: %v", err)
			}
			if !moved {
				fmt.Println("no previous chapter")
			}
			printSession(session)
		case "f":
			fmt.Printf("fullscreen: %v\n", session.ToggleFullscreen())
		case "q":
			return
		}
	}
}

func handleHistory(ctx context.Context, args []string) {
	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}
	repo := history.NewRepo(db)

	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "", "list":
		items, err := repo.List(ctx)
		if err != nil {
			log.Fatalf("history list failed: %v", err)
		}
		if len(items) == 0 {
			fmt.Println("no reading history")
			return
		}
		for _, rec := range items {
			fmt.Printf("%-30s %-16s %s\n", rec.Title, rec.LastChapterLabel, rec.ReadAt.Format(time.RFC3339))
		}
	case "rm":
		fs := flag.NewFlagSet("history rm", flag.ExitOnError)
		slug := fs.String("slug", "", "comic slug")
		_ = fs.Parse(args[1:])
		if *slug == "" {
			log.Fatal("slug is required")
		}
		if err := repo.Delete(ctx, *slug); err != nil {
			log.Fatalf("history rm failed: %v", err)
		}
		fmt.Println("removed", *slug)
	default:
		log.Fatal("usage: kanatoon history [list|rm]")
	}
}

// handleWatch streams history events from a running api-server.
func handleWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	api := fs.String("api", "http://localhost:8080", "API base URL")
	_ = fs.Parse(args)

	endpoint, err := websocketURL(*api, "/ws")
	if err != nil {
		log.Fatalf("ws url: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		log.Fatalf("watch failed: %v", err)
	}
	defer conn.Close()

	log.Printf("[watch] connected to %s", endpoint)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("watch disconnected: %v", err)
		}
		fmt.Print(string(msg))
	}
}

func printSession(s *reader.Session) {
	fmt.Printf("state: %s", s.State())
	if err := s.Err(); err != nil {
		fmt.Printf(" (%v)", err)
	}
	fmt.Println()

	pages := s.Pages()
	fmt.Printf("%s - %d pages\n", s.ChapterLabel(), len(pages))
	for i, p := range pages {
		fmt.Printf("  %3d  %s\n", i+1, p)
	}
	if s.HasPrev() {
		fmt.Println("prev available")
	}
	if s.HasNext() {
		fmt.Println("next available")
	}
}

func printSummaries(items []models.ComicSummary) {
	if len(items) == 0 {
		fmt.Println("no results")
		return
	}
	for _, item := range items {
		fmt.Printf("%-30s %-18s %-10s %s\n", item.Title, item.Chapter, item.Popularity, item.Link)
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("kanatoon <command> [flags]")
	fmt.Println("commands:")
	fmt.Println("  latest")
	fmt.Println("  trending")
	fmt.Println("  library -page N")
	fmt.Println("  search -q <query>")
	fmt.Println("  detail -link </comic-slug/>")
	fmt.Println("  read -title <title> -chapter <label> -link </chapter-slug/>")
	fmt.Println("  history [list|rm -slug <slug>]")
	fmt.Println("  watch [-api URL]")
}
