// Command gallery reads and moderates the tweet gallery from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	gallery "github.com/facttic/go-gallery"
	"github.com/facttic/go-gallery/card"
	"github.com/facttic/go-gallery/feed"
	"github.com/facttic/go-gallery/page"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if os.Getenv("GALLERY_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}
	client, err := gallery.NewClient(cfg)
	if err != nil {
		slog.Error("client", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "feed":
		pages := 1
		if len(os.Args) > 2 {
			if pages, err = strconv.Atoi(os.Args[2]); err != nil || pages < 1 {
				fmt.Println("Usage: gallery feed [pages]")
				os.Exit(1)
			}
		}
		err = runFeed(ctx, client, pages)
	case "count":
		var n int
		if n, err = client.GetUsersCount(ctx); err == nil {
			fmt.Println(n)
		}
	case "login":
		if err = client.Login(ctx); err == nil && client.Moderator().IsAuthenticated() {
			fmt.Printf("logged in as %s\n", client.Moderator().Username)
		}
	case "logout":
		err = client.Logout()
	case "delete":
		if len(os.Args) < 3 {
			fmt.Println("Usage: gallery delete <tweet_id>")
			os.Exit(1)
		}
		err = client.DeleteTweet(ctx, os.Args[2])
	case "ban":
		if len(os.Args) < 3 {
			fmt.Println("Usage: gallery ban <user_id>")
			os.Exit(1)
		}
		var res *gallery.BanResult
		if res, err = client.BanUser(ctx, os.Args[2]); err == nil {
			fmt.Printf("banned %s, removed %d tweets\n", res.UserID, res.RemovedTweetsCount)
		}
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		slog.Error(os.Args[1]+" failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: gallery <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  feed [pages]       Print the feed, loading up to [pages] pages")
	fmt.Println("  count              Print the participants counter")
	fmt.Println("  login              Log the moderator in and save the session")
	fmt.Println("  logout             Drop the saved moderator session")
	fmt.Println("  delete <tweet_id>  Delete a tweet")
	fmt.Println("  ban <user_id>      Ban an author and remove their tweets")
}

// runFeed drives the page controller headless, scrolling to the end after
// every page as a browser would.
func runFeed(ctx context.Context, client *gallery.Client, pages int) error {
	ctrl := page.New(client, client.Paging())
	defer ctrl.Close()
	ctrl.SetAuthenticated(client.Moderator().IsAuthenticated())

	if err := ctrl.Mount(ctx); err != nil {
		return err
	}
	atEnd := feed.Viewport{ContentBottom: 0, WindowHeight: 1}
	for i := 1; i < pages; i++ {
		issued, err := ctrl.OnScroll(ctx, atEnd)
		if err != nil && !errors.Is(err, feed.ErrClosed) {
			return err
		}
		if !issued {
			break
		}
	}

	v := ctrl.Snapshot(card.Rect{})
	for _, p := range v.Posts {
		fmt.Printf("%s\t@%s\t%s\n", p.ID, p.AuthorHandle, oneLine(p.Text, 80))
	}
	fmt.Fprintf(os.Stderr, "%d of %d posts, %d participants\n", len(v.Posts), v.Total, v.UsersCount)
	return nil
}

func oneLine(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
