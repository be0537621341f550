// Package cmd implements the pkt command line application to manage a pocket book.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/pocket"
	"github.com/etnz/pocket/mirror"
	"github.com/etnz/pocket/renderer"
	"github.com/etnz/pocket/store"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addCmd{}, "transactions")
	c.Register(&rmCmd{}, "transactions")
	c.Register(&listCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")
	c.Register(&askCmd{}, "transactions")

	c.Register(&monthCmd{}, "months")
	c.Register(&closeCmd{}, "months")
	c.Register(&snapshotsCmd{}, "months")
	c.Register(&analyticsCmd{}, "months")

	c.Register(&noteCmd{}, "records")
	c.Register(&pfCmd{}, "records")
	c.Register(&loanCmd{}, "records")

	c.Register(&exportCmd{}, "data")
	c.Register(&restoreCmd{}, "data")
	c.Register(&wipeCmd{}, "data")
	c.Register(&deviceCmd{}, "data")
	c.Register(&nowCmd{}, "data")

	c.Register(&syncCmd{}, "services")
	c.Register(&remindCmd{}, "services")
	c.Register(&serveCmd{}, "services")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dbPath    string
	currency  string
	remoteURL string
	remoteKey string
	format    string
)

// RegisterFlags declares the global flags on f. Their defaults come from the
// environment, so it must be called after [LoadEnv].
func RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&dbPath, "db", getEnv("POCKET_DB", "pocket.db"), "Path to the book database")
	f.StringVar(&currency, "currency", getEnv("POCKET_CURRENCY", pocket.DefaultCurrency), "Currency of every amount in the book")
	f.StringVar(&remoteURL, "remote", getEnv("POCKET_REMOTE_URL", ""), "Remote backup, a postgres:// or http(s):// URL")
	f.StringVar(&remoteKey, "remote-key", getEnv("POCKET_REMOTE_KEY", ""), "API key of an http(s) remote backup")
	f.StringVar(&format, "format", getEnv("POCKET_FORMAT", "term"), "Report format: term, md or html")
}

// newLogger creates the logger of a command, at level unless POCKET_LOG_LEVEL says otherwise.
func newLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if getEnv("POCKET_LOG_FORMAT", "text") == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if l, err := logrus.ParseLevel(getEnv("POCKET_LOG_LEVEL", "")); err == nil {
		level = l
	}
	logger.SetLevel(level)
	return logger
}

// openBook opens the book database, restores it from the remote backup if it
// is empty, and closes the previous month. The returned function closes the database.
func openBook(ctx context.Context, log logrus.FieldLogger) (*pocket.Book, func(), error) {
	db, err := store.Open(dbPath, currency)
	if err != nil {
		return nil, nil, err
	}
	book, err := pocket.NewBook(db, pocket.WithCurrency(currency), pocket.WithLogger(log))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	var f pocket.Fetcher
	if remoteURL != "" {
		f = remoteFetcher{log: log}
	}
	if err := book.Open(ctx, f); err != nil {
		db.Close()
		return nil, nil, err
	}
	return book, func() { db.Close() }, nil
}

// openRemote connects to the configured remote backup.
func openRemote(ctx context.Context, log logrus.FieldLogger) (mirror.Remote, error) {
	if remoteURL == "" {
		return nil, errors.New("no remote backup configured, use -remote or POCKET_REMOTE_URL")
	}
	return mirror.Open(ctx, remoteURL, remoteKey, log)
}

func closeRemote(r mirror.Remote) {
	if c, ok := r.(io.Closer); ok {
		c.Close()
	}
}

// remoteFetcher connects to the remote backup only when a restore needs it.
type remoteFetcher struct {
	log logrus.FieldLogger
}

func (f remoteFetcher) Fetch(ctx context.Context, device string) (pocket.Dataset, error) {
	remote, err := openRemote(ctx, f.log)
	if err != nil {
		return pocket.Dataset{}, err
	}
	defer closeRemote(remote)
	return mirror.Mirror{Remote: remote}.Fetch(ctx, device)
}

// printMarkdown prints a rendered report in the -format of the command line.
func printMarkdown(md string) {
	switch format {
	case "md":
		fmt.Print(md)
		return
	case "html":
		out, err := renderer.HTML(md)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error converting to HTML: %v\n", err)
			fmt.Print(md)
			return
		}
		fmt.Print(out)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
