// Package cli implements the docshare command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/docshare/internal/client/api"
	"github.com/dmitrijs2005/docshare/internal/client/config"
	"github.com/dmitrijs2005/docshare/internal/client/session"
)

// ErrUsage is returned for an unknown command or wrong arguments.
var ErrUsage = errors.New("usage error")

type App struct {
	config *config.Config
	api    *api.Client
	prompt *prompter
	out    io.Writer
}

func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerURL, &http.Client{Timeout: c.Timeout}),
		prompt: newPrompter(in, out),
		out:    out,
	}
}

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"ping":     {"ping", (*App).ping},
	"signup":   {"signup [operations|client]", (*App).signup},
	"verify":   {"verify <token>", (*App).verify},
	"login":    {"login", (*App).login},
	"refresh":  {"refresh", (*App).refresh},
	"logout":   {"logout", (*App).logout},
	"files":    {"files", (*App).files},
	"upload":   {"upload <path>", (*App).upload},
	"link":     {"link <file id>", (*App).link},
	"download": {"download <link>", (*App).download},
}

var commandOrder = []string{"ping", "signup", "verify", "login", "refresh", "logout", "files", "upload", "link", "download"}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, "Usage: docshare [-a url] [-session file] [-o dir] [-timeout d] <command> [args]")
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintln(a.out, "  "+commands[name].usage)
	}
}

// Run executes the subcommand named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return ErrUsage
	}

	cmd, ok := commands[args[0]]
	if !ok || args[0] == "help" {
		a.printUsage()
		return ErrUsage
	}

	if err := cmd.run(a, ctx, args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			fmt.Fprintln(a.out, "Usage: docshare "+cmd.usage)
		}
		return err
	}
	return nil
}

// accessToken returns the stored access token.
func (a *App) accessToken() (string, error) {
	s, err := session.Load(a.config.SessionFile)
	if err != nil {
		return "", err
	}
	return s.AccessToken, nil
}
