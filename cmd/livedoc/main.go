// Command livedoc renders markdown documents with interactive code cells.
package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/livedoc/cmd/livedoc/commands"
	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("livedoc"),
		kong.Description("Render markdown documents with diagrams, terminals, admonitions and runnable script panels."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{}
	err := ctx.Run(global, &cli)
	global.Close()
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
