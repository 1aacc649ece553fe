package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" help:"Play blackjack at the terminal"`
	Serve    ServeCmd         `cmd:"" help:"Run the multiplayer WebSocket server"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate rounds against the house edge"`
	Advise   AdviseCmd        `cmd:"" help:"Recommend a play for a given hand"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack engine with card counting, a TUI and a multiplayer server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
