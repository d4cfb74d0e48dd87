package main

import (
	"github.com/alecthomas/kong"

	"github.com/countrystatecity/docsync/cmd/docsync/commands"
	"github.com/countrystatecity/docsync/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docsync"),
		kong.Description("Keeps the countrystatecity documentation in step with the upstream database."),
		kong.Vars{"version": version.Version},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}))
}
