package app

import "github.com/urfave/cli/v2"

var (
	modeFlag = &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "Split accumulation mode: 'radio' (one active lap) or 'checkbox' (several)",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output in JSON format",
	}

	sortFlag = &cli.StringFlag{
		Name:  "sort",
		Usage: "Sort sessions by 'title' instead of recency",
	}

	allFlag = &cli.BoolFlag{
		Name:  "all",
		Usage: "Apply to every saved session",
	}
)
