// Package app assembles the command-line interface: the live tracker as the
// default action, plus subcommands for inspecting and managing saved
// sessions.
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayooluwa/lapse/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the lapse app instance.
func Get() *cli.App {
	lapseApp := &cli.App{
		Name: "lapse",
		Authors: []*cli.Author{
			{
				Name: "Ayooluwa Isaiah",
			},
		},
		Usage: `
		Lapse is a session timer for the command-line. It records how long you
		work on a task, splits the time into laps, and shares each second among
		the laps you mark active.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
			{
				Name:   "list",
				Usage:  "Print a table of all saved sessions",
				Action: listAction,
				Flags: []cli.Flag{
					jsonFlag,
					sortFlag,
				},
			},
			{
				Name:   "status",
				Usage:  "Print the status of the selected session",
				Action: statusAction,
			},
			{
				Name:   "reset",
				Usage:  "Reset the selected session's recorded time",
				Action: resetAction,
				Flags: []cli.Flag{
					allFlag,
				},
			},
			{
				Name:   "delete",
				Usage:  "Delete all saved sessions",
				Action: deleteAction,
			},
		},
		Flags: []cli.Flag{
			modeFlag,
			noColorFlag,
		},
		Action: defaultAction,
		Before: beforeAction,
		After:  afterAction,
	}

	return lapseApp
}
