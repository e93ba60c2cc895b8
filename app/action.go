package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayooluwa/lapse/config"
	"github.com/ayooluwa/lapse/engine"
	"github.com/ayooluwa/lapse/internal/clock"
	"github.com/ayooluwa/lapse/internal/models"
	"github.com/ayooluwa/lapse/internal/timeutil"
	"github.com/ayooluwa/lapse/internal/ui"
	"github.com/ayooluwa/lapse/store"
	"github.com/ayooluwa/lapse/tracker"
)

const (
	envNoColor      = "NO_COLOR"
	envLapseNoColor = "LAPSE_NO_COLOR"
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// splitMode resolves the accumulation mode for this invocation: the --mode
// flag wins over the configured default.
func splitMode(ctx *cli.Context, settings *config.Settings) models.SplitMode {
	if m := models.SplitMode(ctx.String("mode")); m.Valid() {
		return m
	}

	return settings.SplitMode()
}

// engineHelper loads the saved snapshot, reconciles any session left running,
// and adopts it into a fresh engine. The writer may be nil for read-only
// commands.
func engineHelper(
	db store.DB,
	w *store.Writer,
	mode models.SplitMode,
) (*engine.Engine, error) {
	snap, err := db.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	eng := engine.New(clock.System{}, w, engine.Options{Mode: mode})
	eng.Restore(engine.Reconcile(snap, eng.Now()))

	return eng, nil
}

// editConfigAction handles the edit-config command which opens the lapse
// config file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	settings := config.Get()

	cmd := exec.Command(editor, settings.PathToConfig)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// listAction handles the list command and prints a table of all saved
// sessions.
func listAction(ctx *cli.Context) error {
	settings := config.Get()

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	eng, err := engineHelper(db, nil, splitMode(ctx, settings))
	if err != nil {
		return err
	}

	rows := sessionRows(eng)

	if ctx.String("sort") == "title" {
		sortRowsByTitle(rows)
	}

	if ctx.Bool("json") {
		return printSessionsJSON(os.Stdout, rows)
	}

	return listSessions(rows)
}

// statusAction handles the status command and prints the state of the
// selected session.
func statusAction(ctx *cli.Context) error {
	settings := config.Get()

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	eng, err := engineHelper(db, nil, splitMode(ctx, settings))
	if err != nil {
		return err
	}

	id := eng.SelectedSessionID()
	if id == "" {
		pterm.Info.Println("No saved sessions")
		return nil
	}

	var title string

	for _, sess := range eng.Sessions() {
		if sess.ID == id {
			title = sess.Title
			break
		}
	}

	total := int64(eng.ElapsedSession(id, eng.Now()) / time.Second)

	pterm.Printfln(
		"%s: %s (%s, %d laps)",
		ui.Highlight(title),
		timeutil.FormatSeconds(total),
		eng.SessionState(id),
		len(eng.Laps(id)),
	)

	return nil
}

// resetAction handles the reset command which zeroes the recorded time of the
// selected session, or of every session with --all.
func resetAction(ctx *cli.Context) error {
	settings := config.Get()
	config.InitLogger()

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	var eng *engine.Engine

	w := store.NewWriter(db, store.DefaultDebounce, func(err error) {
		eng.HandleWriteError(err)
	})

	eng, err = engineHelper(db, w, splitMode(ctx, settings))
	if err != nil {
		return err
	}

	if eng.SelectedSessionID() == "" {
		pterm.Info.Println("No saved sessions")
		return nil
	}

	if ctx.Bool("all") {
		var confirmed bool

		err = huh.NewConfirm().
			Title("Reset the recorded time of every saved session?").
			Value(&confirmed).
			Run()
		if err != nil || !confirmed {
			return err
		}

		eng.ClearAllSessions(eng.Now())
	} else {
		eng.ResetSelectedSession(eng.Now())
	}

	return eng.Close()
}

// deleteAction handles the delete command which removes all saved sessions
// permanently.
func deleteAction(ctx *cli.Context) error {
	settings := config.Get()
	config.InitLogger()

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	var confirmed bool

	err = huh.NewConfirm().
		Title("Delete all saved sessions permanently?").
		Value(&confirmed).
		Run()
	if err != nil || !confirmed {
		return err
	}

	var eng *engine.Engine

	w := store.NewWriter(db, store.DefaultDebounce, func(err error) {
		eng.HandleWriteError(err)
	})

	eng, err = engineHelper(db, w, splitMode(ctx, settings))
	if err != nil {
		return err
	}

	eng.DeleteAllSessions(eng.Now())

	return eng.Close()
}

// defaultAction starts the live tracker.
func defaultAction(ctx *cli.Context) error {
	settings := config.Get()
	config.InitLogger()

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer db.Close()

	snap, err := db.LoadSnapshot()
	if err != nil {
		// a damaged snapshot should not brick the tracker
		slog.Error("discarding unreadable saved state",
			slog.Any("error", err),
		)

		snap = nil
	}

	var eng *engine.Engine

	w := store.NewWriter(db, store.DefaultDebounce, func(err error) {
		eng.HandleWriteError(err)
	})

	eng = engine.New(clock.System{}, w, engine.Options{
		Mode: splitMode(ctx, settings),
	})
	eng.Restore(engine.Reconcile(snap, eng.Now()))

	ui.DarkTheme = settings.Display.DarkTheme

	p := tea.NewProgram(tracker.New(eng, settings))

	_, err = p.Run()
	if err != nil {
		return err
	}

	return eng.Close()
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	oldVersionPrinter := cli.VersionPrinter
	cli.VersionPrinter = func(c *cli.Context) {
		oldVersionPrinter(c)
		fmt.Printf(
			"https://github.com/ayooluwa/lapse/releases/%s\n",
			c.App.Version,
		)
	}

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if LAPSE_NO_COLOR is set
	if _, exists := os.LookupEnv(envLapseNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting lapse")

	return nil
}
