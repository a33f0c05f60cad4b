package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/idilsaglam/itask/internal/app"
	"github.com/idilsaglam/itask/internal/model"
	"github.com/idilsaglam/itask/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done
	Yes   bool // skip confirmation prompts

	// TUI runs the interactive list. Defaults to ui.RunTUI.
	TUI func(*app.App) error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(a *app.App, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls":
		return doList(a, opt)

	case "add":
		if len(rest) == 0 {
			ui.Fail("usage: itask add <text...>")
			return 2
		}
		return doAdd(a, strings.Join(rest, " "))

	case "done":
		if len(rest) != 1 {
			ui.Fail("usage: itask done <index>")
			return 2
		}
		t, code := pick(a, "done", rest[0])
		if code != 0 {
			return code
		}
		return doToggle(a, t)

	case "edit":
		if len(rest) < 2 {
			ui.Fail("usage: itask edit <index> <text...>")
			return 2
		}
		t, code := pick(a, "edit", rest[0])
		if code != 0 {
			return code
		}
		return doEdit(a, t, strings.Join(rest[1:], " "))

	case "rm":
		yes, rest := yesFlag(rest)
		if len(rest) != 1 {
			ui.Fail("usage: itask rm [-y] <index>")
			return 2
		}
		t, code := pick(a, "rm", rest[0])
		if code != 0 {
			return code
		}
		return doRemove(a, t, opt.Yes || yes)

	case "clear":
		yes, rest := yesFlag(rest)
		if len(rest) != 0 {
			ui.Fail("usage: itask clear [-y]")
			return 2
		}
		return doClear(a, opt.Yes || yes)

	case "sort":
		a.Sort()
		ui.OK("sorted: unfinished first, newest first")
		return persisted(a)

	case "show":
		if len(rest) != 1 {
			ui.Fail("usage: itask show <on|off|toggle>")
			return 2
		}
		return doShow(a, rest[0])

	case "tui":
		run := opt.TUI
		if run == nil {
			run = ui.RunTUI
		}
		if err := run(a); err != nil {
			ui.Fail("tui: " + err.Error())
			return 1
		}
		return persisted(a)
	}

	ui.Fail("unknown subcommand: " + cmd)
	PrintHelp()
	return 2
}

func PrintHelp() {
	ui.Info(`itask - manage your todos

Usage:
  itask [flags] <subcommand> [args]

Subcommands:
  add <text...>          Add a new todo (newest first)
  ls                     List todos (finished ones only when shown)
  done <index>           Toggle finished for the todo at 1-based index
  edit <index> <text...> Replace the text of a todo
  rm [-y] <index>        Delete a todo
  clear [-y]             Remove all finished todos
  sort                   Reorder: unfinished first, then newest
  show <on|off|toggle>   Show or hide finished todos
  tui                    Interactive list

Flags:
  -backend file|sqlite|memory   -data <path>   -group   -theme classic|neon|mono
  -log-level <level>            -no-color      -y

Examples:
  itask add "Buy milk"
  itask ls
  itask done 2
  itask clear -y`)
}

// -------------- subcommand impls ----------------

func doList(a *app.App, opt Options) int {
	s := a.State()

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(ui.Current().Title, "Todos"),
		ui.C(ui.Current().Success, ui.Current().SymDone), s.Finished,
		ui.C(ui.Current().Pending, ui.Current().SymUnchecked), s.Remaining,
		ui.C(ui.Current().Accent, "Total"), len(s.Tasks),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(ui.Current().Muted, ui.ProgressBar(s.Finished, len(s.Tasks), 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(s.Visible)...)
	} else {
		lines = append(lines, flatLines(s.Visible, 1)...)
	}
	lines = append(lines, "")
	if !s.ShowFinished && s.Finished > 0 {
		lines = append(lines, ui.C(ui.Current().Muted, fmt.Sprintf("%d finished hidden (itask show on)", s.Finished)))
	}
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `itask add \"Buy milk\"`"))
	ui.Panel(lines)
	return 0
}

func doAdd(a *app.App, text string) int {
	if !a.Add(text) {
		ui.Fail("add: empty todo")
		return 2
	}
	ui.OK("added")
	return persisted(a)
}

func doToggle(a *app.App, t model.Task) int {
	a.Toggle(t.ID)
	if t.Completed {
		ui.OK("marked unfinished")
	} else {
		ui.OK("marked finished")
	}
	return persisted(a)
}

func doEdit(a *app.App, t model.Task, text string) int {
	if !a.BeginEdit(t.ID) {
		ui.Fail("edit: todo vanished")
		return 1
	}
	if !a.Submit(text) {
		a.CancelEdit()
		ui.Fail("edit: empty todo")
		return 2
	}
	ui.OK("updated")
	return persisted(a)
}

func doRemove(a *app.App, t model.Task, yes bool) int {
	if yes {
		prev := a.SetConfirmer(nil)
		defer a.SetConfirmer(prev)
	}
	if !a.Delete(t.ID) {
		ui.Info("kept")
		return 0
	}
	ui.OK("removed")
	return persisted(a)
}

func doClear(a *app.App, yes bool) int {
	if a.State().Finished == 0 {
		ui.Info("nothing to clear")
		return 0
	}
	if yes {
		prev := a.SetConfirmer(nil)
		defer a.SetConfirmer(prev)
	}
	n := a.ClearFinished()
	if n == 0 {
		ui.Info("kept")
		return 0
	}
	ui.OK(fmt.Sprintf("removed %d finished", n))
	return persisted(a)
}

func doShow(a *app.App, arg string) int {
	switch strings.ToLower(arg) {
	case "on", "true", "yes":
		a.SetShowFinished(true)
	case "off", "false", "no":
		a.SetShowFinished(false)
	case "toggle":
		a.ToggleShowFinished()
	default:
		ui.Fail("show: expected on, off or toggle, got " + arg)
		return 2
	}
	if a.State().ShowFinished {
		ui.OK("showing finished todos")
	} else {
		ui.OK("hiding finished todos")
	}
	return persisted(a)
}

// persisted reports a write failure. The change stays in memory only.
func persisted(a *app.App) int {
	if err := a.Err(); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	return 0
}

// pick resolves a 1-based index into the visible list.
func pick(a *app.App, cmd, arg string) (model.Task, int) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		ui.Fail(cmd + ": not a number: " + arg)
		return model.Task{}, 2
	}
	visible := a.State().Visible
	if n < 1 || n > len(visible) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(visible), n))
		ui.Hint("run `itask ls` to see valid indexes")
		return model.Task{}, 2
	}
	return visible[n-1], 0
}

func yesFlag(args []string) (bool, []string) {
	yes := false
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "-y" || a == "--yes" {
			yes = true
			continue
		}
		out = append(out, a)
	}
	return yes, out
}

// -------------- rendering helpers --------------

func flatLines(items []model.Task, start int) []string {
	if len(items) == 0 {
		return []string{ui.C(ui.Current().Muted, "no todos")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		box := ui.Current().BoxUnchecked
		color := ui.Current().Muted
		text := it.Text
		if len([]rune(text)) > 80 {
			text = string([]rune(text)[:77]) + "..."
		}
		if it.Completed {
			box, color = ui.Current().BoxChecked, ui.Current().Success
			text = ui.C(ui.Current().Strike, text)
		}
		out = append(out, fmt.Sprintf("%s %s %s", ui.Index(start+i), ui.C(color, box), text))
	}
	return out
}

// groupLines keeps the visible numbering so indexes still work with done/rm.
func groupLines(items []model.Task) []string {
	var lines []string
	section := func(title string, done bool) {
		lines = append(lines, ui.C(ui.Current().Accent, title))
		n := 0
		for i, it := range items {
			if it.Completed != done {
				continue
			}
			lines = append(lines, flatLines(items[i:i+1], i+1)...)
			n++
		}
		if n == 0 {
			lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
		}
	}
	section("Pending", false)
	lines = append(lines, "")
	section("Done", true)
	return lines
}
