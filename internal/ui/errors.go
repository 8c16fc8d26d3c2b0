package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"fwtest/internal/domain"
	"fwtest/internal/storage"
)

// FailureViewer displays test failures in an interactive TUI
type FailureViewer struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewFailureViewer creates a viewer that saves resolved marks through st
func NewFailureViewer(st storage.Storage, logger *slog.Logger) *FailureViewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FailureViewer{storage: st, logger: logger}
}

// View displays failures; 'r' toggles the resolved mark of the selected one
func (fv *FailureViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	for i := range results.Details {
		list.AddItem(listItemText(results.Details[i], i), "", 0, nil)
	}

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)
	locationView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(locationView, 2, 0, false).
		AddItem(detailsView, 0, 1, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(body, 0, 1, true)

	updateHeader := func() {
		headerView.SetText(headerText(results.Details))
	}
	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(results.Details) {
			return
		}
		failure := results.Details[index]
		locationView.SetText(formatLocation(failure))
		detailsView.SetText(formatFailureDetails(failure))
		detailsView.ScrollToBeginning()
	}

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyRune:
			if event.Rune() != 'r' && event.Rune() != 'R' {
				return event
			}
			index := list.GetCurrentItem()
			if index < 0 || index >= len(results.Details) {
				return nil
			}
			results.Details[index].Resolved = !results.Details[index].Resolved
			list.SetItemText(index, listItemText(results.Details[index], index), "")
			updateHeader()
			if err := fv.storage.Save(results); err != nil {
				fv.logger.Error("save resolved status", "error", err)
			}
			return nil
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		}
		return event
	})

	updateHeader()
	updateDetails()

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(failure domain.TestFailure, index int) string {
	name := failure.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", index+1)
	}
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ %d. %s[white]", index+1, tview.Escape(name))
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(name))
}

func headerText(failures []domain.TestFailure) string {
	unresolved := 0
	for _, f := range failures {
		if !f.Resolved {
			unresolved++
		}
	}
	return fmt.Sprintf(" Test Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, Ctrl+C exit ",
		len(failures), unresolved)
}

func formatLocation(failure domain.TestFailure) string {
	target := failure.Target
	if target == "" {
		target = "unknown target"
	}
	text := fmt.Sprintf("[cyan]target:[white] [yellow]%s[white]", tview.Escape(target))
	if failure.File != "" {
		text += fmt.Sprintf("  [cyan]at:[white] [yellow]%s:%d[white]", tview.Escape(failure.File), failure.Line)
	}
	return text
}

// formatFailureDetails formats a failure using tview color tags
func formatFailureDetails(failure domain.TestFailure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Test: %s[white]\n\n", tview.Escape(failure.TestName))
	if failure.ResultFile != "" {
		fmt.Fprintf(&b, "[cyan]Result: %s[white]\n\n", tview.Escape(failure.ResultFile))
	}
	if failure.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(failure.Message))
	}
	return b.String()
}
