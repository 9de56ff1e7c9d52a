package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const maxRows = 500

var headers = []string{"TIME", "CHANNEL", "TYPE", "DETAIL"}

// board is the terminal layout: status line, today's summary, the event
// table and a key help footer. All mutation goes through QueueUpdateDraw.
type board struct {
	app     *tview.Application
	status  *tview.TextView
	summary *tview.TextView
	table   *tview.Table
	footer  *tview.TextView

	target   string
	channels []string
	received int
	lastAt   time.Time
}

func newBoard(app *tview.Application, target string, channels []string) *board {
	b := &board{app: app, target: target, channels: channels}

	b.status = tview.NewTextView().SetDynamicColors(true)
	b.summary = tview.NewTextView().SetDynamicColors(true)
	b.summary.SetText("Today: loading...")

	b.table = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false).
		SetSelectedStyle(tcell.StyleDefault.Background(tcell.ColorDarkSlateGray))
	b.table.SetBorder(true).SetTitle(" events ")
	for col, h := range headers {
		b.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorGray).
			SetSelectable(false).
			SetExpansion(expansion(col)))
	}

	b.footer = tview.NewTextView().SetDynamicColors(true)
	b.footer.SetText("[green]↑↓[-] scroll  [green]c[-] clear  [green]q[-] quit")

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.status, 1, 0, false).
		AddItem(b.summary, 1, 0, false).
		AddItem(b.table, 0, 1, true).
		AddItem(b.footer, 1, 0, false)

	app.SetRoot(root, true)
	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch {
		case ev.Rune() == 'q' || ev.Key() == tcell.KeyCtrlC:
			app.Stop()
			return nil
		case ev.Rune() == 'c':
			b.clear()
			return nil
		}
		return ev
	})

	b.renderStatus("[yellow]connecting[-]")
	return b
}

func expansion(col int) int {
	if col == len(headers)-1 {
		return 1
	}
	return 0
}

func (b *board) renderStatus(state string) {
	last := "never"
	if !b.lastAt.IsZero() {
		last = humanize.Time(b.lastAt)
	}
	b.status.SetText(fmt.Sprintf("%s  %s  channels=%v  events=%s  last=%s",
		b.target, state, b.channels, humanize.Comma(int64(b.received)), last))
}

// SetState updates the connection line. Safe from any goroutine.
func (b *board) SetState(state string) {
	b.app.QueueUpdateDraw(func() { b.renderStatus(state) })
}

func (b *board) SetSummary(text string) {
	b.app.QueueUpdateDraw(func() { b.summary.SetText(text) })
}

// AddEvent puts row at the top of the table, dropping the oldest rows past
// maxRows.
func (b *board) AddEvent(row eventRow, state string) {
	b.app.QueueUpdateDraw(func() {
		b.received++
		b.lastAt = time.Now()

		b.table.InsertRow(1)
		color := channelColor(row.Channel)
		for col, text := range row.cells() {
			b.table.SetCell(1, col, tview.NewTableCell(text).
				SetTextColor(color).
				SetExpansion(expansion(col)))
		}
		for b.table.GetRowCount() > maxRows+1 {
			b.table.RemoveRow(b.table.GetRowCount() - 1)
		}
		b.renderStatus(state)
	})
}

// clear runs on the UI goroutine from the key handler.
func (b *board) clear() {
	for b.table.GetRowCount() > 1 {
		b.table.RemoveRow(b.table.GetRowCount() - 1)
	}
}
