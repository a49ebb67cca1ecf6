package app

import (
	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/seqview/internal/state"
)

func (app *Application) Run() {
	app.renderer.Render(app.state, app.cache)
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			eventChan <- app.screen.PollEvent()
		}
	}()

	for !app.shouldQuit {
		if renderPending {
			app.renderer.Render(app.state, app.cache)
			renderPending = false
		}

		select {
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		}

		if app.processActions() {
			renderPending = true
		}
	}
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return app.handleAction(app.input.HandleKey(ev))
	case *tcell.EventResize:
		w, h := ev.Size()
		return app.handleAction(statepkg.ResizeAction{Width: w, Height: h})
	case *tcell.EventInterrupt:
		return true
	}
	return false
}

// processActions drains queued actions so a burst of loader results turns
// into a single redraw.
func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	if _, ok := action.(statepkg.QuitAction); ok {
		app.shouldQuit = true
		return false
	}

	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.state.LastError = err
	}
	return true
}
