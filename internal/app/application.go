// Package app wires the screen, cache, scheduler, and reducer together
// and runs the event loop.
package app

import (
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/seqview/internal/frame"
	"github.com/kk-code-lab/seqview/internal/imageutil"
	"github.com/kk-code-lab/seqview/internal/remote"
	"github.com/kk-code-lab/seqview/internal/sequence"
	"github.com/kk-code-lab/seqview/internal/source"
	statepkg "github.com/kk-code-lab/seqview/internal/state"
	inputui "github.com/kk-code-lab/seqview/internal/ui/input"
	renderui "github.com/kk-code-lab/seqview/internal/ui/render"
)

// Options carries everything NewApplication needs to open a sequence.
type Options struct {
	Addr        sequence.Address
	Source      source.Source
	Session     *remote.Session // nil for local sequences
	CacheRadius uint64
	Workers     int
	Logger      *zap.Logger
}

// Application represents the running app.
type Application struct {
	screen     tcell.Screen
	state      *statepkg.ViewState
	reducer    *statepkg.Reducer
	renderer   *renderui.Renderer
	input      *inputui.Handler
	actionCh   chan statepkg.Action
	cache      *frame.Cache
	sched      *frame.Scheduler
	session    *remote.Session
	logger     *zap.Logger
	shouldQuit bool
}

// NewApplication opens the terminal screen and assembles the viewer.
func NewApplication(opts Options) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	app, err := newApplication(screen, opts)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	return app, nil
}

func newApplication(screen tcell.Screen, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	actionCh := make(chan statepkg.Action, 16)
	dispatch := func(action statepkg.Action) {
		select {
		case actionCh <- action:
		default:
			go func() { actionCh <- action }()
		}
	}

	sched := frame.NewScheduler(opts.Source, imageutil.Decode, opts.Workers, func(res frame.Result) {
		dispatch(statepkg.FrameResultAction{Result: res})
	}, logger)
	cache := frame.NewCache(opts.CacheRadius, sched, logger)

	st := statepkg.NewViewState(opts.Addr)
	w, h := screen.Size()
	st.ScreenWidth = w
	st.ScreenHeight = h

	reducer := statepkg.NewReducer(cache, opts.Source, !opts.Addr.Remote())

	app := &Application{
		screen:   screen,
		state:    st,
		reducer:  reducer,
		renderer: renderui.NewRenderer(screen),
		input:    inputui.NewHandler(),
		actionCh: actionCh,
		cache:    cache,
		sched:    sched,
		session:  opts.Session,
		logger:   logger,
	}

	cache.SetCenter(opts.Addr.Index)
	reducer.Refresh(st)
	return app, nil
}

// Close stops the workers and restores the terminal.
func (app *Application) Close() error {
	app.sched.Close()
	if app.session != nil {
		if err := app.session.Close(); err != nil {
			app.logger.Warn("closing remote session", zap.Error(err))
		}
	}
	app.screen.Fini()
	return nil
}
