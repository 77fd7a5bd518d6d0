// Command chess-cli plays chess in the terminal, either hot-seat in process
// or as one seat of a game on chess-server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/park285/Cheese-chess-engine/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chess-engine/internal/advisor"
	"github.com/park285/Cheese-chess-engine/internal/game"
	"github.com/park285/Cheese-chess-engine/internal/httpapi"
	"github.com/park285/Cheese-chess-engine/internal/msgcat"
	"github.com/park285/Cheese-chess-engine/internal/obslog"
	"github.com/park285/Cheese-chess-engine/internal/wsapi"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

const commandTimeout = 15 * time.Second

func main() {
	var (
		server   = flag.String("server", "", "chess-server API base URL; empty plays hot-seat locally")
		wsBase   = flag.String("ws", "", "chess-server websocket base URL, e.g. ws://localhost:8081")
		gameID   = flag.String("game", "", "game to join on the server; empty creates one")
		player   = flag.String("player", os.Getenv("USER"), "player id used on the server")
		engine   = flag.String("engine", os.Getenv("STOCKFISH_PATH"), "UCI engine binary for hints in local play")
		book     = flag.String("book", "", "Polyglot opening book for hints in local play")
		level    = flag.String("level", "", "engine strength for hints: "+strings.Join(advisor.LevelNames(), ", "))
		fen      = flag.String("fen", "", "start local play from this FEN")
		messages = flag.String("messages", os.Getenv("MESSAGES_DIR"), "directory overriding message templates")
	)
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
	}
	cat, err := msgcat.New(*messages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "messages: %v\n", err)
		os.Exit(1)
	}

	out := readline.Stdout
	r := &repl{out: out, formatter: chesspresenter.NewFormatter(cat)}
	r.presenter = chesspresenter.NewPresenter(r.formatter, func(message string) error {
		_, err := fmt.Fprintln(out, message)
		return err
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	if *server != "" {
		rb, err := newRemoteBackend(ctx, httpapi.NewClient(*server), *gameID, *player)
		if err != nil {
			cancel()
			fmt.Fprintf(os.Stderr, "connect: %v\n", err)
			os.Exit(1)
		}
		r.backend = rb
		if *wsBase != "" {
			r.watch = func(id string) *wsapi.Watcher { return r.startWatcher(*wsBase, id) }
			r.watcher = r.watch(rb.gameID)
		}
	} else {
		var adv *advisor.Advisor
		if strings.TrimSpace(*engine) != "" {
			if adv, err = advisor.New(advisor.Config{BinaryPath: *engine, BookPath: *book, Level: *level}); err != nil {
				fmt.Fprintf(os.Stderr, "engine disabled: %v\n", err)
				adv = nil
			}
		}
		lb, err := newLocalBackend(cat, adv, *fen)
		if err != nil {
			cancel()
			fmt.Fprintf(os.Stderr, "start: %v\n", err)
			os.Exit(1)
		}
		r.backend = lb
	}
	cancel()
	defer r.close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "chess> ",
		HistoryFile:     ".chess_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	r.exec("board")
	for {
		rl.SetPrompt(r.prompt())
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			continue
		}
		if !r.exec(line) {
			return
		}
	}
}

type repl struct {
	out       io.Writer
	backend   backend
	formatter *chesspresenter.Formatter
	presenter *chesspresenter.Presenter
	watch     func(id string) *wsapi.Watcher
	watcher   *wsapi.Watcher
	last      *chessdto.GameView
}

func (r *repl) prompt() string {
	if r.last == nil {
		return "chess> "
	}
	if r.last.Status != "in_progress" {
		return fmt.Sprintf("chess [%s]> ", r.last.Status)
	}
	return fmt.Sprintf("chess [%s]> ", r.last.Turn)
}

// exec runs one command line and reports whether the REPL should continue.
func (r *repl) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	var (
		v   *chessdto.GameView
		err error
	)
	switch cmd {
	case "quit", "exit", "q":
		return false
	case "help", "?":
		r.println(r.formatter.Help())
		return true
	case "moves":
		if len(args) != 1 {
			r.println("usage: moves <square>")
			return true
		}
		lm, err := r.backend.LegalMoves(ctx, args[0])
		if err != nil {
			r.fail(err)
			return true
		}
		if len(lm.Moves) == 0 {
			r.println("no legal moves from " + lm.Square)
		} else {
			r.println(lm.Square + ": " + strings.Join(lm.Moves, " "))
		}
		return true
	case "board":
		if len(args) == 1 {
			r.savePNG(ctx, args[0])
			return true
		}
		v, err = r.backend.View(ctx)
		if err == nil {
			r.printBoard(v)
		}
	case "fen":
		if v, err = r.backend.View(ctx); err == nil {
			r.println(v.FEN)
			r.last = v
			return true
		}
	case "hint":
		s, err := r.backend.Hint(ctx)
		if err != nil {
			r.fail(err)
			return true
		}
		r.println(r.formatter.Suggestion(s))
		return true
	case "draw":
		v, err = r.backend.OfferDraw(ctx)
	case "decline":
		v, err = r.backend.DeclineDraw(ctx)
	case "resign":
		v, err = r.backend.Resign(ctx)
	case "new":
		v, err = r.backend.Reset(ctx)
		if err == nil && r.watch != nil {
			r.stopWatcher()
			r.watcher = r.watch(v.ID)
		}
	default:
		v, err = r.backend.Move(ctx, cmd)
		if err == nil {
			r.printBoard(v)
		}
	}
	if err != nil {
		r.fail(err)
		return true
	}
	r.last = v
	_ = r.presenter.Board(v.Message, v, nil)
	return true
}

func (r *repl) printBoard(v *chessdto.GameView) {
	g, err := game.FromFEN(v.FEN)
	if err != nil {
		r.fail(err)
		return
	}
	r.println(g.Board.String())
}

func (r *repl) savePNG(ctx context.Context, path string) {
	png, err := r.backend.BoardPNG(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		r.fail(err)
		return
	}
	r.println("board written to " + path)
}

// startWatcher prints moves made by the other seat as they arrive.
func (r *repl) startWatcher(base, id string) *wsapi.Watcher {
	w := wsapi.NewWatcher(strings.TrimRight(base, "/")+"/ws/games/"+id, 5)
	w.OnEvent(func(ev *chessdto.GameEvent) {
		if ev.Type != chessdto.EventUpdate || ev.Game == nil {
			return
		}
		if rb, ok := r.backend.(*remoteBackend); ok && ev.Player == rb.player {
			return
		}
		r.println("")
		_ = r.presenter.Board(fmt.Sprintf("%s: %s %s", ev.Player, ev.Op, ev.Move), ev.Game, nil)
	})
	w.OnStateChange(func(st wsapi.WatcherState) {
		if st == wsapi.StateFailed {
			r.println("live updates unavailable")
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := w.Connect(ctx); err != nil {
		r.println("live updates unavailable: " + err.Error())
	}
	return w
}

func (r *repl) stopWatcher() {
	if r.watcher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = r.watcher.Close(ctx)
	r.watcher = nil
}

func (r *repl) close() {
	r.stopWatcher()
	_ = r.backend.Close()
}

func (r *repl) fail(err error) {
	var de chessdto.DomainError
	if errors.As(err, &de) {
		r.println("! " + de.Message)
		return
	}
	r.println("! " + err.Error())
}

func (r *repl) println(s string) { _, _ = fmt.Fprintln(r.out, s) }
