package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/fourplay/board"
	"github.com/domino14/fourplay/config"
	"github.com/domino14/fourplay/equity"
	"github.com/domino14/fourplay/game"
	"github.com/domino14/fourplay/search"
	"github.com/domino14/fourplay/stats"
)

type ShellController struct {
	l       *readline.Instance
	out     io.Writer
	config  *config.Config
	printer *message.Printer

	game     *game.Game
	solver   *search.Solver
	searches stats.SearchLog

	fatal error
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func NewShellController(cfg *config.Config) (*ShellController, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mfourplay>\033[0m ",
		HistoryFile:     "/tmp/fourplay-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc := newController(cfg, l.Stderr())
	sc.l = l
	return sc, nil
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	return &ShellController{
		out:     out,
		config:  cfg,
		printer: message.NewPrinter(language.English),
	}
}

// Err is the fatal error that ended the loop, if any.
func (sc *ShellController) Err() error {
	return sc.fatal
}

func (sc *ShellController) newPosition() board.Position {
	if sc.config.GetString(config.ConfigBoard) == "grid" {
		return board.NewGridBoard()
	}
	if sc.config.GetBool(config.ConfigLegacyLayout) {
		return board.NewBitBoard(board.LegacyLayout)
	}
	return board.NewBitBoard(board.GuardedLayout)
}

// startGame sets up a fresh board, game record and solver.
func (sc *ShellController) startGame(ai board.Player) error {
	pos := sc.newPosition()
	g, err := game.NewGame(pos, ai)
	if err != nil {
		return err
	}
	eval, err := equity.ByName(sc.config.GetString(config.ConfigEvaluator))
	if err != nil {
		return err
	}
	solver := &search.Solver{}
	if err := solver.Init(pos, eval); err != nil {
		return err
	}
	sc.game = g
	sc.solver = solver
	sc.searches.Reset()
	return sc.configureSolver()
}

// configureSolver pushes the engine settings into the solver.
func (sc *ShellController) configureSolver() error {
	eval, err := equity.ByName(sc.config.GetString(config.ConfigEvaluator))
	if err != nil {
		return err
	}
	order, err := sc.config.MoveOrder()
	if err != nil {
		return err
	}
	if err := sc.solver.SetMoveOrder(order); err != nil {
		return err
	}
	sc.solver.SetEvaluator(eval)
	sc.solver.SetNPSLogInterval(sc.config.GetDuration(config.ConfigNPSLogInterval))
	return nil
}

func (sc *ShellController) IsPlaying() bool {
	return sc.game != nil && sc.game.Playing() == game.StatePlaying
}

func (sc *ShellController) IsEngineOnTurn() bool {
	return sc.game != nil && sc.game.IsAIOnTurn()
}

// engineMove searches the current position and plays the result. Any
// error here leaves the game in a state that cannot be trusted.
func (sc *ShellController) engineMove() (*Response, error) {
	if !sc.IsPlaying() {
		return nil, game.ErrGameOver
	}
	depth := sc.config.GetInt(config.ConfigSearchDepth)
	sc.showMessage("Engine is thinking...")
	res, err := sc.solver.Search(context.Background(), depth)
	if err != nil {
		return nil, err
	}
	sc.logSearch(res)
	if err := res.Validate(sc.game.Position()); err != nil {
		return nil, err
	}
	if _, err := sc.game.PlayMove(res.Column); err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrInvariantViolation, err)
	}
	sc.searches.Add(searchSample(depth, res))
	return msg(sc.printer.Sprintf("Engine plays column %d (score %d, %d nodes, %.3fs)\n",
		res.Column, res.Score, res.Nodes, res.Elapsed.Seconds()) +
		sc.game.ToDisplayText()), nil
}

func (sc *ShellController) handle(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	if isNumber(cmd.cmd) {
		cmd.args = append([]string{cmd.cmd}, cmd.args...)
		cmd.cmd = "drop"
	}
	switch cmd.cmd {
	case "new", "n":
		return sc.newGame(cmd)
	case "drop", "d":
		return sc.drop(cmd)
	case "ai", "a":
		return sc.aiplay(cmd)
	case "show", "s", "b":
		return sc.show(cmd)
	case "takeback", "undo", "u":
		return sc.takeback(cmd)
	case "search":
		return sc.analyze(cmd)
	case "set":
		return sc.set(cmd)
	case "stats":
		return sc.showStats(cmd)
	case "dump":
		return sc.dump(cmd)
	case "script":
		return sc.script(cmd)
	case "help", "h", "?":
		return sc.help(cmd)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// Loop reads commands until exit, and lets the engine move whenever it is
// on turn.
func (sc *ShellController) Loop(sig chan os.Signal) {

	defer sc.l.Close()

	if sc.game == nil {
		resp, err := sc.newGame(&shellcmd{cmd: "new", options: CmdOptions{}})
		if err != nil {
			sc.showError(err)
		} else {
			sc.showMessage(resp.message)
		}
	}

	for {
		if sc.IsEngineOnTurn() {
			resp, err := sc.engineMove()
			if err != nil {
				sc.fatal = err
				log.Error().Err(err).Msg("engine-move-failed")
				sig <- syscall.SIGINT
				break
			}
			sc.showMessage(resp.message)
			continue
		}

		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" {
			sig <- syscall.SIGINT
			break
		}
		resp, err := sc.handle(line)
		if err != nil {
			if errors.Is(err, search.ErrInvariantViolation) {
				sc.fatal = err
				log.Error().Err(err).Msg("fatal")
				sig <- syscall.SIGINT
				break
			}
			sc.showError(err)
		} else if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
