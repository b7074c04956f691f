package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/fourplay/board"
	"github.com/domino14/fourplay/config"
	"github.com/domino14/fourplay/equity"
	"github.com/domino14/fourplay/internal/logging"
	"github.com/domino14/fourplay/search"
	"github.com/domino14/fourplay/stats"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game in progress; type new")
	errEngineOnTurn      = errors.New("it is the engine's turn")
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type CmdOptions map[string]string

func (c CmdOptions) String(key string) string {
	return c[key]
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v, ok := c[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) BoolDefault(key string, defaultB bool) (bool, error) {
	v, ok := c[key]
	if !ok {
		return defaultB, nil
	}
	return strconv.ParseBool(v)
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// extractFields splits a line into a command, positional arguments and
// -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: CmdOptions{}}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") && !isNumber(fields[i]) {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			cmd.options[fields[i][1:]] = fields[i+1]
			i++
			continue
		}
		cmd.args = append(cmd.args, fields[i])
	}
	return cmd, nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	ai := board.Player(sc.config.GetInt(config.ConfigAIPlayer))
	switch first := cmd.options.String("first"); first {
	case "":
	case "human":
		ai = board.Player2
	case "ai", "engine":
		ai = board.Player1
	case "random":
		ai = lo.Ternary(frand.Intn(2) == 0, board.Player1, board.Player2)
	default:
		return nil, fmt.Errorf("-first must be human, ai or random, not %q", first)
	}
	if err := sc.startGame(ai); err != nil {
		return nil, err
	}
	return sc.show(cmd)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) drop(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("drop <column>")
	}
	col, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", board.ErrInvalidColumn, cmd.args[0])
	}
	if sc.game.IsAIOnTurn() {
		return nil, errEngineOnTurn
	}
	if _, err := sc.game.PlayMove(col); err != nil {
		return nil, err
	}
	return msg(sc.game.ToDisplayText()), nil
}

// aiplay lets the engine move for whoever is on turn.
func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return sc.engineMove()
}

// takeback undoes moves until the last human move is gone, so the human
// is on turn again.
func (sc *ShellController) takeback(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	var undone []string
	for {
		m, err := sc.game.TakeBack()
		if err != nil {
			if len(undone) > 0 {
				break
			}
			return nil, err
		}
		undone = append(undone, m.String())
		if m.Player != sc.game.AIPlayer() {
			break
		}
	}
	return msg("Took back " + strings.Join(undone, ", ") + "\n" + sc.game.ToDisplayText()), nil
}

// runSearch searches the current position without playing anything.
func (sc *ShellController) runSearch(cmd *shellcmd) (search.Result, error) {
	if sc.game == nil {
		return search.Result{}, errNoGame
	}
	depth, err := cmd.options.IntDefault("depth", sc.config.GetInt(config.ConfigSearchDepth))
	if err != nil {
		return search.Result{}, err
	}
	prune, err := cmd.options.BoolDefault("prune", true)
	if err != nil {
		return search.Result{}, err
	}
	sc.solver.SetPruning(prune)
	defer sc.solver.SetPruning(true)
	return sc.solver.Search(context.Background(), depth)
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	res, err := sc.runSearch(cmd)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-8s%8s\n", "Column", "Score")
	for _, rs := range res.RootScores {
		fmt.Fprintf(&sb, "%-8d%8d\n", rs.Column, rs.Score)
	}
	if res.Column == search.NoColumn {
		sb.WriteString("No move to search.\n")
	} else {
		sb.WriteString(sc.printer.Sprintf("Best: column %d, score %d (%d nodes, %.3fs)\n",
			res.Column, res.Score, res.Nodes, res.Elapsed.Seconds()))
	}
	return msg(sb.String()), nil
}

var settable = []string{
	config.ConfigSearchDepth,
	config.ConfigEvaluator,
	config.ConfigBoard,
	config.ConfigLegacyLayout,
	config.ConfigMoveOrder,
	config.ConfigAIPlayer,
	config.ConfigNPSLogInterval,
	config.ConfigDebug,
}

func (sc *ShellController) settingsText() string {
	var sb strings.Builder
	sb.WriteString("Settings:\n")
	for _, key := range settable {
		fmt.Fprintf(&sb, "  %s: %v\n", key, sc.config.Get(key))
	}
	return sb.String()
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.settingsText()), nil
	}
	key := cmd.args[0]
	if !lo.Contains(settable, key) {
		return nil, fmt.Errorf("no such option: %s", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	value := cmd.args[1]
	old := sc.config.Get(key)
	if err := sc.setValue(key, value); err != nil {
		sc.config.Set(key, old)
		if sc.solver != nil {
			if rerr := sc.configureSolver(); rerr != nil {
				log.Err(rerr).Str("key", key).Msg("set-rollback-failed")
			}
		}
		return nil, err
	}
	note := ""
	switch key {
	case config.ConfigBoard, config.ConfigLegacyLayout, config.ConfigAIPlayer:
		note = " (takes effect on the next new game)"
	}
	return msg(fmt.Sprintf("set %s to %v%s", key, sc.config.Get(key), note)), nil
}

func (sc *ShellController) setValue(key, value string) error {
	switch key {
	case config.ConfigSearchDepth:
		d, err := strconv.Atoi(value)
		if err != nil || d < 1 {
			return fmt.Errorf("%s must be a positive number", key)
		}
		sc.config.Set(key, d)
	case config.ConfigAIPlayer:
		p, err := strconv.Atoi(value)
		if err != nil || (p != 1 && p != 2) {
			return fmt.Errorf("%s must be 1 or 2", key)
		}
		sc.config.Set(key, p)
	case config.ConfigLegacyLayout, config.ConfigDebug:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		sc.config.Set(key, b)
		if key == config.ConfigDebug {
			logging.SetDebug(b)
		}
	case config.ConfigNPSLogInterval:
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		sc.config.Set(key, d)
	case config.ConfigBoard:
		if value != "bitboard" && value != "grid" {
			return fmt.Errorf("%s must be bitboard or grid", key)
		}
		sc.config.Set(key, value)
	case config.ConfigEvaluator:
		if _, err := equity.ByName(value); err != nil {
			return err
		}
		sc.config.Set(key, value)
	case config.ConfigMoveOrder:
		if _, err := config.ParseMoveOrder(value); err != nil {
			return err
		}
		sc.config.Set(key, value)
	}
	if sc.solver == nil {
		return nil
	}
	return sc.configureSolver()
}

func (sc *ShellController) showStats(cmd *shellcmd) (*Response, error) {
	var sb strings.Builder
	sum := sc.searches.Summarize()
	if sum.Searches > 0 {
		sb.WriteString(sum.String())
		sb.WriteString("\n")
	}
	if last, ok := lo.Last(sc.searches.Samples()); ok {
		sb.WriteString(sc.printer.Sprintf("Last search: depth %d, column %d, score %d, %d nodes\n",
			last.Depth, last.Column, last.Score, last.Nodes))
	}
	if err := sc.searches.FprintHistogram(&sb, 10); err != nil {
		return nil, err
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) dump(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	bts, err := sc.game.DumpYAML()
	if err != nil {
		return nil, err
	}
	return msg(string(bts)), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage()), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}

func searchSample(depth int, res search.Result) stats.Sample {
	return stats.Sample{
		Depth:   depth,
		Column:  res.Column,
		Score:   res.Score,
		Nodes:   res.Nodes,
		Elapsed: res.Elapsed,
	}
}

func (sc *ShellController) logSearch(res search.Result) {
	log.Info().Int("column", res.Column).
		Str("nodes", sc.printer.Sprintf("%d", res.Nodes)).
		Dur("elapsed", res.Elapsed).
		Msg("engine-move")
}
