// Package game keeps the record of a single human-versus-engine game on
// top of a board.Position.
package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/fourplay/board"
)

type PlayState int

const (
	StatePlaying PlayState = iota
	StateGameOver
)

var (
	ErrGameOver  = errors.New("the game is over")
	ErrNoHistory = errors.New("there are no moves to take back")
)

// Move is one entry of the history. Number starts at 1.
type Move struct {
	Number int          `yaml:"number"`
	Player board.Player `yaml:"-"`
	Column int          `yaml:"column"`
	Row    int          `yaml:"row"`
}

func (m Move) String() string {
	return fmt.Sprintf("%d. %c %d", m.Number, m.Player.Symbol(), m.Column)
}

type Game struct {
	uid      string
	created  time.Time
	pos      board.Position
	aiPlayer board.Player
	history  []Move
}

// NewGame starts a game on pos, which must be empty. aiPlayer is the side
// the engine plays.
func NewGame(pos board.Position, aiPlayer board.Player) (*Game, error) {
	if pos.NumPieces() != 0 {
		return nil, errors.New("a new game needs an empty board")
	}
	if aiPlayer != board.Player1 && aiPlayer != board.Player2 {
		return nil, fmt.Errorf("bad engine player: %v", aiPlayer)
	}
	g := &Game{
		uid:      newGameID(),
		created:  time.Now(),
		pos:      pos,
		aiPlayer: aiPlayer,
	}
	log.Debug().Str("uid", g.uid).Str("ai", aiPlayer.String()).Msg("new-game")
	return g, nil
}

func (g *Game) Uid() string {
	return g.uid
}

func (g *Game) Position() board.Position {
	return g.pos
}

func (g *Game) AIPlayer() board.Player {
	return g.aiPlayer
}

func (g *Game) PlayerOnTurn() board.Player {
	return g.pos.ToMove()
}

// IsAIOnTurn is true while the game runs and the engine has the move.
func (g *Game) IsAIOnTurn() bool {
	return g.Playing() == StatePlaying && g.pos.ToMove() == g.aiPlayer
}

func (g *Game) Winner() board.Player {
	return g.pos.Winner()
}

// IsDraw is true when the board is full and nobody has four.
func (g *Game) IsDraw() bool {
	return g.pos.Winner() == board.NoPlayer && board.Full(g.pos)
}

func (g *Game) Playing() PlayState {
	if g.pos.Winner() != board.NoPlayer || board.Full(g.pos) {
		return StateGameOver
	}
	return StatePlaying
}

// PlayMove drops a piece for the player on turn into col.
func (g *Game) PlayMove(col int) (Move, error) {
	if g.Playing() == StateGameOver {
		return Move{}, ErrGameOver
	}
	pl := g.pos.ToMove()
	row := landingRow(g.pos, col)
	if err := g.pos.Drop(col); err != nil {
		return Move{}, err
	}
	m := Move{Number: len(g.history) + 1, Player: pl, Column: col, Row: row}
	g.history = append(g.history, m)
	log.Debug().Int("column", col).Int("row", row).Str("player", pl.String()).Msg("played")
	if g.Playing() == StateGameOver {
		log.Info().Str("uid", g.uid).Str("winner", g.Winner().String()).Msg("game-over")
	}
	return m, nil
}

// TakeBack removes the last move, also after the game has ended.
func (g *Game) TakeBack() (Move, error) {
	if len(g.history) == 0 {
		return Move{}, ErrNoHistory
	}
	m := g.history[len(g.history)-1]
	if err := g.pos.Undo(m.Column); err != nil {
		return Move{}, err
	}
	g.history = g.history[:len(g.history)-1]
	return m, nil
}

func (g *Game) History() []Move {
	return append([]Move(nil), g.history...)
}

func (g *Game) LastMove() (Move, bool) {
	return lo.Last(g.history)
}

// MoveString lists the columns played, e.g. "3342".
func (g *Game) MoveString() string {
	return strings.Join(lo.Map(g.history, func(m Move, _ int) string {
		return fmt.Sprint(m.Column)
	}), "")
}

func landingRow(p board.Position, col int) int {
	if col < 0 || col >= board.Width {
		return -1
	}
	for row := 0; row < board.Height; row++ {
		if p.Occupant(col, row) == board.NoPlayer {
			return row
		}
	}
	return -1
}

func (g *Game) status() string {
	switch {
	case g.Winner() != board.NoPlayer:
		return fmt.Sprintf("%s (%c) wins", g.Winner(), g.Winner().Symbol())
	case g.IsDraw():
		return "draw"
	}
	who := "you"
	if g.IsAIOnTurn() {
		who = "engine"
	}
	return fmt.Sprintf("%s (%c, %s) to move", g.pos.ToMove(), g.pos.ToMove().Symbol(), who)
}

func (g *Game) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString(board.ToDisplayText(g.pos))
	sb.WriteString(g.status())
	sb.WriteString("\n")
	if m, ok := g.LastMove(); ok {
		fmt.Fprintf(&sb, "Last move: %s\n", m)
	}
	return sb.String()
}

// Record is the serializable summary of a game.
type Record struct {
	Uid      string    `yaml:"uid"`
	Created  time.Time `yaml:"created"`
	Board    string    `yaml:"board"`
	Engine   string    `yaml:"engine"`
	Moves    string    `yaml:"moves"`
	Status   string    `yaml:"status"`
	Rows     []string  `yaml:"rows"`
	Sequence []Move    `yaml:"sequence,omitempty"`
}

func (g *Game) Record() Record {
	rows := strings.Split(strings.TrimRight(board.ToDisplayText(g.pos), "\n"), "\n")
	return Record{
		Uid:      g.uid,
		Created:  g.created,
		Board:    g.pos.Layout().String(),
		Engine:   g.aiPlayer.String(),
		Moves:    g.MoveString(),
		Status:   g.status(),
		Rows:     rows[:board.Height],
		Sequence: g.History(),
	}
}

// DumpYAML writes the game record as YAML.
func (g *Game) DumpYAML() ([]byte, error) {
	return yaml.Marshal(g.Record())
}
