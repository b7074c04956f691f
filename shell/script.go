package shell

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("fourplay_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// luaCommand wraps a shell command as a lua function taking an option
// string and returning the response text.
func luaCommand(name string, fn func(*ShellController, *shellcmd) (*Response, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		lv := L.OptString(1, "")
		sc := getShell(L)
		cmd, err := extractFields(name + " " + lv)
		if err == nil {
			var r *Response
			r, err = fn(sc, cmd)
			if err == nil {
				L.Push(lua.LString(r.message))
				return 1
			}
		}
		log.Err(err).Msg("error-executing-" + name)
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
}

func Drop(L *lua.LState) int {
	col := L.CheckInt(1)
	sc := getShell(L)
	r, err := sc.drop(&shellcmd{cmd: "drop", args: []string{strconv.Itoa(col)}})
	if err != nil {
		log.Err(err).Msg("error-executing-drop")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

// pushJSON converts v to a lua table by way of JSON.
func pushJSON(L *lua.LState, v any) int {
	bts, err := json.Marshal(v)
	if err != nil {
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	lv, err := luajson.Decode(L, bts)
	if err != nil {
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lv)
	return 1
}

func Search(L *lua.LState) int {
	lv := L.OptString(1, "")
	sc := getShell(L)
	cmd, err := extractFields("search " + lv)
	if err != nil {
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	res, err := sc.runSearch(cmd)
	if err != nil {
		log.Err(err).Msg("error-executing-search")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	roots := make(map[string]int, len(res.RootScores))
	for _, rs := range res.RootScores {
		roots[strconv.Itoa(rs.Column)] = rs.Score
	}
	return pushJSON(L, map[string]any{
		"column": res.Column,
		"score":  res.Score,
		"nodes":  res.Nodes,
		"roots":  roots,
	})
}

func State(L *lua.LState) int {
	sc := getShell(L)
	if sc.game == nil {
		L.Push(lua.LString("ERROR: " + errNoGame.Error()))
		return 1
	}
	rec := sc.game.Record()
	return pushJSON(L, map[string]any{
		"uid":    rec.Uid,
		"moves":  rec.Moves,
		"status": rec.Status,
		"rows":   rec.Rows,
		"over":   !sc.IsPlaying(),
		"winner": sc.game.Winner().String(),
	})
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("fourplay_shell", lsc)
	L.SetGlobal("fourplay_new", L.NewFunction(luaCommand("new", (*ShellController).newGame)))
	L.SetGlobal("fourplay_drop", L.NewFunction(Drop))
	L.SetGlobal("fourplay_ai", L.NewFunction(luaCommand("ai", (*ShellController).aiplay)))
	L.SetGlobal("fourplay_show", L.NewFunction(luaCommand("show", (*ShellController).show)))
	L.SetGlobal("fourplay_takeback", L.NewFunction(luaCommand("takeback", (*ShellController).takeback)))
	L.SetGlobal("fourplay_set", L.NewFunction(luaCommand("set", (*ShellController).set)))
	L.SetGlobal("fourplay_search", L.NewFunction(Search))
	L.SetGlobal("fourplay_state", L.NewFunction(State))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg("ran " + filepath), nil
}
