package lua

import (
	"crypto/sha1"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/raniellyferreira/linekv/protocol"
)

// Commander sends one request line and returns the response line
type Commander interface {
	Do(line string) (string, error)
}

// Engine executes Lua scripts that talk to a server through a Commander
type Engine struct {
	commander Commander
	scripts   sync.Map // map[string]string - SHA1 -> script content
}

// NewEngine creates a new Lua execution engine
func NewEngine(commander Commander) *Engine {
	return &Engine{
		commander: commander,
	}
}

// Eval executes a Lua script with the given arguments and returns the
// script's return value converted to Go
func (e *Engine) Eval(script string, args []string) (interface{}, error) {
	L := lua.NewState()
	defer L.Close()

	e.setupAPI(L, args)

	top := L.GetTop()
	if err := L.DoString(script); err != nil {
		return nil, errors.Wrap(err, "script execution error")
	}
	if L.GetTop() == top {
		return nil, nil
	}
	return e.convertLuaValue(L.Get(-1)), nil
}

// EvalFile reads and executes a script file
func (e *Engine) EvalFile(path string, args []string) (interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read script %s", path)
	}
	return e.Eval(string(content), args)
}

// EvalSHA executes a previously loaded script by its SHA1 hash
func (e *Engine) EvalSHA(sha string, args []string) (interface{}, error) {
	script, exists := e.scripts.Load(sha)
	if !exists {
		return nil, errors.Errorf("no script loaded with hash %s", sha)
	}
	return e.Eval(script.(string), args)
}

// LoadScript caches a script and returns its SHA1 hash
func (e *Engine) LoadScript(script string) string {
	hash := fmt.Sprintf("%x", sha1.Sum([]byte(script)))
	e.scripts.Store(hash, script)
	return hash
}

// setupAPI installs ARGV and the kv table
func (e *Engine) setupAPI(L *lua.LState, args []string) {
	argvTable := L.NewTable()
	for i, arg := range args {
		argvTable.RawSetInt(i+1, lua.LString(arg)) // Lua arrays are 1-indexed
	}
	L.SetGlobal("ARGV", argvTable)

	kvTable := L.NewTable()
	L.SetFuncs(kvTable, map[string]lua.LGFunction{
		"call":   e.call,
		"pcall":  e.pcall,
		"set":    e.set,
		"get":    e.get,
		"delete": e.delete,
	})
	L.SetGlobal("kv", kvTable)
}

// call implements kv.call()
func (e *Engine) call(L *lua.LState) int {
	resp, err := e.execute(joinArgs(L))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(toLuaValue(resp))
	return 1
}

// pcall implements kv.pcall(), returning errors as a table with an err field
func (e *Engine) pcall(L *lua.LState) int {
	resp, err := e.execute(joinArgs(L))
	if err != nil {
		errTable := L.NewTable()
		errTable.RawSetString("err", lua.LString(err.Error()))
		L.Push(errTable)
		return 1
	}
	L.Push(toLuaValue(resp))
	return 1
}

func (e *Engine) set(L *lua.LState) int {
	op := protocol.Set(L.CheckString(1), L.CheckString(2))
	return e.callOperation(L, op)
}

func (e *Engine) get(L *lua.LState) int {
	return e.callOperation(L, protocol.Get(L.CheckString(1)))
}

func (e *Engine) delete(L *lua.LState) int {
	return e.callOperation(L, protocol.Delete(L.CheckString(1)))
}

func (e *Engine) callOperation(L *lua.LState, op protocol.Operation) int {
	resp, err := e.execute(strings.TrimSuffix(protocol.Format(op), "\n"))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(toLuaValue(resp))
	return 1
}

// execute sends one line and turns failure responses into errors
func (e *Engine) execute(line string) (string, error) {
	if strings.TrimSpace(line) == "" {
		return "", errors.New("wrong number of arguments for kv command")
	}

	resp, err := e.commander.Do(line)
	if err != nil {
		return "", err
	}
	switch resp {
	case protocol.ErrorCommand, protocol.InternalError:
		return "", errors.New(resp)
	}
	return resp, nil
}

// joinArgs renders the Lua call arguments as one request line
func joinArgs(L *lua.LState) string {
	argc := L.GetTop()
	parts := make([]string, 0, argc)
	for i := 1; i <= argc; i++ {
		parts = append(parts, L.ToString(i))
	}
	return strings.Join(parts, " ")
}

// toLuaValue converts a response line to a Lua value. Empty means nil.
func toLuaValue(resp string) lua.LValue {
	if resp == "" {
		return lua.LNil
	}
	return lua.LString(resp)
}

// convertLuaValue converts a Lua value to a Go value
func (e *Engine) convertLuaValue(lv lua.LValue) interface{} {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case *lua.LTable:
		if n := v.Len(); n > 0 && isArray(v, n) {
			result := make([]interface{}, 0, n)
			for i := 1; i <= n; i++ {
				result = append(result, e.convertLuaValue(v.RawGetInt(i)))
			}
			return result
		}
		result := make(map[string]interface{})
		v.ForEach(func(k, val lua.LValue) {
			result[k.String()] = e.convertLuaValue(val)
		})
		return result
	default:
		return lv.String()
	}
}

// isArray reports whether the table holds exactly the keys 1..n
func isArray(table *lua.LTable, n int) bool {
	count := 0
	array := true
	table.ForEach(func(k, _ lua.LValue) {
		count++
		num, ok := k.(lua.LNumber)
		if !ok || float64(num) != float64(int(num)) || int(num) < 1 || int(num) > n {
			array = false
		}
	})
	return array && count == n
}
