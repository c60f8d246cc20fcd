package luasandbox

import (
	"context"
	"errors"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

const (
	TimeoutViolation = "sandbox timeout"
	MemoryViolation  = "sandbox memory limit"

	DefaultTimeoutMs        = 2000
	DefaultMemoryLimitBytes = 8 * 1024 * 1024
)

// Libs selects the standard libraries opened in a state.
type Libs struct {
	Base   bool
	Table  bool
	String bool
	Math   bool
}

// Options bounds a single script execution.
type Options struct {
	TimeoutMs           int
	MemoryLimitBytes    int
	Libs                Libs
	DeterministicRandom bool
}

// Defaults returns the options used when a caller does not override them.
func Defaults() Options {
	return Options{
		TimeoutMs:           DefaultTimeoutMs,
		MemoryLimitBytes:    DefaultMemoryLimitBytes,
		Libs:                Libs{Base: true, Table: true, String: true, Math: true},
		DeterministicRandom: true,
	}
}

// Run executes code with globals set and returns the script's first return
// value converted to Go. A non-empty violation means a sandbox limit tripped;
// err is set for syntax and runtime errors.
func Run(ctx context.Context, opts Options, seedKey string, globals map[string]any, code string) (any, string, error) {
	L := newState(seedKey, opts)
	defer L.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	if opts.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutMs)*time.Millisecond)
		defer cancel()
	}
	L.SetContext(ctx)

	for k, v := range globals {
		L.SetGlobal(k, ToLValue(L, v))
	}

	fn, err := L.LoadString(code)
	if err != nil {
		return nil, "", err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if isTimeoutError(err) {
			return nil, TimeoutViolation, nil
		}
		if strings.Contains(strings.ToLower(err.Error()), "registry overflow") {
			return nil, MemoryViolation, nil
		}
		return nil, "", err
	}
	ret := L.Get(-1)
	L.Pop(1)
	out := FromLValue(ret)
	if opts.MemoryLimitBytes > 0 && estimateValueSize(out, 0) > opts.MemoryLimitBytes {
		return nil, MemoryViolation, nil
	}
	return out, "", nil
}

// Expression turns code into a chunk returning its value. Code that parses
// as a single expression is wrapped in a return; anything else is kept as a
// statement block.
func Expression(code string) string {
	wrapped := "return (" + code + "\n)"
	if _, err := parse.Parse(strings.NewReader(wrapped), "<expr>"); err == nil {
		return wrapped
	}
	return code
}

func newState(seedKey string, opts Options) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:     true,
		RegistrySize:     1024,
		RegistryMaxSize:  registryMaxFromMemory(opts.MemoryLimitBytes),
		RegistryGrowStep: 32,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	if opts.Libs.Base {
		openLib("base", lua.OpenBase)
	}
	if opts.Libs.String {
		openLib("string", lua.OpenString)
	}
	if opts.Libs.Table {
		openLib("table", lua.OpenTable)
	}
	if opts.Libs.Math {
		openLib("math", lua.OpenMath)
		if opts.DeterministicRandom {
			installDeterministicRandom(L, deterministicSeed(seedKey))
		}
	}
	return L
}

func registryMaxFromMemory(memoryLimitBytes int) int {
	if memoryLimitBytes <= 0 {
		return 1 << 20
	}
	n := memoryLimitBytes / 64
	if n < 1024 {
		n = 1024
	}
	if n > 1<<20 {
		n = 1 << 20
	}
	return n
}

func deterministicSeed(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func installDeterministicRandom(L *lua.LState, seed int64) {
	mathTbl, ok := L.GetGlobal("math").(*lua.LTable)
	if !ok || mathTbl == nil {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	mathTbl.RawSetString("random", L.NewFunction(func(L *lua.LState) int {
		switch L.GetTop() {
		case 0:
			L.Push(lua.LNumber(rng.Float64()))
			return 1
		case 1:
			max := L.CheckInt(1)
			if max < 1 {
				L.ArgError(1, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(max) + 1))
			return 1
		default:
			min := L.CheckInt(1)
			max := L.CheckInt(2)
			if max < min {
				L.ArgError(2, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(max-min+1) + min))
			return 1
		}
	}))
	mathTbl.RawSetString("randomseed", L.NewFunction(func(L *lua.LState) int { return 0 }))
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadline") || strings.Contains(msg, "context canceled")
}

func estimateValueSize(v any, depth int) int {
	if depth > 32 {
		return 0
	}
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return len(x)
	case bool:
		return 1
	case float64:
		return 8
	case map[string]any:
		n := 0
		for k, v2 := range x {
			n += len(k) + estimateValueSize(v2, depth+1)
		}
		return n
	case []any:
		n := 0
		for _, v2 := range x {
			n += estimateValueSize(v2, depth+1)
		}
		return n
	default:
		return 16
	}
}
