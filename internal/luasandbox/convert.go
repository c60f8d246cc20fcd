package luasandbox

import lua "github.com/yuin/gopher-lua"

// ToLValue converts a Go value to a Lua value. Unsupported types become nil.
func ToLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case []byte:
		return lua.LString(string(x))
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(float64(x))
	case int64:
		return lua.LNumber(float64(x))
	case float64:
		return lua.LNumber(x)
	case map[string]any:
		tbl := L.NewTable()
		for k, v2 := range x {
			tbl.RawSetString(k, ToLValue(L, v2))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, v2 := range x {
			tbl.RawSetInt(i+1, ToLValue(L, v2))
		}
		return tbl
	case []string:
		tbl := L.NewTable()
		for i, s := range x {
			tbl.RawSetInt(i+1, lua.LString(s))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// FromLValue converts a Lua value to Go. Tables with keys 1..n become
// []any, other tables map[string]any.
func FromLValue(v lua.LValue) any {
	switch v.Type() {
	case lua.LTNil:
		return nil
	case lua.LTBool:
		return lua.LVAsBool(v)
	case lua.LTNumber:
		return float64(v.(lua.LNumber))
	case lua.LTString:
		return v.String()
	case lua.LTTable:
		t := v.(*lua.LTable)
		arr := []any{}
		isArray := true
		t.ForEach(func(k, val lua.LValue) {
			if !isArray {
				return
			}
			if lk, ok := k.(lua.LNumber); ok && int(lk) == len(arr)+1 {
				arr = append(arr, FromLValue(val))
			} else {
				isArray = false
			}
		})
		if isArray {
			return arr
		}
		obj := map[string]any{}
		t.ForEach(func(k, val lua.LValue) {
			obj[k.String()] = FromLValue(val)
		})
		return obj
	default:
		return nil
	}
}
