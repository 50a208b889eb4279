// JSON codec builtins. The mapping is hand-rolled over
// the object.Value tree rather than through encoding/json struct tags,
// because object.Value is a closed interface, not a Go struct the json
// package could reflect over; json-decode/json-encode instead round-trip
// through `any` (map[string]any / []any / string / float64 / bool / nil),
// which is exactly the shape encoding/json already produces and consumes.
//
// Mapping: nil <-> null, Int/Float <-> number, Str <-> string, Bool <->
// true/false, List and Vector -> array (array always decodes to a Vector,
// matching's "arrays decode as vectors"), Map <-> object with
// keyword-symbol keys (":name" <-> "name").
package builtins

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"lispy/lisperr"
	"lispy/object"
)

func init() {
	register("json-encode", jsonEncode)
	register("json-decode", jsonDecode)
}

func jsonEncode(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("json-encode", "1", len(args))
	}
	native, err := toNative(args[0])
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(native)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.Evaluation, err, "builtin", "json-encode")
	}
	return object.Str{Value: string(data)}, nil
}

func jsonDecode(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("json-decode", "1", len(args))
	}
	s, ok := args[0].(object.Str)
	if !ok {
		return nil, typeError("json-decode", "a JSON string", args[0])
	}
	var native any
	if err := json.Unmarshal([]byte(s.Value), &native); err != nil {
		return nil, lisperr.Wrap(lisperr.Evaluation, err, "builtin", "json-decode")
	}
	return fromNative(native), nil
}

func toNative(v object.Value) (any, error) {
	switch val := v.(type) {
	case object.Nil:
		return nil, nil
	case object.Bool:
		return val.Value, nil
	case object.Int:
		return val.Value, nil
	case object.Float:
		return val.Value, nil
	case object.Str:
		return val.Value, nil
	case object.Symbol:
		return strings.TrimPrefix(val.Name, ":"), nil
	case *object.List:
		return toNativeSlice(val.Elements)
	case *object.Vector:
		return toNativeSlice(val.Elements)
	case *object.Map:
		out := make(map[string]any, len(val.Pairs))
		for _, pair := range val.Pairs {
			key, err := jsonObjectKey(pair.Key)
			if err != nil {
				return nil, err
			}
			native, err := toNative(pair.Value)
			if err != nil {
				return nil, err
			}
			out[key] = native
		}
		return out, nil
	default:
		return nil, lisperr.New(lisperr.TypeMismatch, "json-encode: cannot encode %s", v.Type())
	}
}

func toNativeSlice(elements []object.Value) ([]any, error) {
	out := make([]any, len(elements))
	for i, e := range elements {
		native, err := toNative(e)
		if err != nil {
			return nil, err
		}
		out[i] = native
	}
	return out, nil
}

func jsonObjectKey(key object.Value) (string, error) {
	switch k := key.(type) {
	case object.Symbol:
		return strings.TrimPrefix(k.Name, ":"), nil
	case object.Str:
		return k.Value, nil
	default:
		return "", lisperr.New(lisperr.TypeMismatch, "json-encode: map keys must be keywords or strings, got %s", key.Type())
	}
}

func fromNative(v any) object.Value {
	switch val := v.(type) {
	case nil:
		return object.NilValue
	case bool:
		return object.NativeBool(val)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return object.Int{Value: int64(val)}
		}
		return object.Float{Value: val}
	case string:
		return object.Str{Value: val}
	case []any:
		elements := make([]object.Value, len(val))
		for i, e := range val {
			elements[i] = fromNative(e)
		}
		return object.NewVector(elements...)
	case map[string]any:
		m := object.NewMap()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_ = m.Set(object.Symbol{Name: ":" + k}, fromNative(val[k]))
		}
		return m
	default:
		return object.NilValue
	}
}
