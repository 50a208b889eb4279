// HTTP builtins. Each verb is a thin wrapper
// over the generic http-request, which itself just shapes arguments into an
// internal/httpclient.Request, performs it, and turns the
// internal/httpclient.Response back into the response map
// describes: {:status :headers :body :url :ok :json}.
package builtins

import (
	"encoding/json"
	"strings"

	"lispy/internal/httpclient"
	"lispy/lisperr"
	"lispy/object"
)

func init() {
	register("get", httpGet)
	register("post", httpPost)
	register("put", httpPut)
	register("delete", httpDelete)
	register("http-request", httpRequest)
}

// httpGet owns the name "get": http.go's init runs after collection.go's and
// replaces that registration, so any call whose first argument is not a URL
// string is handed on to the collection lookup.
func httpGet(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) > 0 {
		if _, isURL := args[0].(object.Str); !isURL {
			return get(args, env)
		}
	}
	if len(args) < 1 || len(args) > 2 {
		return nil, arityError("get", "1 or 2", len(args))
	}
	return doRequest("GET", args[0], nil, optionalHeaders(args, 1))
}

func httpPost(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, arityError("post", "2 or 3", len(args))
	}
	return doRequest("POST", args[0], args[1], optionalHeaders(args, 2))
}

func httpPut(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, arityError("put", "2 or 3", len(args))
	}
	return doRequest("PUT", args[0], args[1], optionalHeaders(args, 2))
}

func httpDelete(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, arityError("delete", "1 or 2", len(args))
	}
	return doRequest("DELETE", args[0], nil, optionalHeaders(args, 1))
}

func httpRequest(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) < 2 || len(args) > 4 {
		return nil, arityError("http-request", "2 to 4", len(args))
	}
	method, ok := args[0].(object.Str)
	if !ok {
		return nil, typeError("http-request", "a method string", args[0])
	}
	var body object.Value
	if len(args) >= 3 {
		body = args[2]
	}
	return doRequest(method.Value, args[1], body, optionalHeaders(args, 3))
}

func optionalHeaders(args []object.Value, index int) object.Value {
	if index < len(args) {
		return args[index]
	}
	return nil
}

func doRequest(method string, urlArg object.Value, body object.Value, headersArg object.Value) (object.Value, error) {
	urlStr, ok := urlArg.(object.Str)
	if !ok {
		return nil, typeError(strings.ToLower(method), "a URL string", urlArg)
	}

	headers := map[string]string{}
	if headersArg != nil {
		m, ok := headersArg.(*object.Map)
		if !ok {
			return nil, typeError(strings.ToLower(method), "a map of headers", headersArg)
		}
		for _, pair := range m.Pairs {
			key, err := jsonObjectKey(pair.Key)
			if err != nil {
				return nil, err
			}
			val, ok := pair.Value.(object.Str)
			if !ok {
				return nil, lisperr.New(lisperr.TypeMismatch, "header %q must be a string value", key)
			}
			headers[key] = val.Value
		}
	}

	data, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := httpclient.Do(httpclient.Request{
		Method:      method,
		URL:         urlStr.Value,
		Headers:     headers,
		Body:        data,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	return buildResponse(resp), nil
}

func encodeBody(body object.Value) ([]byte, string, error) {
	switch b := body.(type) {
	case nil, object.Nil:
		return nil, "", nil
	case object.Str:
		return []byte(b.Value), "text/plain; charset=utf-8", nil
	default:
		native, err := toNative(body)
		if err != nil {
			return nil, "", err
		}
		data, err := jsonMarshal(native)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
}

func buildResponse(resp *httpclient.Response) object.Value {
	m := object.NewMap()
	_ = m.Set(object.Symbol{Name: ":status"}, object.Int{Value: int64(resp.StatusCode)})
	_ = m.Set(object.Symbol{Name: ":url"}, object.Str{Value: resp.URL})
	_ = m.Set(object.Symbol{Name: ":body"}, object.Str{Value: string(resp.Body)})
	_ = m.Set(object.Symbol{Name: ":ok"}, object.NativeBool(resp.StatusCode >= 200 && resp.StatusCode < 300))

	headers := object.NewMap()
	for name, values := range resp.Headers {
		if len(values) == 0 {
			continue
		}
		_ = headers.Set(object.Symbol{Name: ":" + strings.ToLower(name)}, object.Str{Value: values[0]})
	}
	_ = m.Set(object.Symbol{Name: ":headers"}, headers)

	if decoded, err := jsonUnmarshalValue(resp.Body); err == nil {
		_ = m.Set(object.Symbol{Name: ":json"}, decoded)
	} else {
		_ = m.Set(object.Symbol{Name: ":json"}, object.NilValue)
	}
	return m
}

func jsonMarshal(native any) ([]byte, error) {
	data, err := json.Marshal(native)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.Evaluation, err, "builtin", "http-request")
	}
	return data, nil
}

func jsonUnmarshalValue(body []byte) (object.Value, error) {
	var native any
	if err := json.Unmarshal(body, &native); err != nil {
		return nil, err
	}
	return fromNative(native), nil
}
