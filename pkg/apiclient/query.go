package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
)

// QueryEncoder lets a payload enumerate its own query parameters instead of
// relying on struct reflection.
type QueryEncoder interface {
	EncodeQuery() (url.Values, error)
}

// usesQuery reports whether the payload of a call with this verb travels in
// the query string.
func usesQuery(method string) bool {
	return method == http.MethodGet || method == http.MethodDelete
}

// buildURL joins controller and endpoint and, for GET and DELETE, appends the
// flattened payload.
func buildURL(method, controller, endpoint string, payload any) (string, error) {
	u := strings.TrimRight(controller, "/") + "/" + strings.TrimLeft(endpoint, "/")
	if !usesQuery(method) || isNil(payload) {
		return u, nil
	}

	vals, err := encodeQuery(payload)
	if err != nil {
		return "", &EncodeError{Payload: fmt.Sprintf("%T", payload), Err: err}
	}
	if len(vals) == 0 {
		return u, nil
	}
	return u + "?" + vals.Encode(), nil
}

func encodeQuery(payload any) (url.Values, error) {
	switch p := payload.(type) {
	case QueryEncoder:
		return p.EncodeQuery()
	case url.Values:
		out := make(url.Values, len(p))
		for k, v := range p {
			out[k] = append([]string(nil), v...)
		}
		return out, nil
	case map[string]string:
		out := make(url.Values, len(p))
		for k, v := range p {
			out.Set(k, v)
		}
		return out, nil
	case map[string]any:
		out := make(url.Values, len(p))
		for k, v := range p {
			if isNil(v) {
				continue
			}
			out.Set(k, queryValue(v))
		}
		return out, nil
	}

	rv := reflect.ValueOf(payload)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("query payload must be a struct, map or QueryEncoder, got %T", payload)
	}

	vals, err := query.Values(rv.Interface())
	if err != nil {
		return nil, err
	}
	dropNilFields(vals, rv)
	return vals, nil
}

// dropNilFields removes keys whose top-level field holds nil. go-querystring
// would otherwise emit them with an empty value.
func dropNilFields(vals url.Values, rv reflect.Value) {
	typ := rv.Type()
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("url")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			if sf.Anonymous {
				continue
			}
			name = sf.Name
		}

		if isNilValue(rv.Field(i)) {
			vals.Del(name)
		}
	}
}

// queryValue renders a map value as a parameter. Floats are written in plain
// decimal since JSON-decoded integers arrive as float64.
func queryValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case json.Number:
		return n.String()
	}
	return fmt.Sprint(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	return isNilValue(reflect.ValueOf(v))
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
