package apiclient

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Request describes one logical API call.
type Request struct {
	Method string
	Path   string

	// Query values must be strings or numbers. Nil and "" are omitted.
	Query   map[string]any
	Body    any
	Headers map[string]string

	// SkipAuth suppresses the Authorization header.
	SkipAuth bool
}

// Params holds :name substitutions for ExpandPath.
type Params map[string]string

// ExpandPath replaces :name segments in path with escaped values from params.
// Unknown placeholders are left as they are.
func ExpandPath(path string, params Params) string {
	if len(params) == 0 {
		return path
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if !strings.HasPrefix(s, ":") {
			continue
		}
		if v, ok := params[s[1:]]; ok {
			segs[i] = url.PathEscape(v)
		}
	}
	return strings.Join(segs, "/")
}

func (r Request) method() string {
	if m := strings.TrimSpace(r.Method); m != "" {
		return strings.ToUpper(m)
	}
	return "GET"
}

func (r Request) header(name string) (string, bool) {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func encodeQuery(q map[string]any) (string, error) {
	if len(q) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := url.Values{}
	for _, k := range keys {
		s, ok, err := scalar(q[k])
		if err != nil {
			return "", fmt.Errorf("query %q: %w", k, err)
		}
		if ok {
			vals.Set(k, s)
		}
	}
	return vals.Encode(), nil
}

// withQuery merges query into the query string of u.
func withQuery(u, query string) (string, error) {
	if query == "" {
		return u, nil
	}
	pu, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	if pu.RawQuery != "" {
		pu.RawQuery += "&" + query
	} else {
		pu.RawQuery = query
	}
	return pu.String(), nil
}

func scalar(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, x != "", nil
	case *string:
		if x == nil || *x == "" {
			return "", false, nil
		}
		return *x, true, nil
	case int:
		return strconv.Itoa(x), true, nil
	case int32:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int64:
		return strconv.FormatInt(x, 10), true, nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), true, nil
	case uint64:
		return strconv.FormatUint(x, 10), true, nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true, nil
	default:
		return "", false, ErrUnsupportedQueryValue
	}
}
