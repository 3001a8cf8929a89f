package api

import (
	"net/url"
	"strings"
)

// Param is a single named query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered set of query parameters. Insertion order is preserved
// so derived request URLs are stable. Empty values are kept in the set (a view
// may hold "type: ''" meaning "all") but are never encoded onto a request.
type Params []Param

// With returns a copy with key set to value, replacing an existing entry in
// place or appending a new one.
func (p Params) With(key, value string) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Key: key, Value: value})
}

// Get returns the value for key, or "" if absent.
func (p Params) Get(key string) string {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// Merge returns a copy of p with every entry of other applied on top.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p))
	copy(out, p)
	for _, kv := range other {
		out = out.With(kv.Key, kv.Value)
	}
	return out
}

// Values converts to url.Values, dropping keys whose value is empty after
// trimming. Absent filters must be omitted from the request, never sent as
// empty strings.
func (p Params) Values() url.Values {
	vals := url.Values{}
	for _, kv := range p {
		v := strings.TrimSpace(kv.Value)
		if v == "" {
			continue
		}
		vals.Set(kv.Key, v)
	}
	return vals
}

// Encode renders the non-empty parameters as a query string in sorted key
// order (url.Values encoding).
func (p Params) Encode() string {
	return p.Values().Encode()
}
