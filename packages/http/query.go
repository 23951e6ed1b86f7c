package http

import (
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// QueryItem is one query parameter. A nil Value renders the bare name with no
// "=".
type QueryItem struct {
	Name  string
	Value *string
}

// Param returns a name=value query item.
func Param(name, value string) QueryItem {
	return QueryItem{Name: name, Value: &value}
}

// Flag returns a query item rendered as the bare name.
func Flag(name string) QueryItem {
	return QueryItem{Name: name}
}

func (q QueryItem) String() string {
	name := escapeQuery(q.Name)
	if q.Value == nil {
		return name
	}
	return name + "=" + escapeQuery(*q.Value)
}

// QuerySource produces query items when a request is built.
type QuerySource interface {
	Items() ([]QueryItem, error)
}

type literalQuery []QueryItem

func (q literalQuery) Items() ([]QueryItem, error) {
	out := make([]QueryItem, len(q))
	copy(out, q)
	return out, nil
}

// QueryItems is a QuerySource over a fixed list. Order and duplicate names are
// kept as given.
func QueryItems(items ...QueryItem) QuerySource {
	out := make(literalQuery, len(items))
	copy(out, items)
	return out
}

type valueQuery struct {
	value      any
	serializer Serializer
}

// QueryValue is a QuerySource that flattens the top-level fields of value into
// query items. Nested objects are skipped. Failures to serialize the value are
// reported as KindBuildingURL.
func QueryValue(value any, serializer Serializer) QuerySource {
	if serializer == nil {
		serializer = DefaultSerializer
	}
	return valueQuery{value: value, serializer: serializer}
}

func (q valueQuery) Items() ([]QueryItem, error) {
	data, err := q.serializer.Encode(q.value)
	if err != nil {
		return nil, buildingURLError(err)
	}
	if !gjson.ValidBytes(data) {
		return nil, buildingURLError(errInvalidQueryPayload)
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return []QueryItem{}, nil
	}

	items := []QueryItem{}
	doc.ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.IsObject():
			zap.L().Warn("nested objects are not supported in query parameters, skipping field",
				zap.String("field", key.String()))
		case value.Type == gjson.Null:
		case value.Type == gjson.String:
			items = append(items, Param(key.String(), value.Str))
		default:
			items = append(items, Param(key.String(), value.Raw))
		}
		return true
	})
	return items, nil
}

// encodeQuery renders items in order, joined with "&".
func encodeQuery(items []QueryItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, "&")
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
