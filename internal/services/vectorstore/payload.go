package vectorstore

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

const (
	PayloadTitle   = "title"
	PayloadContent = "content"
)

func toPayload(in map[string]interface{}) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(in))
	for k, v := range in {
		out[k] = toValue(v)
	}
	return out
}

func toValue(value interface{}) *qdrant.Value {
	switch v := value.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
	case int32:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
	case uint:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
	case float32:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: float64(v)}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
	case []string:
		values := make([]*qdrant.Value, len(v))
		for i, str := range v {
			values[i] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: str}}
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: values}}}
	case nil:
		return &qdrant.Value{Kind: &qdrant.Value_NullValue{}}
	default:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", v)}}
	}
}

func fromValue(value *qdrant.Value) interface{} {
	switch v := value.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return v.StringValue
	case *qdrant.Value_IntegerValue:
		return v.IntegerValue
	case *qdrant.Value_DoubleValue:
		return v.DoubleValue
	case *qdrant.Value_BoolValue:
		return v.BoolValue
	case *qdrant.Value_ListValue:
		list := make([]interface{}, len(v.ListValue.GetValues()))
		for i, item := range v.ListValue.GetValues() {
			list[i] = fromValue(item)
		}
		return list
	default:
		return nil
	}
}

func toSearchResult(hit *qdrant.ScoredPoint) SearchResult {
	res := SearchResult{
		Score:    hit.GetScore(),
		Metadata: make(map[string]interface{}, len(hit.GetPayload())),
	}
	if id := hit.GetId(); id != nil {
		if u := id.GetUuid(); u != "" {
			res.ID = u
		} else {
			res.ID = fmt.Sprintf("%d", id.GetNum())
		}
	}
	for k, v := range hit.GetPayload() {
		switch k {
		case PayloadTitle:
			res.Title = v.GetStringValue()
		case PayloadContent:
			res.Content = v.GetStringValue()
		default:
			res.Metadata[k] = fromValue(v)
		}
	}
	return res
}
