package docstore

import (
	"encoding/json"
	"time"
)

type serverTimestamp struct{}

// ServerTimestamp is a field value the backend replaces with its own clock
// reading at write time.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Timestamp is the stored representation of a point in time.
type Timestamp struct {
	Seconds int64 `json:"seconds" dynamodbav:"seconds"`
	Nanos   int32 `json:"nanos" dynamodbav:"nanos"`
}

// TimestampOf converts t to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time converts ts back to a UTC time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// AsTime interprets a decoded field value as a time. It accepts Timestamp,
// time.Time, and the {seconds, nanos} map a JSON or attribute-value decoder
// produces.
func AsTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case Timestamp:
		return x.Time(), true
	case *Timestamp:
		if x == nil {
			return time.Time{}, false
		}
		return x.Time(), true
	case time.Time:
		return x, !x.IsZero()
	case map[string]any:
		secs, ok := AsInt64(x["seconds"])
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := AsInt64(x["nanos"])
		return Timestamp{Seconds: secs, Nanos: int32(nanos)}.Time(), true
	case Fields:
		return AsTime(map[string]any(x))
	}
	return time.Time{}, false
}

// AsInt64 interprets a decoded numeric field value.
func AsInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	}
	return 0, false
}

// ResolveTimestamps returns a copy of fields with ServerTimestamp sentinels
// replaced by now and time.Time values converted to Timestamp.
func ResolveTimestamps(fields Fields, now time.Time) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		switch x := v.(type) {
		case serverTimestamp:
			out[k] = TimestampOf(now)
		case time.Time:
			out[k] = TimestampOf(x)
		default:
			out[k] = v
		}
	}
	return out
}

// NormalizeTimestamps rewrites decoded {seconds, nanos} maps in place as
// Timestamp values so callers see one representation regardless of backend.
func NormalizeTimestamps(fields Fields) Fields {
	for k, v := range fields {
		m, ok := v.(map[string]any)
		if !ok || len(m) != 2 {
			continue
		}
		if _, ok := m["seconds"]; !ok {
			continue
		}
		if _, ok := m["nanos"]; !ok {
			continue
		}
		if t, ok := AsTime(m); ok {
			fields[k] = TimestampOf(t)
		}
	}
	return fields
}
