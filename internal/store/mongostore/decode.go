package mongostore

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

// decodeStored maps a queue document field by field. Missing, null or
// mistyped fields stay nil so rehydration falls back to defaults; older
// documents carry Firestore style {_seconds,_nanoseconds} timestamps.
func decodeStored(doc bson.Raw) (queue.Gamemode, queue.Stored, bool) {
	key := stringValue(doc.Lookup("_id"))
	if key == nil {
		key = stringValue(doc.Lookup("gamemode"))
	}
	if key == nil {
		return "", queue.Stored{}, false
	}
	gm := queue.Gamemode(strings.ToLower(*key))

	var rec queue.Stored
	if b, ok := doc.Lookup("isOpen").BooleanOK(); ok {
		rec.IsOpen = &b
	}
	rec.Players = stringsValue(doc.Lookup("players"))
	rec.ActiveTesters = stringsValue(doc.Lookup("activeTesters"))
	rec.ChannelID = stringValue(doc.Lookup("channelId"))
	rec.MessageID = stringValue(doc.Lookup("messageId"))
	rec.OpenedBy = stringValue(doc.Lookup("openedBy"))
	rec.OpenedAt = timeValue(doc.Lookup("openedAt"))
	rec.LastOpenedAt = timeValue(doc.Lookup("lastOpenedAt"))
	rec.ClosedBy = stringValue(doc.Lookup("closedBy"))
	rec.ClosedAt = timeValue(doc.Lookup("closedAt"))
	rec.CloseReason = stringValue(doc.Lookup("closeReason"))
	rec.Region = stringValue(doc.Lookup("region"))
	return gm, rec, true
}

func stringValue(v bson.RawValue) *string {
	s, ok := v.StringValueOK()
	if !ok {
		return nil
	}
	return &s
}

func stringsValue(v bson.RawValue) []string {
	arr, ok := v.ArrayOK()
	if !ok {
		return nil
	}
	vals, err := arr.Values()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, e := range vals {
		if s, ok := e.StringValueOK(); ok {
			out = append(out, s)
		}
	}
	return out
}

func timeValue(v bson.RawValue) *time.Time {
	var t time.Time
	if ms, ok := v.DateTimeOK(); ok {
		t = time.UnixMilli(ms)
	} else if sec, _, ok := v.TimestampOK(); ok {
		t = time.Unix(int64(sec), 0)
	} else if sub, ok := v.DocumentOK(); ok {
		sec, ok := number(firstOf(sub, "_seconds", "seconds"))
		if !ok {
			return nil
		}
		nanos, _ := number(firstOf(sub, "_nanoseconds", "nanoseconds"))
		t = time.Unix(sec, nanos)
	} else if ms, ok := number(v); ok {
		t = time.UnixMilli(ms)
	} else if s, ok := v.StringValueOK(); ok {
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil
		}
		t = parsed
	} else {
		return nil
	}
	t = t.UTC()
	return &t
}

func firstOf(doc bson.Raw, keys ...string) bson.RawValue {
	for _, k := range keys {
		if v, err := doc.LookupErr(k); err == nil {
			return v
		}
	}
	return bson.RawValue{}
}

func number(v bson.RawValue) (int64, bool) {
	if i, ok := v.Int64OK(); ok {
		return i, true
	}
	if i, ok := v.Int32OK(); ok {
		return int64(i), true
	}
	if f, ok := v.DoubleOK(); ok {
		return int64(f), true
	}
	return 0, false
}
