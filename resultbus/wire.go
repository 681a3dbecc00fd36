package resultbus

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrBadEvent is returned for payloads that are not an encoded Event.
var ErrBadEvent = errors.New("malformed event")

// Events travel as protobuf messages of this shape:
//
//	message Event {
//	  int64  game_id = 1;
//	  string batch   = 2;
//	  string white   = 3;
//	  string black   = 4;
//	  string winner  = 5;
//	  repeated string moves = 6;
//	}
const (
	fieldGameID protowire.Number = 1
	fieldBatch  protowire.Number = 2
	fieldWhite  protowire.Number = 3
	fieldBlack  protowire.Number = 4
	fieldWinner protowire.Number = 5
	fieldMoves  protowire.Number = 6
)

// Marshal encodes the event. Zero-valued scalars are left out, as proto3
// does.
func (e Event) Marshal() []byte {
	var b []byte
	if e.GameID != 0 {
		b = protowire.AppendTag(b, fieldGameID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(e.GameID)))
	}
	b = appendString(b, fieldBatch, e.Batch)
	b = appendString(b, fieldWhite, e.White)
	b = appendString(b, fieldBlack, e.Black)
	b = appendString(b, fieldWinner, e.Winner)
	for _, m := range e.Moves {
		b = protowire.AppendTag(b, fieldMoves, protowire.BytesType)
		b = protowire.AppendString(b, m)
	}
	return b
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// UnmarshalEvent decodes an event written by Marshal. Unknown fields are
// skipped.
func UnmarshalEvent(data []byte) (Event, error) {
	var e Event
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Event{}, fmt.Errorf("%w: %v", ErrBadEvent, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldGameID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Event{}, fmt.Errorf("%w: game_id: %v", ErrBadEvent, protowire.ParseError(n))
			}
			e.GameID = int(int64(v))
			data = data[n:]
		case num >= fieldBatch && num <= fieldMoves && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return Event{}, fmt.Errorf("%w: field %d: %v", ErrBadEvent, num, protowire.ParseError(n))
			}
			switch num {
			case fieldBatch:
				e.Batch = v
			case fieldWhite:
				e.White = v
			case fieldBlack:
				e.Black = v
			case fieldWinner:
				e.Winner = v
			case fieldMoves:
				e.Moves = append(e.Moves, v)
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Event{}, fmt.Errorf("%w: field %d: %v", ErrBadEvent, num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return e, nil
}
