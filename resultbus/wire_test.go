package resultbus

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestEventMarshalBytes(t *testing.T) {
	is := is.New(t)
	evt := Event{GameID: 3, White: "a", Moves: []string{"d1-d7/g4"}}
	want := append([]byte{0x08, 0x03, 0x1a, 0x01, 'a', 0x32, 0x08}, "d1-d7/g4"...)
	is.Equal(evt.Marshal(), want)

	got, err := UnmarshalEvent(want)
	is.NoErr(err)
	is.Equal(got, evt)
}

func TestUnmarshalEventSkipsUnknownFields(t *testing.T) {
	is := is.New(t)
	evt := Event{GameID: 12, Batch: "b", White: "w", Black: "k", Winner: "black",
		Moves: []string{"d1-d7/g4", "j7-g7/g5"}}
	data := protowire.AppendTag(nil, 15, protowire.VarintType)
	data = protowire.AppendVarint(data, 99)
	data = append(data, evt.Marshal()...)
	data = protowire.AppendTag(data, 16, protowire.BytesType)
	data = protowire.AppendString(data, "from a newer publisher")

	got, err := UnmarshalEvent(data)
	is.NoErr(err)
	is.Equal(got, evt)
}

func TestUnmarshalEventMalformed(t *testing.T) {
	is := is.New(t)
	data := Event{GameID: 1, White: "white player"}.Marshal()
	_, err := UnmarshalEvent(data[:len(data)-3])
	is.True(errors.Is(err, ErrBadEvent))
	_, err = UnmarshalEvent([]byte(`{"game_id": 1}`))
	is.True(errors.Is(err, ErrBadEvent))
}
