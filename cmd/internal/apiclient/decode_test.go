package apiclient

import (
	"encoding/json"
	"errors"
	"testing"
)

type item struct {
	ID int `json:"id"`
}

func TestDecodeList_RecognizedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"data envelope", `{"data":[{"id":1}],"total":1}`, 1},
		{"items envelope", `{"items":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{"rows envelope", `{"rows":[]}`, 0},
		{"data wins over rows", `{"data":[{"id":1}],"rows":[{"id":1},{"id":2}]}`, 1},
		{"non-array data skipped", `{"data":{"id":1},"items":[{"id":7}]}`, 1},
		{"empty body", ``, 0},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		got, err := DecodeList[item](json.RawMessage(tt.body))
		if err != nil {
			t.Fatalf("%s: err=%v", tt.name, err)
		}
		if len(got) != tt.want {
			t.Fatalf("%s: len=%d want=%d", tt.name, len(got), tt.want)
		}
	}
}

func TestDecodeList_UnknownShapes(t *testing.T) {
	for _, body := range []string{
		`{"results":[{"id":1}]}`,
		`{"data":{"items":[]}}`,
		`"jobs"`,
		`42`,
	} {
		if _, err := DecodeList[item](json.RawMessage(body)); !errors.Is(err, ErrUnknownEnvelope) {
			t.Fatalf("DecodeList(%s) err=%v want ErrUnknownEnvelope", body, err)
		}
	}
}

func TestDecode(t *testing.T) {
	got, err := Decode[item](json.RawMessage(`{"id":5}`))
	if err != nil || got.ID != 5 {
		t.Fatalf("Decode=%+v err=%v", got, err)
	}
	zero, err := Decode[item](nil)
	if err != nil || zero.ID != 0 {
		t.Fatalf("Decode(nil)=%+v err=%v", zero, err)
	}
	if _, err := Decode[item](json.RawMessage(`[1]`)); err == nil {
		t.Fatalf("Decode of mismatched shape must fail")
	}
}
