package format

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// NoteViews holds the alternate human readable renderings of a transaction
// note. Views that cannot be derived hold NotAvailable.
type NoteViews struct {
	Present     bool   `json:"present"`
	Base64      string `json:"base64"`
	ASCII       string `json:"ascii"`
	Hex         string `json:"hex"`
	Uint64      string `json:"uint64"`
	MessagePack string `json:"msgpack"`
}

// DecodeNote decodes a base64 note as sent by the indexer. It never fails,
// undecodable input yields NotAvailable views.
func DecodeNote(b64 string) NoteViews {
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return DecodeNoteBytes(nil)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return NoteViews{
			Present:     true,
			Base64:      b64,
			ASCII:       NotAvailable,
			Hex:         NotAvailable,
			Uint64:      NotAvailable,
			MessagePack: NotAvailable,
		}
	}
	return DecodeNoteBytes(raw)
}

// DecodeNoteBytes renders raw note bytes.
func DecodeNoteBytes(note []byte) NoteViews {
	if len(note) == 0 {
		return NoteViews{
			ASCII:       NotAvailable,
			Uint64:      NotAvailable,
			MessagePack: NotAvailable,
		}
	}

	views := NoteViews{
		Present:     true,
		Base64:      base64.StdEncoding.EncodeToString(note),
		ASCII:       asciiView(note),
		Hex:         hex.EncodeToString(note),
		Uint64:      NotAvailable,
		MessagePack: NotAvailable,
	}
	if v, ok := DecodeUint64Note(note); ok {
		views.Uint64 = strconv.FormatUint(v, 10)
	}
	if v, ok := msgpackView(note); ok {
		views.MessagePack = v
	}
	return views
}

// DecodeUint64Note interprets up to 8 bytes as a big endian unsigned integer.
// Shorter input is left padded with zero bytes. Longer input is rejected.
func DecodeUint64Note(note []byte) (uint64, bool) {
	if len(note) > 8 {
		return 0, false
	}
	var buf [8]byte
	copy(buf[8-len(note):], note)
	return binary.BigEndian.Uint64(buf[:]), true
}

// EncodeUint64Note is the inverse of DecodeUint64Note for 8 byte notes.
func EncodeUint64Note(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// asciiView keeps the low seven bits of every byte. Control characters are
// preserved as is.
func asciiView(note []byte) string {
	var b strings.Builder
	b.Grow(len(note))
	for _, c := range note {
		b.WriteRune(rune(c & 0x7f))
	}
	return b.String()
}

// msgpackView decodes the note as a MessagePack map with string keys and
// renders it as JSON. The whole note must be consumed.
func msgpackView(note []byte) (string, bool) {
	r := bytes.NewReader(note)
	dec := msgpack.NewDecoder(r)
	m, err := dec.DecodeMap()
	if err != nil || m == nil || r.Len() != 0 {
		return "", false
	}
	out, err := json.Marshal(m)
	if err != nil {
		return "", false
	}
	return string(out), true
}
