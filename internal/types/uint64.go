package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

type (
	// Uint64 is a raw machine word. It decodes from a number, a decimal string
	// or a 0x-prefixed hexadecimal string, in JSON and in msgpack, and encodes
	// as hexadecimal.
	Uint64 uint64
)

func (u Uint64) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + strconv.FormatUint(uint64(u), 16))
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	var s string
	if b[0] == '"' {
		err := json.Unmarshal(b, &s)
		if err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	v, err := ParseUint64(s)
	if err != nil {
		return err
	}
	*u = Uint64(v)
	return nil
}

func (u Uint64) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString("0x" + strconv.FormatUint(uint64(u), 16))
}

func (u *Uint64) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		w, err := ParseUint64(v)
		if err != nil {
			return err
		}
		*u = Uint64(w)
	case uint8:
		*u = Uint64(v)
	case uint16:
		*u = Uint64(v)
	case uint32:
		*u = Uint64(v)
	case uint64:
		*u = Uint64(v)
	case int8:
		return u.setSigned(int64(v))
	case int16:
		return u.setSigned(int64(v))
	case int32:
		return u.setSigned(int64(v))
	case int64:
		return u.setSigned(v)
	default:
		return fmt.Errorf("can't decode %T as a machine word", v)
	}
	return nil
}

// ParseUint64 parses a decimal or 0x-prefixed hexadecimal word.
func ParseUint64(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func (u *Uint64) setSigned(v int64) error {
	if v < 0 {
		return fmt.Errorf("negative machine word %d", v)
	}
	*u = Uint64(v)
	return nil
}
