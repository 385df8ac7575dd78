package provider

import (
	"encoding/base64"
	"strings"
)

// stampFields decodes an sdns:// resolver stamp and returns its embedded
// printable fields (address, hostname, path). The walk is deliberately
// tolerant: one protocol byte and eight property bytes are skipped, then
// length-prefixed fields are read until the payload runs out. The high bit
// of a length byte marks hash-list continuation and is ignored; binary
// fields are dropped. A malformed stamp yields whatever fields decoded
// cleanly, or none.
func stampFields(stamp string) []string {
	payload, ok := strings.CutPrefix(stamp, "sdns://")
	if !ok {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(payload)
		if err != nil {
			return nil
		}
	}
	if len(data) < 9 {
		return nil
	}

	var fields []string
	for i := 9; i < len(data); {
		n := int(data[i] & 0x7f)
		i++
		if i+n > len(data) {
			break
		}
		if n > 0 && printable(data[i:i+n]) {
			fields = append(fields, string(data[i:i+n]))
		}
		i += n
	}
	return fields
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
