package nat

import (
	"fmt"
	"net"
	"strings"
)

// ParseAddressRange expands an "A-B" range into every member address when
// both bounds parse as IPv4, sit in the same /24, and A <= B. A reversed
// or cross-subnet range is ambiguous vendor input and comes back as the
// single literal unchanged, as does a plain address. An empty value has
// no members.
func ParseAddressRange(value string) []string {
	if value == "" {
		return nil
	}
	dash := strings.Index(value, "-")
	if dash < 0 {
		return []string{value}
	}

	start := net.ParseIP(strings.TrimSpace(value[:dash]))
	end := net.ParseIP(strings.TrimSpace(value[dash+1:]))
	if start == nil || end == nil {
		return []string{value}
	}
	start4, end4 := start.To4(), end.To4()
	if start4 == nil || end4 == nil {
		return []string{value}
	}
	if start4[0] != end4[0] || start4[1] != end4[1] || start4[2] != end4[2] {
		return []string{value}
	}
	if start4[3] > end4[3] {
		return []string{value}
	}

	out := make([]string, 0, int(end4[3])-int(start4[3])+1)
	for last := int(start4[3]); last <= int(end4[3]); last++ {
		out = append(out, fmt.Sprintf("%d.%d.%d.%d", start4[0], start4[1], start4[2], last))
	}
	return out
}
