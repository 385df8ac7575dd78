package rules

// DPI catalog ids for the DNS application family. App-based firewall rules
// reference these instead of ports; a block rule carrying any of them acts
// on DNS traffic.
const (
	appCategoryNetworkProtocols = 5

	AppIDDns          = appCategoryNetworkProtocols<<16 | 10
	AppIDDnsOverTLS   = appCategoryNetworkProtocols<<16 | 244
	AppIDDnsOverHTTPS = appCategoryNetworkProtocols<<16 | 245
)

var dnsAppIDs = map[int]struct{}{
	AppIDDns:          {},
	AppIDDnsOverTLS:   {},
	AppIDDnsOverHTTPS: {},
}

func IsDnsAppID(id int) bool {
	_, ok := dnsAppIDs[id]
	return ok
}

func hasDnsApp(ids []int) bool {
	for _, id := range ids {
		if IsDnsAppID(id) {
			return true
		}
	}
	return false
}
