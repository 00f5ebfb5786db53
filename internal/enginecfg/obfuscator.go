package enginecfg

import "hash/fnv"

// rotationPool is the small whitelist of plausible front SNIs used to
// hide the original TLS server name when rotation is requested. Values
// are unremarkable, frequently-proxied CDN domains.
var rotationPool = []string{
	"www.microsoft.com",
	"www.apple.com",
	"www.cloudflare.com",
	"www.bing.com",
	"www.amazon.com",
}

// Obfuscate is a pure function applied to one backend outbound during
// balancer config assembly. When rotate is true it rewrites the TLS or
// Reality server name to a deterministic pick from rotationPool, keyed
// by the outbound's own content so repeated calls for the same backend
// are stable within one rebuild. It holds no state observable
// elsewhere.
func Obfuscate(outbound map[string]any, rotate bool) map[string]any {
	if !rotate {
		return outbound
	}

	streamSettings, ok := outbound["streamSettings"].(map[string]any)
	if !ok {
		return outbound
	}

	sni := pickSNI(outbound)

	if tlsSettings, ok := streamSettings["tlsSettings"].(map[string]any); ok {
		tlsSettings["serverName"] = sni
	}
	if realitySettings, ok := streamSettings["realitySettings"].(map[string]any); ok {
		realitySettings["serverName"] = sni
	}
	return outbound
}

func pickSNI(outbound map[string]any) string {
	h := fnv.New32a()
	h.Write([]byte(outboundKey(outbound)))
	return rotationPool[int(h.Sum32())%len(rotationPool)]
}

// outboundKey derives a stable string from an outbound's protocol and
// address, good enough to key the deterministic SNI pick without
// needing the original URI.
func outboundKey(outbound map[string]any) string {
	protocol, _ := outbound["protocol"].(string)
	settings, _ := outbound["settings"].(map[string]any)
	if vnext, ok := settings["vnext"].([]map[string]any); ok && len(vnext) > 0 {
		address, _ := vnext[0]["address"].(string)
		return protocol + address
	}
	if servers, ok := settings["servers"].([]map[string]any); ok && len(servers) > 0 {
		address, _ := servers[0]["address"].(string)
		return protocol + address
	}
	return protocol
}
