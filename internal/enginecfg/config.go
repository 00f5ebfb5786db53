// Package enginecfg assembles the composite engine configuration JSON
// the balancer hands to the external Engine collaborator on every
// rebuild, and applies the obfuscator's pure SNI-rotation transform.
package enginecfg

import "encoding/json"

// BackendSpec is one healthy backend's address tag and outbound
// descriptor, ready to fold into a composite config.
type BackendSpec struct {
	Tag      string
	Outbound map[string]any
}

// BuildOptions controls which optional pieces Build adds to the
// composite config.
type BuildOptions struct {
	ListenPort       int
	Backends         []BackendSpec
	FragmentMode     bool
	RotatingSNI      bool
	FragmentOutbound map[string]any
}

var dohServers = []string{
	"https://1.1.1.1/dns-query",
	"https://8.8.8.8/dns-query",
}

const balancerTag = "hunter-balancer"

// Build assembles the composite engine config described in the
// balancer's build-and-start step: the fragment outbound first when
// FragmentMode is set and FragmentOutbound is non-nil, one outbound per
// healthy backend (obfuscated), a direct fallback only when there are no
// backends, a block blackhole, one SOCKS
// inbound with sniffing, routing binding the inbound to a random
// balancer over the proxy outbounds, and DoH DNS servers.
func Build(opts BuildOptions) ([]byte, error) {
	var outbounds []map[string]any

	if opts.FragmentMode && opts.FragmentOutbound != nil {
		outbounds = append(outbounds, opts.FragmentOutbound)
	}

	selectors := make([]string, 0, len(opts.Backends))
	for _, b := range opts.Backends {
		ob := Obfuscate(b.Outbound, opts.RotatingSNI)
		ob["tag"] = b.Tag
		outbounds = append(outbounds, ob)
		selectors = append(selectors, b.Tag)
	}

	if len(selectors) == 0 {
		outbounds = append(outbounds, map[string]any{
			"protocol": "freedom",
			"tag":      "direct",
			"settings": map[string]any{},
		})
	}

	outbounds = append(outbounds, map[string]any{
		"protocol": "blackhole",
		"tag":      "block",
		"settings": map[string]any{},
	})

	cfg := map[string]any{
		"log": map[string]any{"loglevel": "warning"},
		"inbounds": []map[string]any{
			{
				"tag":      "socks-in",
				"port":     opts.ListenPort,
				"listen":   "127.0.0.1",
				"protocol": "socks",
				"settings": map[string]any{"auth": "noauth", "udp": true},
				"sniffing": map[string]any{
					"enabled":      true,
					"destOverride": []string{"http", "tls", "quic"},
				},
			},
		},
		"outbounds": outbounds,
		"routing": map[string]any{
			"domainStrategy": "AsIs",
			"balancers": []map[string]any{
				{
					"tag":      balancerTag,
					"selector": selectors,
					"strategy": map[string]any{"type": "random"},
				},
			},
			"rules": []map[string]any{
				{
					"type":        "field",
					"inboundTag":  []string{"socks-in"},
					"balancerTag": balancerTag,
				},
			},
		},
		"dns": map[string]any{
			"servers": dohServers,
		},
	}

	return json.Marshal(cfg)
}
