package parser

import (
	"fmt"
	"net/url"
	"strconv"

	"hunterproxy/internal/model"
)

func parseTrojan(uri string) (*model.ParsedConfig, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("url parse: %w", err)
	}
	if u.User == nil {
		return nil, fmt.Errorf("missing userinfo")
	}

	password := u.User.Username()
	host := u.Hostname()
	port, _ := strconv.Atoi(u.Port())

	q := u.Query()
	sni := q.Get("sni")
	network := q.Get("type")
	if network == "" {
		network = "tcp"
	}
	allowInsecure := q.Get("allowInsecure") == "1" || q.Get("allowInsecure") == "true"

	streamSettings := streamSettings(network, true, sni, q.Get("path"), q.Get("host"))
	tlsSettings, _ := streamSettings["tlsSettings"].(map[string]any)
	if tlsSettings == nil {
		tlsSettings = map[string]any{}
		streamSettings["tlsSettings"] = tlsSettings
	}
	tlsSettings["allowInsecure"] = allowInsecure

	outbound := map[string]any{
		"protocol": "trojan",
		"settings": map[string]any{
			"servers": []map[string]any{
				{"address": host, "port": port, "password": password},
			},
		},
		"streamSettings": streamSettings,
	}

	return &model.ParsedConfig{
		Outbound: outbound,
		Host:     host,
		Port:     port,
		Identity: password,
		PS:       fragmentPS(uri),
	}, nil
}
