package parser

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"hunterproxy/internal/b64"
	"hunterproxy/internal/model"
)

func parseShadowsocks(uri string) (*model.ParsedConfig, error) {
	rest := strings.TrimPrefix(uri, "ss://")
	rest = strings.TrimPrefix(rest, "shadowsocks://")
	body, frag, _ := strings.Cut(rest, "#")

	var method, password, host string
	var port int

	if at := strings.LastIndex(body, "@"); at >= 0 {
		userinfo := body[:at]
		hostport := body[at+1:]

		method, password = splitMethodPassword(userinfo)

		h, p, err := splitHostPort(hostport)
		if err != nil {
			return nil, fmt.Errorf("host:port: %w", err)
		}
		host = h
		port = p
	} else {
		raw, err := b64.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("base64 decode: %w", err)
		}
		decoded := string(raw)
		at := strings.LastIndex(decoded, "@")
		if at < 0 {
			return nil, fmt.Errorf("missing userinfo in decoded body")
		}
		method, password = splitMethodPassword(decoded[:at])
		h, p, err := splitHostPort(decoded[at+1:])
		if err != nil {
			return nil, fmt.Errorf("host:port: %w", err)
		}
		host = h
		port = p
	}

	if method == "" || password == "" || host == "" || port == 0 {
		return nil, fmt.Errorf("incomplete shadowsocks fields")
	}

	ps := urlDecode(frag)

	outbound := map[string]any{
		"protocol": "shadowsocks",
		"settings": map[string]any{
			"servers": []map[string]any{
				{
					"address":  host,
					"port":     port,
					"method":   method,
					"password": password,
				},
			},
		},
	}

	return &model.ParsedConfig{
		Outbound: outbound,
		Host:     host,
		Port:     port,
		Identity: method + ":" + password,
		PS:       ps,
	}, nil
}

// splitMethodPassword accepts either a plain "method:password" userinfo
// or the same pair base64-encoded as a single token.
func splitMethodPassword(userinfo string) (method, password string) {
	if strings.Contains(userinfo, ":") {
		m, p, _ := strings.Cut(userinfo, ":")
		return m, p
	}
	raw, err := b64.Decode(userinfo)
	if err != nil {
		return "", ""
	}
	m, p, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", ""
	}
	return m, p
}

func splitHostPort(hostport string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port: %w", err)
	}
	return host, port, nil
}
