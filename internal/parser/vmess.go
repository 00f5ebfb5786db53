package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"hunterproxy/internal/b64"
	"hunterproxy/internal/model"
)

// vmessPayload mirrors the base64+JSON body of a vmess:// URI. Port/Aid
// are interface{} because real-world sources emit them as either a JSON
// number or a numeric string.
type vmessPayload struct {
	Add  string      `json:"add"`
	Port interface{} `json:"port"`
	ID   string      `json:"id"`
	Aid  interface{} `json:"aid"`
	PS   string      `json:"ps"`
	Scy  string      `json:"scy"`
	Net  string      `json:"net"`
	TLS  string      `json:"tls"`
	SNI  string      `json:"sni"`
	Path string      `json:"path"`
	Host string      `json:"host"`
}

func parseVMess(uri string) (*model.ParsedConfig, error) {
	rest := strings.TrimPrefix(uri, "vmess://")
	rest, _, _ = strings.Cut(rest, "#")

	raw, err := b64.Decode(rest)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}

	var payload vmessPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	if _, err := uuid.Parse(payload.ID); err != nil {
		return nil, fmt.Errorf("id is not a uuid: %w", err)
	}

	port := toInt(payload.Port)
	ps := payload.PS
	if frag := fragmentPS(uri); frag != "" {
		ps = frag
	}

	tls := strings.EqualFold(payload.TLS, "tls") || strings.EqualFold(payload.TLS, "reality")
	network := payload.Net
	if network == "" {
		network = "tcp"
	}

	outbound := map[string]any{
		"protocol": "vmess",
		"settings": map[string]any{
			"vnext": []map[string]any{
				{
					"address": payload.Add,
					"port":    port,
					"users": []map[string]any{
						{
							"id":       payload.ID,
							"alterId":  toInt(payload.Aid),
							"security": defaultString(payload.Scy, "auto"),
						},
					},
				},
			},
		},
		"streamSettings": streamSettings(network, tls, payload.SNI, payload.Path, payload.Host),
	}

	return &model.ParsedConfig{
		Outbound: outbound,
		Host:     payload.Add,
		Port:     port,
		Identity: payload.ID,
		PS:       ps,
	}, nil
}

func streamSettings(network string, tls bool, sni, path, host string) map[string]any {
	security := "none"
	if tls {
		security = "tls"
	}
	ss := map[string]any{
		"network":  network,
		"security": security,
	}
	if tls {
		tlsSettings := map[string]any{}
		if sni != "" {
			tlsSettings["serverName"] = sni
		}
		ss["tlsSettings"] = tlsSettings
	}
	switch network {
	case "ws":
		ws := map[string]any{}
		if path != "" {
			ws["path"] = path
		}
		if host != "" {
			ws["headers"] = map[string]any{"Host": host}
		}
		ss["wsSettings"] = ws
	case "grpc", "h2":
		g := map[string]any{}
		if path != "" {
			g["serviceName"] = path
		}
		ss["grpcSettings"] = g
	}
	return ss
}

func toInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	default:
		return 0
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
