package parser

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"hunterproxy/internal/model"
)

func parseVLESS(uri string) (*model.ParsedConfig, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("url parse: %w", err)
	}
	if u.User == nil {
		return nil, fmt.Errorf("missing userinfo")
	}

	id := u.User.Username()
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("id is not a uuid: %w", err)
	}
	host := u.Hostname()
	port, _ := strconv.Atoi(u.Port())

	q := u.Query()
	security := q.Get("security")
	network := q.Get("type")
	if network == "" {
		network = "tcp"
	}
	sni := q.Get("sni")
	fp := q.Get("fp")
	pbk := q.Get("pbk")
	sid := q.Get("sid")
	path := q.Get("path")
	hostHeader := q.Get("host")
	serviceName := q.Get("serviceName")
	encryption := q.Get("encryption")
	if encryption == "" {
		encryption = "none"
	}

	tls := security == "tls" || security == "reality"

	streamSettings := streamSettings(network, tls, sni, path, hostHeader)
	if network == "grpc" && serviceName != "" {
		streamSettings["grpcSettings"] = map[string]any{"serviceName": serviceName}
	}
	if security == "reality" {
		realitySettings := map[string]any{
			"serverName":  sni,
			"fingerprint": fp,
			"publicKey":   pbk,
			"shortId":     sid,
		}
		streamSettings["security"] = "reality"
		streamSettings["realitySettings"] = realitySettings
		delete(streamSettings, "tlsSettings")
	}

	outbound := map[string]any{
		"protocol": "vless",
		"settings": map[string]any{
			"vnext": []map[string]any{
				{
					"address": host,
					"port":    port,
					"users": []map[string]any{
						{"id": id, "encryption": encryption},
					},
				},
			},
		},
		"streamSettings": streamSettings,
	}

	return &model.ParsedConfig{
		Outbound: outbound,
		Host:     host,
		Port:     port,
		Identity: id,
		PS:       fragmentPS(uri),
	}, nil
}
