package config

import (
	"github.com/dmitrijs2005/potkeeper/internal/flagx"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	KeystorePath        string         `json:"keystore_path"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from the file named by
// -c/-config. Keys absent from the file keep their current values.
func parseJson(cfg *Config) {
	jc := &JsonConfig{
		ServerEndpointAddr:  cfg.ServerEndpointAddr,
		OnlineCheckInterval: timex.Duration{Duration: cfg.OnlineCheckInterval},
		KeystorePath:        cfg.KeystorePath,
		RequestTimeout:      timex.Duration{Duration: cfg.RequestTimeout},
	}
	if !flagx.LoadJSON(jc) {
		return
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	cfg.KeystorePath = jc.KeystorePath
	cfg.RequestTimeout = jc.RequestTimeout.Duration
}
