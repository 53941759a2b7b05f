package config

import (
	"github.com/dmitrijs2005/potkeeper/internal/flagx"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

// JsonConfig is the file form of Config. Durations accept "90s" style
// strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	TxMaxRetries                 uint64         `json:"tx_max_retries"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ProgramID                    string         `json:"program_id"`
	RentPerByte                  uint64         `json:"rent_per_byte"`
	RentBase                     uint64         `json:"rent_base"`
	RentSponsored                bool           `json:"rent_sponsored"`
	SignatureWindow              timex.Duration `json:"signature_window"`
	FaucetEnabled                bool           `json:"faucet_enabled"`
	FaucetMaxAmount              uint64         `json:"faucet_max_amount"`
	FaucetLimitPerHour           int            `json:"faucet_limit_per_hour"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisPassword                string         `json:"redis_password"`
	RedisDB                      int            `json:"redis_db"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	MetricsAddr                  string         `json:"metrics_addr"`
	LogBackend                   string         `json:"log_backend"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current values. An unreadable or malformed file
// panics.
func parseJson(config *Config) {
	c := &JsonConfig{
		EndpointAddrGRPC:             config.EndpointAddrGRPC,
		DatabaseDSN:                  config.DatabaseDSN,
		TxMaxRetries:                 config.TxMaxRetries,
		SecretKey:                    config.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: config.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: config.RefreshTokenValidityDuration},
		ProgramID:                    config.ProgramID,
		RentPerByte:                  config.RentPerByte,
		RentBase:                     config.RentBase,
		RentSponsored:                config.RentSponsored,
		SignatureWindow:              timex.Duration{Duration: config.SignatureWindow},
		FaucetEnabled:                config.FaucetEnabled,
		FaucetMaxAmount:              config.FaucetMaxAmount,
		FaucetLimitPerHour:           config.FaucetLimitPerHour,
		RedisAddr:                    config.RedisAddr,
		RedisPassword:                config.RedisPassword,
		RedisDB:                      config.RedisDB,
		S3RootUser:                   config.S3RootUser,
		S3RootPassword:               config.S3RootPassword,
		S3Bucket:                     config.S3Bucket,
		S3Region:                     config.S3Region,
		S3BaseEndpoint:               config.S3BaseEndpoint,
		MetricsAddr:                  config.MetricsAddr,
		LogBackend:                   config.LogBackend,
		LogLevel:                     config.LogLevel,
	}

	if !flagx.LoadJSON(c) {
		return
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.TxMaxRetries = c.TxMaxRetries
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.ProgramID = c.ProgramID
	config.RentPerByte = c.RentPerByte
	config.RentBase = c.RentBase
	config.RentSponsored = c.RentSponsored
	config.SignatureWindow = c.SignatureWindow.Duration
	config.FaucetEnabled = c.FaucetEnabled
	config.FaucetMaxAmount = c.FaucetMaxAmount
	config.FaucetLimitPerHour = c.FaucetLimitPerHour
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.RedisDB = c.RedisDB
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.MetricsAddr = c.MetricsAddr
	config.LogBackend = c.LogBackend
	config.LogLevel = c.LogLevel
}
