package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/flagx"
	"github.com/dmitrijs2005/tutorsync/internal/timex"
)

// JsonConfig is a DTO used only for unmarshalling; durations go through
// timex.Duration so files may say "5s".
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RemoteTimeout       timex.Duration `json:"remote_timeout"`
	RefreshInterval     timex.Duration `json:"refresh_interval"`
	DataDir             string         `json:"data_dir"`
	StoreDriver         string         `json:"store_driver"`
	SecretKey           string         `json:"secret_key"`
	TokenValidity       timex.Duration `json:"token_validity"`
	SnapshotPath        string         `json:"snapshot_path"`
	GenAIBaseURL        string         `json:"genai_base_url"`
	GenAIModel          string         `json:"genai_model"`
	GenAIKeys           []string       `json:"genai_keys"`
	LogFile             string         `json:"log_file"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with the JSON file named by -c/-config.
// Absent fields keep their current values; read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.StoreDriver, jc.StoreDriver)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.SnapshotPath, jc.SnapshotPath)
	setString(&cfg.GenAIBaseURL, jc.GenAIBaseURL)
	setString(&cfg.GenAIModel, jc.GenAIModel)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)

	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.RemoteTimeout, jc.RemoteTimeout)
	setDuration(&cfg.RefreshInterval, jc.RefreshInterval)
	setDuration(&cfg.TokenValidity, jc.TokenValidity)

	if len(jc.GenAIKeys) > 0 {
		cfg.GenAIKeys = jc.GenAIKeys
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
