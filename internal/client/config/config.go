package config

import "time"

// Config holds runtime settings for the tutorsync console.
//
// Fields:
//   - ServerEndpointAddr: host:port of the realtime store gRPC endpoint.
//   - OnlineCheckInterval: how often the console re-checks reachability for the status line.
//   - RemoteTimeout: deadline applied to every remote call.
//   - RefreshInterval: how often watchers re-read the local store.
//   - DataDir / StoreDriver: where and how the local store is kept ("sqlite", "bolt", "memory").
//   - SecretKey: shared HMAC secret used to mint admin write tokens.
//   - SnapshotPath: deployment snapshot restored at startup, if present.
//   - GenAI*: generative-language API used for chapter lists, MCQs and notes.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	RemoteTimeout       time.Duration
	RefreshInterval     time.Duration
	DataDir             string
	StoreDriver         string
	SecretKey           string
	TokenValidity       time.Duration
	SnapshotPath        string
	GenAIBaseURL        string
	GenAIModel          string
	GenAIKeys           []string
	LogFile             string
	LogLevel            string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RemoteTimeout = 5 * time.Second
	c.RefreshInterval = 5 * time.Second
	c.DataDir = "data"
	c.StoreDriver = "sqlite"
	c.SecretKey = "secretKey"
	c.TokenValidity = 10 * time.Minute
	c.SnapshotPath = "initialData.json"
	c.GenAIBaseURL = "https://generativelanguage.googleapis.com"
	c.GenAIModel = "gemini-2.5-flash"
	c.LogFile = "tutorsync.log"
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then JSON (if -c/-config is given), then flags.
// Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
