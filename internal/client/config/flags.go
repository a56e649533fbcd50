package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
//	-a string   realtime store address
//	-i int      online check interval (seconds)
//	-t int      remote call timeout (seconds)
//	-r int      local refresh interval (seconds)
//	-d string   data directory
//	-s string   local store driver: sqlite, bolt or memory
//	-k string   shared secret for admin tokens
//	-p string   deployment snapshot path
//	-m string   generative model name
//	-g string   comma separated generative API keys
//	-l string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-t", "-r", "-d", "-s", "-k", "-p", "-m", "-g", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	remoteTimeout := fs.Int("t", int(cfg.RemoteTimeout.Seconds()), "remote call timeout (in seconds)")
	refreshInterval := fs.Int("r", int(cfg.RefreshInterval.Seconds()), "local refresh interval (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.StoreDriver, "s", cfg.StoreDriver, "local store driver (sqlite, bolt, memory)")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "shared secret key")
	fs.StringVar(&cfg.SnapshotPath, "p", cfg.SnapshotPath, "deployment snapshot path")
	fs.StringVar(&cfg.GenAIModel, "m", cfg.GenAIModel, "generative model")
	keys := fs.String("g", strings.Join(cfg.GenAIKeys, ","), "generative API keys (comma separated)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
	cfg.RefreshInterval = time.Duration(*refreshInterval) * time.Second
	cfg.GenAIKeys = splitKeys(*keys)
}

func splitKeys(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
