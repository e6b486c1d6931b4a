package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brightloop/acsd/internal/config"
	cfgviper "github.com/brightloop/acsd/internal/config/viper"
	"github.com/brightloop/acsd/internal/model"
)

// configDirEnvVar is the override in the config-loading priority chain,
// distinct from dataDirEnvVar.
const configDirEnvVar = "ACS_CONFIG_DIR"

// LoadConfig implements spec.md §4.8's config priority chain: an explicit
// path is a hard error if missing; every later fallback (ACS_CONFIG_DIR,
// the platform config directory, {data_dir}/config.json) silently falls
// through to the next if its candidate file is absent, bottoming out at
// DefaultDaemonConfig via the Defaulter hook.
func LoadConfig(dataDir, explicitConfigPath string) (model.DaemonConfig, error) {
	backend := cfgviper.New()
	opts := []config.Option{
		config.WithBackend(backend),
		config.WithType("json"),
	}

	if explicitConfigPath != "" {
		opts = append(opts, config.WithConfigFile(explicitConfigPath))
	} else {
		opts = append(opts, config.WithName("config"), config.WithSearchPaths(configSearchPaths(dataDir)...))
	}

	mgr := config.New(opts...)

	cfg := model.DefaultDaemonConfig()
	if err := mgr.LoadInto(&cfg); err != nil {
		return model.DaemonConfig{}, fmt.Errorf("lifecycle: load config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// configSearchPaths returns the fallback directories in priority order:
// $ACS_CONFIG_DIR, the platform user-config directory (the same one
// os.UserConfigDir resolves — XDG_CONFIG_HOME/~/.config on Linux, Library/
// Application Support on macOS, %AppData% on Windows), then data_dir
// itself. Empty/unresolvable candidates are omitted.
func configSearchPaths(dataDir string) []string {
	var paths []string
	if d := os.Getenv(configDirEnvVar); d != "" {
		paths = append(paths, d)
	}
	if d, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(d, "agent-cron-scheduler"))
	}
	paths = append(paths, dataDir)
	return paths
}
