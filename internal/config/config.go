package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Daemon    DaemonConfig
	Scheduler SchedulerConfig
	Debug     DebugConfig
	Events    EventsConfig
	Auth      AuthConfig
	LogLevel  string
}

// DaemonConfig controls where the daemon stores its runtime state.
type DaemonConfig struct {
	SocketPath string
	RuntimeDir string
	LogDir     string
}

// SchedulerConfig controls the scheduler's tick cadence and shutdown
// grace period.
type SchedulerConfig struct {
	TickInterval       time.Duration
	ShutdownTimeout    time.Duration
	DefaultParallel    int
	RestartMaxAttempts int
	RestartInitialBackoff time.Duration
	RestartMaxBackoff     time.Duration
	RestartBackoffFactor  float64
}

// DebugConfig controls the optional read-only HTTP surface.
type DebugConfig struct {
	Enabled      bool
	Addr         string
	RateLimitRPS int
}

// EventsConfig controls the optional external Redis event mirror.
type EventsConfig struct {
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	HeartbeatInterval time.Duration
}

// AuthConfig controls the control socket's one-shot preshared-secret
// handshake.
type AuthConfig struct {
	Enabled  bool
	Secret   string
	TokenTTL time.Duration
}

// Load reads config.yaml from the current directory, ./config, or
// /etc/pueue-go (in that order), falling back to defaults for anything
// unset. PUEUE_CONFIG_PATH, if set, is added as a fourth, highest-priority
// search path.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if dir := os.Getenv("PUEUE_CONFIG_PATH"); dir != "" {
		viper.AddConfigPath(filepath.Dir(dir))
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/pueue-go")

	setDefaults()

	viper.SetEnvPrefix("PUEUE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pueue-go")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "pueue-go")
}

func setDefaults() {
	runtimeDir := defaultRuntimeDir()

	viper.SetDefault("daemon.runtimedir", runtimeDir)
	viper.SetDefault("daemon.socketpath", filepath.Join(runtimeDir, "daemon.socket"))
	viper.SetDefault("daemon.logdir", filepath.Join(runtimeDir, "task_logs"))

	viper.SetDefault("scheduler.tickinterval", 200*time.Millisecond)
	viper.SetDefault("scheduler.shutdowntimeout", 10*time.Second)
	viper.SetDefault("scheduler.defaultparallel", 0)
	viper.SetDefault("scheduler.restartmaxattempts", 3)
	viper.SetDefault("scheduler.restartinitialbackoff", 1*time.Second)
	viper.SetDefault("scheduler.restartmaxbackoff", 5*time.Minute)
	viper.SetDefault("scheduler.restartbackofffactor", 2.0)

	viper.SetDefault("debug.enabled", false)
	viper.SetDefault("debug.addr", "127.0.0.1:7636")
	viper.SetDefault("debug.ratelimitrps", 20)

	viper.SetDefault("events.redisaddr", "")
	viper.SetDefault("events.redispassword", "")
	viper.SetDefault("events.redisdb", 0)
	viper.SetDefault("events.heartbeatinterval", 10*time.Second)

	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.secret", "")
	viper.SetDefault("auth.tokenttl", 24*time.Hour)

	viper.SetDefault("loglevel", "info")
}
