package config

import "time"

const (
	// DefaultPort is the HTTP port the server under test listens on.
	DefaultPort = 8080

	// DefaultAppContext is the context root of the JASPI test web application.
	DefaultAppContext = "jaspi"

	// DefaultScript is the server's own control script under bin/.
	DefaultScript = "catalina.sh"

	// DefaultDebugArg is passed before "start" when debug mode is enabled.
	DefaultDebugArg = "jpda"

	// DefaultProcessSignature identifies running instances of the server software
	// in the process table.
	DefaultProcessSignature = "org.apache.catalina.startup.Bootstrap"

	// DefaultPollInterval is the cadence of the readiness poll.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultReadinessTimeout bounds the readiness poll.
	DefaultReadinessTimeout = 5 * time.Minute

	// DefaultSettleDelay is waited after a successful shutdown.
	DefaultSettleDelay = 500 * time.Millisecond

	// DefaultClientTimeout bounds a single REST request.
	DefaultClientTimeout = 30 * time.Second
)

// GetDefaultConfig returns the default configuration. Paths are left empty;
// they always come from a file, the environment or flags.
func GetDefaultConfig() HarnessConfig {
	return HarnessConfig{
		Deployment: DeploymentConfig{
			Debug: "false",
		},
		Server: ServerConfig{
			Hostname:         "localhost",
			Port:             DefaultPort,
			AppContext:       DefaultAppContext,
			StartupScript:    DefaultScript,
			ShutdownScript:   DefaultScript,
			DebugArg:         DefaultDebugArg,
			ProcessSignature: DefaultProcessSignature,
		},
		Readiness: ReadinessConfig{
			Interval: DefaultPollInterval,
			Timeout:  DefaultReadinessTimeout,
		},
		Shutdown: ShutdownConfig{
			SettleDelay: DefaultSettleDelay,
		},
		Client: ClientConfig{
			Timeout: DefaultClientTimeout,
		},
	}
}
