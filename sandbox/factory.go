package sandbox

import (
	"fmt"

	"go.uber.org/zap"
)

// NewRunner creates the sandbox runner for the configured backend. Docker
// and Podman share the ContainerRunner; they differ only in the CLI
// binary invoked.
func NewRunner(logger *zap.Logger, config *Config, backend string) (Runner, error) {
	switch backend {
	case "docker":
		return NewContainerRunner(logger, config, "docker"), nil
	case "podman":
		return NewContainerRunner(logger, config, "podman"), nil
	case "local":
		return NewLocalRunner(logger, config), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
