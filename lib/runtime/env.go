package runtime

import (
	"runtime"

	"go.uber.org/zap/zapcore"
)

type EnvKind string

const (
	Host       EnvKind = "host"
	Docker     EnvKind = "docker"
	Kubernetes EnvKind = "kubernetes"
)

// Env is where the process runs. GOMAXPROCS only follows the cgroup
// CPU quota inside containers.
type Env struct {
	Kind        EnvKind
	ContainerID string
}

func (e Env) InContainer() bool {
	return e.Kind != Host
}

func (e Env) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", string(e.Kind))
	if e.ContainerID != "" {
		enc.AddString("containerID", e.ContainerID)
	}
	enc.AddString("os", runtime.GOOS)
	enc.AddInt("numCPU", runtime.NumCPU())
	enc.AddInt("maxProcs", runtime.GOMAXPROCS(0))
	return nil
}

func Detect() Env {
	return detectAt(defaultEnvPaths)
}
