//go:build linux
// +build linux

package runtime

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
)

// Kubernetes mounts the service account namespace file into the pod.
// Docker creates /.dockerenv, and a container has no block devices.
type envPaths struct {
	dockerEnv      string
	dockerBlock    string
	k8sNamespace   string
	procSelfCgroup string
}

var defaultEnvPaths = envPaths{
	dockerEnv:      "/.dockerenv",
	dockerBlock:    "/dev/block",
	k8sNamespace:   "/var/run/secrets/kubernetes.io/serviceaccount/namespace",
	procSelfCgroup: "/proc/self/cgroup",
}

func exists(path string) (os.FileInfo, bool) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	return stat, true
}

func detectAt(paths envPaths) Env {
	env := Env{Kind: Host}
	if stat, ok := exists(paths.k8sNamespace); ok && !stat.IsDir() && stat.Size() > 0 {
		env.Kind = Kubernetes
	} else if stat, ok := exists(paths.dockerEnv); ok && !stat.IsDir() {
		env.Kind = Docker
	} else if _, ok := exists(paths.dockerBlock); !ok {
		env.Kind = Docker
	}
	if env.InContainer() {
		env.ContainerID = loadContainerID(paths.procSelfCgroup)
	}
	return env
}

const (
	uuidSource      = "[0-9a-f]{8}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{12}|[0-9a-f]{8}(?:-[0-9a-f]{4}){4}$"
	containerSource = "[0-9a-f]{64}"
	taskSource      = "[0-9a-f]{32}-\\d+"
)

var (
	// 0::/kubepods.slice/.../cri-containerd-<64 hex>.scope
	cgroupLineRegex  = regexp.MustCompile(`^\d+:[^:]*:(.+)$`)
	containerIDRegex = regexp.MustCompile(fmt.Sprintf(`(%s|%s|%s)(?:.scope)?$`, uuidSource, containerSource, taskSource))
)

func parseContainerID(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		path := cgroupLineRegex.FindStringSubmatch(scanner.Text())
		if len(path) != 2 {
			continue
		}
		if parts := containerIDRegex.FindStringSubmatch(path[1]); len(parts) == 2 {
			return parts[1]
		}
	}
	return ""
}

func loadContainerID(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() {
		_ = f.Close()
	}()
	return parseContainerID(f)
}
