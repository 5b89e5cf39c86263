//go:build linux
// +build linux

package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const containerdID = "19cd7a809d879d9c855bb93e4d399efe795a769ac856faaa5256cdd8387fe4b1"

func TestParseContainerID(t *testing.T) {
	lines := strings.Join([]string{
		"garbage",
		"0::/kubepods.slice/kubepods-besteffort.slice/kubepods-besteffort-pode6ac4a8d_1076_453e_9ddb_3976520e3178.slice/cri-containerd-" + containerdID + ".scope",
	}, "\n")
	require.Equal(t, containerdID, parseContainerID(strings.NewReader(lines)))
	require.Empty(t, parseContainerID(strings.NewReader("0::/user.slice\n")))
}

func testEnvPaths(t *testing.T) (envPaths, string) {
	dir := t.TempDir()
	block := filepath.Join(dir, "block")
	require.NoError(t, os.Mkdir(block, 0o755))
	return envPaths{
		dockerEnv:      filepath.Join(dir, ".dockerenv"),
		dockerBlock:    block,
		k8sNamespace:   filepath.Join(dir, "namespace"),
		procSelfCgroup: filepath.Join(dir, "cgroup"),
	}, dir
}

func TestDetectAt(t *testing.T) {
	paths, _ := testEnvPaths(t)
	env := detectAt(paths)
	require.Equal(t, Host, env.Kind)
	require.False(t, env.InContainer())

	require.NoError(t, os.WriteFile(paths.dockerEnv, nil, 0o644))
	require.NoError(t, os.WriteFile(paths.procSelfCgroup, []byte("0::/docker/"+containerdID+"\n"), 0o644))
	env = detectAt(paths)
	require.Equal(t, Docker, env.Kind)
	require.Equal(t, containerdID, env.ContainerID)

	require.NoError(t, os.WriteFile(paths.k8sNamespace, []byte("default"), 0o644))
	require.Equal(t, Kubernetes, detectAt(paths).Kind)
}

func TestDetectAt_NoBlockDevices(t *testing.T) {
	paths, _ := testEnvPaths(t)
	require.NoError(t, os.Remove(paths.dockerBlock))
	env := detectAt(paths)
	require.Equal(t, Docker, env.Kind)
	require.Empty(t, env.ContainerID)
}

func TestEnv_MarshalLogObject(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, Env{Kind: Docker, ContainerID: "abc"}.MarshalLogObject(enc))
	require.Equal(t, "docker", enc.Fields["kind"])
	require.Equal(t, "abc", enc.Fields["containerID"])
	require.Contains(t, enc.Fields, "maxProcs")
}
