package provisioning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	kmtesting "github.com/jeffrey-arndt/kong-mesh-ecs/internal/testing"
)

func TestStatus_EmptyZone(t *testing.T) {
	t.Parallel()
	engine := kmtesting.NewFakeEngine()
	store := kmtesting.NewMemoryStore()

	st, err := Status(kmtesting.TestContext(t), Deps{Engine: engine, Store: store}, config.StatusRequest{Zone: "z1", Region: "us-east-1"})
	require.NoError(t, err)

	assert.False(t, st.Deployed())
	assert.Empty(t, st.ControlPlaneAddress)
	require.Len(t, st.Stacks, 5)
	for _, s := range st.Stacks {
		assert.False(t, s.Exists, s.Name)
	}
	require.Len(t, st.Secrets, 4)
	assert.Equal(t, "z1/license", st.Secrets[0].Key)
	assert.Equal(t, []string{"describe", "describe", "describe", "describe", "describe"}, opsOf(engine.Calls()))
	assert.Empty(t, engine.CallsFor(kmtesting.OpApply))
}

func TestStatus_PartialZone(t *testing.T) {
	t.Parallel()
	engine := kmtesting.NewFakeEngine().
		Seed("z1-vpc", kmtesting.VPCOutputs()).
		Seed("z1-control-plane", nil)
	store := kmtesting.NewMemoryStore()
	store.Seed("z1/global-token", []byte("t"))
	store.Seed("z1/tls-key", []byte("k"))

	st, err := Status(kmtesting.TestContext(t), Deps{Engine: engine, Store: store}, config.StatusRequest{Zone: "z1"})
	require.NoError(t, err)

	assert.True(t, st.Deployed())
	assert.Equal(t, kmtesting.ControlPlaneAddress, st.ControlPlaneAddress)

	exists := map[string]bool{}
	for _, s := range st.Stacks {
		exists[s.Name] = s.Exists
	}
	assert.Equal(t, map[string]bool{
		"z1-vpc":           true,
		"z1-control-plane": true,
		"z1-ingress":       false,
		"z1-redis":         false,
		"z1-demo-app":      false,
	}, exists)
	assert.Equal(t, "CREATE_COMPLETE", st.Stacks[0].Status)

	secretExists := map[string]bool{}
	for _, s := range st.Secrets {
		secretExists[s.Key] = s.Exists
	}
	assert.Equal(t, map[string]bool{
		"z1/license":      false,
		"z1/global-token": true,
		"z1/tls-key":      true,
		"z1/tls-cert":     false,
	}, secretExists)
}

func TestStatus_DescribeError(t *testing.T) {
	t.Parallel()
	engine := kmtesting.NewFakeEngine().ErrDescribe("z1-ingress", errors.New("throttled"))

	_, err := Status(kmtesting.TestContext(t), Deps{Engine: engine, Store: kmtesting.NewMemoryStore()}, config.StatusRequest{Zone: "z1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to describe stack z1-ingress")
}

func TestStatus_RequiresClients(t *testing.T) {
	t.Parallel()
	_, err := Status(kmtesting.TestContext(t), Deps{Engine: kmtesting.NewFakeEngine()}, config.StatusRequest{Zone: "z1"})
	require.Error(t, err)

	_, err = Status(kmtesting.TestContext(t), Deps{Store: kmtesting.NewMemoryStore()}, config.StatusRequest{Zone: "z1"})
	require.Error(t, err)
}

func opsOf(calls []kmtesting.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Op)
	}
	return out
}
