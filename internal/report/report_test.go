package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDeploy_Success(t *testing.T) {
	t.Parallel()

	out := RenderDeploy(Deploy{
		Zone:   "z1",
		Region: "us-east-1",
		Mode:   "hosted",
		Stacks: []StackRow{
			{Name: "z1-vpc", Role: "vpc", State: StateApplied},
			{Name: "z1-control-plane", Role: "control-plane", State: StateApplied},
		},
		Secrets: []SecretRow{
			{Key: "z1/global-token", Status: SecretCreated},
			{Key: "z1/tls-key", Status: SecretReused},
		},
		ControlPlaneAddress: "z1-cp.elb.amazonaws.com",
	})

	assert.Contains(t, out, "kmecs deploy: z1 (us-east-1)")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "z1-control-plane")
	assert.Contains(t, out, "z1/tls-key")
	assert.Contains(t, out, SecretReused)
	assert.Contains(t, out, "z1-cp.elb.amazonaws.com")
	assert.Contains(t, out, "kmecs teardown --zone-name z1 --region us-east-1")
	assert.NotContains(t, out, "incomplete")
}

func TestRenderDeploy_Failure(t *testing.T) {
	t.Parallel()

	out := RenderDeploy(Deploy{
		Zone:   "z1",
		Region: "us-east-1",
		Stacks: []StackRow{
			{Name: "z1-vpc", State: StateApplied},
			{Name: "z1-control-plane", State: StateFailed, Reason: "CIDR overlaps"},
			{Name: "z1-ingress", State: StateNotApplied},
		},
		Err: errors.New("stack z1-control-plane failed to apply"),
	})

	assert.Contains(t, out, "incomplete")
	assert.Contains(t, out, "CIDR overlaps")
	assert.Contains(t, out, crossMark)
	assert.Contains(t, out, pending)
	assert.Contains(t, out, "stay in place")
	assert.NotContains(t, out, "Control plane\n")
}

func TestRenderTeardown(t *testing.T) {
	t.Parallel()

	out := RenderTeardown(Teardown{
		Zone:      "z1",
		Region:    "us-east-1",
		Deleted:   []string{"z1-demo-app", "z1-ingress"},
		Absent:    []string{"z1-redis"},
		Remaining: []StackRow{{Name: "z1-vpc", Reason: "still needed by z1-control-plane"}},
		Secrets: []SecretRow{
			{Key: "z1/global-token", Status: SecretDeleted},
			{Key: "z1/license", Status: SecretKept},
		},
	})

	assert.Contains(t, out, "kmecs teardown: z1")
	assert.Contains(t, out, "incomplete")
	assert.Contains(t, out, "did not exist")
	assert.Contains(t, out, "still needed by z1-control-plane")
	assert.Contains(t, out, SecretKept)

	removed := out[strings.Index(out, "Removed stacks"):strings.Index(out, "Remaining stacks")]
	assert.Contains(t, removed, "z1-demo-app")
	assert.NotContains(t, removed, "z1-vpc")
}

func TestRenderTeardown_Clean(t *testing.T) {
	t.Parallel()

	out := RenderTeardown(Teardown{Zone: "z1", Deleted: []string{"z1-vpc"}})
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "(none)")
	assert.NotContains(t, out, "Secrets")
}

func TestRenderTeardown_Cancelled(t *testing.T) {
	t.Parallel()

	out := RenderTeardown(Teardown{Zone: "z1", Cancelled: true, Deleted: []string{"ignored"}})
	assert.Contains(t, out, "Cancelled")
	assert.NotContains(t, out, "ignored")
}

func TestTeardown_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, Teardown{Zone: "z1", Region: "us-east-1"}.Empty())
	assert.False(t, Teardown{Zone: "z1", Cancelled: true}.Empty())
	assert.False(t, Teardown{Zone: "z1", Absent: []string{"z1-vpc"}}.Empty())
	assert.False(t, Teardown{Zone: "z1", Secrets: []SecretRow{{Key: "z1/tls-key", Status: SecretKept}}}.Empty())
}

func TestRenderStatus(t *testing.T) {
	t.Parallel()

	s := Status{
		Zone:   "z1",
		Region: "eu-west-1",
		Stacks: []StackStatus{
			{Name: "z1-vpc", Role: "vpc", Exists: true, Status: "CREATE_COMPLETE"},
			{Name: "z1-control-plane", Role: "control-plane", Exists: true, Status: "UPDATE_ROLLBACK_COMPLETE"},
			{Name: "z1-ingress", Role: "ingress", Exists: true, Status: "UPDATE_IN_PROGRESS"},
			{Name: "z1-redis", Role: "redis"},
		},
		Secrets: []SecretStatus{
			{Key: "z1/global-token", Exists: true},
			{Key: "z1/license"},
		},
		ControlPlaneAddress: "cp.example",
	}
	assert.True(t, s.Deployed())

	out := RenderStatus(s)
	assert.Contains(t, out, "deployed")
	assert.Contains(t, out, "absent")
	assert.Contains(t, out, "UPDATE_ROLLBACK_COMPLETE")
	assert.Contains(t, out, warnMark)
	assert.Contains(t, out, "cp.example")

	empty := Status{Zone: "z2", Stacks: []StackStatus{{Name: "z2-vpc"}}}
	assert.False(t, empty.Deployed())
	assert.Contains(t, RenderStatus(empty), "not deployed")
}

func TestIcons(t *testing.T) {
	t.Parallel()

	icon, _ := stackIcon(StateDeleting)
	assert.Equal(t, warnMark, icon)
	icon, _ = stackIcon("SOMETHING")
	assert.Equal(t, pending, icon)
	icon, _ = secretIcon(SecretRemaining)
	assert.Equal(t, crossMark, icon)
	icon, _ = liveIcon(StackStatus{Exists: true, Status: "DELETE_FAILED"})
	assert.Equal(t, crossMark, icon)
}
