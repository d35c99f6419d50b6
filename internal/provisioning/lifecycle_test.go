package provisioning_test

import (
	"context"
	"errors"
	"slices"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/confirm"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning/destroy"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	kmtesting "github.com/jeffrey-arndt/kong-mesh-ecs/internal/testing"
)

var _ = Describe("Zone lifecycle", func() {
	var (
		ctx     context.Context
		engine  *kmtesting.FakeEngine
		store   *kmtesting.MemoryStore
		tool    *kmtesting.FakeCertTool
		builder *kmtesting.DeployRequestBuilder
	)

	BeforeEach(func() {
		ctx = context.Background()
		engine = kmtesting.ZoneEngine("z1")
		store = kmtesting.NewMemoryStore()
		tool = &kmtesting.FakeCertTool{}
		builder = kmtesting.NewDeployRequestBuilder().WithTemplatesDir(kmtesting.WriteTemplates(GinkgoT()))
	})

	deps := func() provisioning.Deps {
		return provisioning.Deps{
			Engine:   engine,
			Store:    store,
			CertTool: tool,
			Logger:   kmtesting.DiscardLogger(),
		}
	}

	deploy := func(req config.DeployRequest) (report.Deploy, error) {
		return provisioning.Deploy(ctx, deps(), req)
	}

	teardown := func(req config.TeardownRequest) report.Teardown {
		summary, err := destroy.Teardown(ctx, deps(), req, confirm.NewGate(nil, nil, true))
		Expect(err).NotTo(HaveOccurred())
		return summary
	}

	Describe("stack plan", func() {
		It("orders the full zone and deletes it in reverse", func() {
			plan, err := provisioning.NewPlan(nil, "z1", false, false)
			Expect(err).NotTo(HaveOccurred())

			Expect(plan.Names()).To(Equal([]string{"z1-vpc", "z1-control-plane", "z1-ingress", "z1-redis", "z1-demo-app"}))

			var reversed []string
			for _, s := range plan.Teardown() {
				reversed = append(reversed, s.Name)
			}
			expected := plan.Names()
			slices.Reverse(expected)
			Expect(reversed).To(Equal(expected))
		})

		It("drops exactly the skipped roles", func() {
			plan, err := provisioning.NewPlan(nil, "z1", true, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Roles()).To(Equal([]stack.Role{stack.RoleVPC, stack.RoleControlPlane}))
		})

		It("rejects an empty zone name", func() {
			_, err := provisioning.NewPlan(nil, "", false, false)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a hosted zone", func() {
		It("deploys and tears down without leftovers", func() {
			req := builder.Build()

			By("deploying every stack")
			summary, err := deploy(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.ControlPlaneAddress).To(Equal(kmtesting.ControlPlaneAddress))
			Expect(engine.Names()).To(ConsistOf("z1-vpc", "z1-control-plane", "z1-ingress", "z1-redis", "z1-demo-app"))
			Expect(store.Keys()).To(ConsistOf("z1/global-token", "z1/tls-key", "z1/tls-cert"))

			By("reporting the live state")
			status, err := provisioning.Status(ctx, deps(), config.StatusRequest{Zone: "z1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Deployed()).To(BeTrue())
			Expect(status.ControlPlaneAddress).To(Equal(kmtesting.ControlPlaneAddress))

			By("tearing the zone down")
			down := teardown(kmtesting.TeardownFor(req, false))
			Expect(down.Deleted).To(Equal([]string{"z1-demo-app", "z1-redis", "z1-ingress", "z1-control-plane", "z1-vpc"}))
			Expect(down.Remaining).To(BeEmpty())
			Expect(engine.Names()).To(BeEmpty())
			Expect(store.Keys()).To(BeEmpty())

			By("tearing down again")
			again := teardown(kmtesting.TeardownFor(req, false))
			Expect(again.Deleted).To(BeEmpty())
			Expect(again.Absent).To(HaveLen(5))
		})

		It("keeps secrets that a later deploy can reuse", func() {
			req := builder.Build()
			_, err := deploy(req)
			Expect(err).NotTo(HaveOccurred())

			teardown(kmtesting.TeardownFor(req, true))
			Expect(engine.Names()).To(BeEmpty())
			Expect(store.Keys()).To(ConsistOf("z1/global-token", "z1/tls-key", "z1/tls-cert"))

			By("refusing to overwrite the kept secrets")
			_, err = deploy(req)
			Expect(secrets.IsConflict(err)).To(BeTrue())
			Expect(engine.Names()).To(BeEmpty())

			By("reusing them on request")
			calls := len(tool.Calls())
			summary, err := deploy(builder.WithReuseSecrets().Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(tool.Calls()).To(HaveLen(calls))
			for _, row := range summary.Secrets {
				Expect(row.Status).To(Equal(report.SecretReused))
			}
			Expect(engine.Names()).To(HaveLen(5))
		})

		It("tears down symmetrically when the demo was skipped", func() {
			req := builder.WithSkips(false, true).Build()
			_, err := deploy(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.Names()).To(ConsistOf("z1-vpc", "z1-control-plane", "z1-ingress"))

			down := teardown(kmtesting.TeardownFor(req, false))
			Expect(down.Deleted).To(Equal([]string{"z1-ingress", "z1-control-plane", "z1-vpc"}))
			Expect(engine.CallsFor(kmtesting.OpDestroy)).NotTo(ContainElement("z1-redis"))
			Expect(engine.Names()).To(BeEmpty())
		})
	})

	Context("when the control plane fails to apply", func() {
		BeforeEach(func() {
			engine.FailApply("z1-control-plane", "Resource handler returned message: invalid image")
		})

		It("keeps the network and applies no workloads", func() {
			summary, err := deploy(builder.Build())

			var failure *stack.ApplyFailure
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Stack).To(Equal("z1-control-plane"))
			Expect(failure.Reason).To(ContainSubstring("invalid image"))

			Expect(engine.CallsFor(kmtesting.OpApply)).To(Equal([]string{"z1-vpc", "z1-control-plane"}))
			Expect(engine.Exists("z1-vpc")).To(BeTrue())
			Expect(summary.Stacks[1].State).To(Equal(report.StateFailed))

			By("cleaning up what was created")
			down := teardown(kmtesting.TeardownFor(builder.Build(), false))
			Expect(down.Deleted).To(Equal([]string{"z1-control-plane", "z1-vpc"}))
			Expect(down.Absent).To(Equal([]string{"z1-demo-app", "z1-redis", "z1-ingress"}))
			Expect(engine.Names()).To(BeEmpty())
		})
	})

	Context("when the teardown is declined", func() {
		It("leaves every resource in place", func() {
			req := builder.Build()
			_, err := deploy(req)
			Expect(err).NotTo(HaveOccurred())
			before := len(engine.Calls())

			gate := confirm.NewGate(&confirm.LinePrompter{In: strings.NewReader("no\n")}, GinkgoWriter, false)
			summary, err := destroy.Teardown(ctx, deps(), kmtesting.TeardownFor(req, false), gate)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Cancelled).To(BeTrue())

			Expect(engine.Calls()).To(HaveLen(before))
			Expect(engine.Names()).To(HaveLen(5))
			Expect(store.Deletes()).To(BeEmpty())
			Expect(store.Keys()).To(HaveLen(3))
		})
	})
})
