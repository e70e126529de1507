//go:build integration

package jaspi_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"jaspiharness/internal/lifecycle"
	"jaspiharness/internal/readiness"
	"jaspiharness/internal/testing/mock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type noProcesses struct{}

func (noProcesses) FindByCommandSubstring(context.Context, string) ([]lifecycle.Process, error) {
	return nil, nil
}

var _ = Describe("Server lifecycle", Ordered, func() {
	var (
		ctrl   *lifecycle.Controller
		status *mock.StatusServer
		dir    string
	)

	BeforeAll(func() {
		if runtime.GOOS == "windows" {
			Skip("control scripts require a POSIX shell")
		}

		dir = GinkgoT().TempDir()
		archive, err := mock.WriteDistribution(dir, mock.DefaultDistribution("apache-tomcat-6.0.37"))
		Expect(err).NotTo(HaveOccurred())
		Expect(os.WriteFile(filepath.Join(dir, "jaspi.war"), []byte("war"), 0644)).To(Succeed())

		status = mock.NewStatusServer("/jaspi/status", 2, 404)
		DeferCleanup(status.Close)

		ctrl, err = lifecycle.NewController(lifecycle.Descriptor{
			ResourceDir: dir,
			ArchivePath: filepath.Base(archive),
			DeployDir:   "deploy",
			Hostname:    "127.0.0.1",
			AppContext:  "jaspi",
		},
			lifecycle.WithProcessFinder(noProcesses{}),
			lifecycle.WithReadiness(100*time.Millisecond, 10*time.Second),
			lifecycle.WithSettleDelay(50*time.Millisecond),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("cleans and deploys the distribution", func() {
		Expect(ctrl.CleanDeployDir()).To(Succeed())
		Expect(ctrl.Deploy(context.Background(), filepath.Join(dir, "jaspi.war"))).To(Succeed())

		Expect(filepath.Join(ctrl.WebappsDir(), "jaspi.war")).To(BeAnExistingFile())
		Expect(filepath.Join(ctrl.BinDir(), "catalina.sh")).To(BeAnExistingFile())
	})

	It("starts the server and waits for the status endpoint", func() {
		Expect(ctrl.Start(context.Background(), status.Port())).To(Succeed())
		Expect(status.RequestCount()).To(Equal(3))
	})

	It("stops the server", func() {
		Expect(ctrl.Stop(context.Background())).To(Succeed())

		invocations, err := os.ReadFile(filepath.Join(ctrl.DistributionDir(), "invocations.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(invocations)).To(Equal("start\nstop\n"))
	})

	It("reports a failed shutdown", func() {
		Expect(os.WriteFile(filepath.Join(ctrl.DistributionDir(), "stop.exit"), []byte("2"), 0644)).To(Succeed())

		err := ctrl.Stop(context.Background())
		var shutdownErr *lifecycle.ShutdownError
		Expect(errors.As(err, &shutdownErr)).To(BeTrue())
		Expect(shutdownErr.ExitCode).To(Equal(2))
	})

	It("gives up when the server never becomes ready", func() {
		never := mock.NewStatusServer("/jaspi/status", 1<<30, 503)
		defer never.Close()

		quick, err := lifecycle.NewController(ctrl.Descriptor(),
			lifecycle.WithProcessFinder(noProcesses{}),
			lifecycle.WithReadiness(50*time.Millisecond, 300*time.Millisecond),
		)
		Expect(err).NotTo(HaveOccurred())

		err = quick.Start(context.Background(), never.Port())
		Expect(errors.Is(err, readiness.ErrNotReady)).To(BeTrue())
	})
})
