//go:build integration

package jaspi_test

import (
	"context"
	"net/http"

	"jaspiharness/internal/jaspi"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	modulePackage = "org.forgerock.jaspi.test.modules."
	protected     = "/resources/protected"
)

func authModule(name, validateRequest string) jaspi.ModuleParameters {
	return jaspi.ModuleParameters{
		Name:            name,
		ClassName:       modulePackage + name,
		ValidateRequest: validateRequest,
	}
}

var _ = Describe("JASPI runtime", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		_, err := harness.ReadAndClearAuditRecords(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("without any modules configured", func() {
		It("lets the request through and audits nothing", func() {
			outcome, err := harness.Request(ctx, protected, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.StatusCode).To(Equal(http.StatusOK))
			Expect(outcome.ResourceCalled).To(BeTrue())
			Expect(outcome.AuditRecords).To(BeEmpty())
		})
	})

	DescribeTable("a single auth module",
		func(status string, expectedCode int, resourceCalled bool, auditOutcome string) {
			outcome, err := harness.Request(ctx, protected, nil, []jaspi.ModuleParameters{authModule("AuthModuleOne", status)})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.StatusCode).To(Equal(expectedCode))
			Expect(outcome.ResourceCalled).To(Equal(resourceCalled))
			Expect(outcome.AuditRecords).To(HaveLen(1))
			Expect(outcome.AuditRecords[0].Outcome()).To(Equal(auditOutcome))
		},
		Entry("returning SUCCESS reaches the resource", "SUCCESS", http.StatusOK, true, "SUCCESSFUL"),
		Entry("returning SEND_SUCCESS answers without the resource", "SEND_SUCCESS", http.StatusOK, false, "SUCCESSFUL"),
		Entry("returning SEND_FAILURE rejects the request", "SEND_FAILURE", http.StatusUnauthorized, false, "FAILED"),
	)

	Context("with a session module and an auth module", func() {
		It("falls through to the auth module when the session module defers", func() {
			session := authModule("SessionAuthModule", "")
			outcome, err := harness.Request(ctx, protected, &session, []jaspi.ModuleParameters{authModule("AuthModuleOne", "SUCCESS")})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.StatusCode).To(Equal(http.StatusOK))
			Expect(outcome.ResourceCalled).To(BeTrue())
		})

		It("stops at the session module when it succeeds", func() {
			session := authModule("SessionAuthModule", "SUCCESS")
			outcome, err := harness.Request(ctx, protected, &session, []jaspi.ModuleParameters{authModule("AuthModuleOne", "SEND_FAILURE")})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.StatusCode).To(Equal(http.StatusOK))
			Expect(outcome.AuditRecords).To(HaveLen(1))
		})
	})

	It("rejects a configuration without serverAuthContext", func() {
		_, err := harness.ConfigureRaw(ctx, []byte(`{"authModules":[]}`))
		Expect(err).To(HaveOccurred())
	})
})
