package handler_test

import (
	"context"
	"errors"
	"sort"

	"github.com/aws/aws-lambda-go/cfn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"subnet-tagger/internal/domain/subnettag"
	usecase "subnet-tagger/internal/usecases/subnettag"
	"subnet-tagger/pkg/handler"
)

type memoryRepo struct {
	tags    map[string]map[string]string
	tagged  []string
	removed []string
	err     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tags: map[string]map[string]string{}}
}

func (r *memoryRepo) seed(key string, ids ...string) {
	for _, id := range ids {
		r.tags[id] = map[string]string{key: subnettag.TagValue}
	}
}

func (r *memoryRepo) ListTagged(_ context.Context, key string) ([]string, error) {
	var ids []string
	for id, tags := range r.tags {
		if _, ok := tags[key]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memoryRepo) Tag(_ context.Context, subnetID, key, value string) error {
	if r.err != nil {
		return r.err
	}
	r.tagged = append(r.tagged, subnetID)
	if r.tags[subnetID] == nil {
		r.tags[subnetID] = map[string]string{}
	}
	r.tags[subnetID][key] = value
	return nil
}

func (r *memoryRepo) Untag(_ context.Context, subnetID, key string) error {
	if r.err != nil {
		return r.err
	}
	r.removed = append(r.removed, subnetID)
	delete(r.tags[subnetID], key)
	return nil
}

func event(requestType cfn.RequestType, tag string, subnets ...string) cfn.Event {
	list := make([]interface{}, 0, len(subnets))
	for _, s := range subnets {
		list = append(list, s)
	}
	return cfn.Event{
		RequestType:       requestType,
		RequestID:         "req-1",
		LogicalResourceID: "TagSubnets",
		ResourceProperties: map[string]interface{}{
			"ServiceToken": "arn:aws:lambda:us-east-1:123456789012:function:provider",
			"stackName":    "karpenter-dev",
			"subnets":      list,
			"clusterTag":   tag,
		},
	}
}

var _ = Describe("Handler", func() {
	var (
		repo *memoryRepo
		h    *handler.Handler
		ctx  context.Context
	)

	BeforeEach(func() {
		repo = newMemoryRepo()
		h = handler.New(usecase.NewSubnetTagUseCase(repo))
		ctx = context.Background()
	})

	Context("Create", func() {
		It("tags every declared subnet with value 1", func() {
			resp, err := h.Handle(ctx, event(cfn.RequestCreate, "ClusterA", "subnet-1", "subnet-2"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal(subnettag.Response{Message: "ClusterA"}))
			Expect(repo.tagged).To(Equal([]string{"subnet-1", "subnet-2"}))
			Expect(repo.tags["subnet-1"]).To(HaveKeyWithValue("ClusterA", "1"))
			Expect(repo.tags["subnet-2"]).To(HaveKeyWithValue("ClusterA", "1"))
		})
	})

	Context("Update", func() {
		It("only touches the symmetric difference", func() {
			repo.seed("ClusterA", "subnet-1", "subnet-3")

			resp, err := h.Handle(ctx, event(cfn.RequestUpdate, "ClusterA", "subnet-1", "subnet-2"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal("ClusterA"))
			Expect(repo.removed).To(Equal([]string{"subnet-3"}))
			Expect(repo.tagged).To(Equal([]string{"subnet-2"}))
		})

		It("issues no calls when nothing changed", func() {
			repo.seed("ClusterA", "subnet-1", "subnet-2")

			_, err := h.Handle(ctx, event(cfn.RequestUpdate, "ClusterA", "subnet-2", "subnet-1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.removed).To(BeEmpty())
			Expect(repo.tagged).To(BeEmpty())
		})

		It("moves the subnets to a renamed cluster tag", func() {
			repo.seed("ClusterA", "subnet-1")
			e := event(cfn.RequestUpdate, "ClusterB", "subnet-1")
			e.OldResourceProperties = event(cfn.RequestCreate, "ClusterA", "subnet-1").ResourceProperties

			_, err := h.Handle(ctx, e)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.tags["subnet-1"]).NotTo(HaveKey("ClusterA"))
			Expect(repo.tags["subnet-1"]).To(HaveKeyWithValue("ClusterB", "1"))
		})

		It("ignores malformed old properties", func() {
			repo.seed("ClusterA", "subnet-1")
			e := event(cfn.RequestUpdate, "ClusterA", "subnet-1")
			e.OldResourceProperties = map[string]interface{}{"subnets": "nope"}

			_, err := h.Handle(ctx, e)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.tagged).To(BeEmpty())
		})
	})

	Context("Delete", func() {
		It("removes the tag from each declared subnet once", func() {
			repo.seed("ClusterA", "subnet-1", "subnet-2")

			resp, err := h.Handle(ctx, event(cfn.RequestDelete, "ClusterA", "subnet-1", "subnet-2"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal("ClusterA"))
			Expect(repo.removed).To(ConsistOf("subnet-1", "subnet-2"))
		})
	})

	Context("invalid events", func() {
		It("rejects an unknown request type", func() {
			_, err := h.Handle(ctx, cfn.Event{RequestType: "Patch"})
			Expect(err).To(MatchError(ContainSubstring("Invalid request type: Patch")))
			Expect(errors.Is(err, subnettag.ErrInvalidRequestType)).To(BeTrue())
		})

		It("fails fast on missing properties", func() {
			_, err := h.Handle(ctx, cfn.Event{RequestType: cfn.RequestCreate})
			Expect(err).To(MatchError(subnettag.ErrMissingSubnets))
			Expect(repo.tagged).To(BeEmpty())
		})

		It("rejects empty subnet ids", func() {
			_, err := h.Handle(ctx, event(cfn.RequestCreate, "ClusterA", "subnet-1", ""))
			Expect(err).To(MatchError(subnettag.ErrEmptySubnetID))
			Expect(repo.tagged).To(BeEmpty())
		})
	})

	It("propagates repository errors", func() {
		repo.err = errors.New("UnauthorizedOperation")

		_, err := h.Handle(ctx, event(cfn.RequestCreate, "ClusterA", "subnet-1"))
		Expect(err).To(MatchError("UnauthorizedOperation"))
	})

	It("plans without mutating", func() {
		repo.seed("ClusterA", "subnet-1", "subnet-3")

		plan, err := h.Plan(ctx, event(cfn.RequestUpdate, "ClusterA", "subnet-1", "subnet-2"))
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.ToAdd).To(Equal([]string{"subnet-2"}))
		Expect(plan.ToRemove).To(Equal([]string{"subnet-3"}))
		Expect(repo.tagged).To(BeEmpty())
		Expect(repo.removed).To(BeEmpty())
	})
})
