package subnettag

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Plan is the set of tag changes needed to move from the subnets that
// currently carry a key to the desired ones. All lists are sorted.
type Plan struct {
	ClusterTag string
	ToAdd      []string
	ToRemove   []string
	Unchanged  []string
}

// NewPlan computes ToRemove = existing - desired and ToAdd = desired - existing.
// Order and duplicates in either input do not matter.
func NewPlan(clusterTag string, desired, existing []string) *Plan {
	want := sets.New(desired...)
	have := sets.New(existing...)

	return &Plan{
		ClusterTag: clusterTag,
		ToAdd:      sets.List(want.Difference(have)),
		ToRemove:   sets.List(have.Difference(want)),
		Unchanged:  sets.List(want.Intersection(have)),
	}
}

func (p *Plan) HasChanges() bool {
	return len(p.ToAdd) > 0 || len(p.ToRemove) > 0
}

func (p *Plan) String() string {
	if !p.HasChanges() {
		return fmt.Sprintf("No changes for tag %s (%d subnet(s) already tagged)", p.ClusterTag, len(p.Unchanged))
	}
	return fmt.Sprintf("Tag %s: %d to add, %d to remove, %d unchanged",
		p.ClusterTag, len(p.ToAdd), len(p.ToRemove), len(p.Unchanged))
}
