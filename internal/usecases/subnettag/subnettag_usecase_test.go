package subnettag_test

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"subnet-tagger/internal/domain/subnettag"
	uc "subnet-tagger/internal/usecases/subnettag"
)

type call struct {
	op, subnetID, key, value string
}

// fakeRepo keeps tag state in memory and records every mutating call.
type fakeRepo struct {
	tags   map[string]map[string]string
	calls  []call
	failOn string
}

func newFakeRepo(key string, tagged ...string) *fakeRepo {
	r := &fakeRepo{tags: map[string]map[string]string{}}
	for _, id := range tagged {
		r.tags[id] = map[string]string{key: "1"}
	}
	return r
}

func (r *fakeRepo) ListTagged(ctx context.Context, key string) ([]string, error) {
	var ids []string
	for id, tags := range r.tags {
		if _, ok := tags[key]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeRepo) Tag(ctx context.Context, subnetID, key, value string) error {
	r.calls = append(r.calls, call{"tag", subnetID, key, value})
	if subnetID == r.failOn {
		return errors.New("InvalidSubnetID.NotFound")
	}
	if r.tags[subnetID] == nil {
		r.tags[subnetID] = map[string]string{}
	}
	r.tags[subnetID][key] = value
	return nil
}

func (r *fakeRepo) Untag(ctx context.Context, subnetID, key string) error {
	r.calls = append(r.calls, call{"untag", subnetID, key, ""})
	if subnetID == r.failOn {
		return errors.New("InvalidSubnetID.NotFound")
	}
	delete(r.tags[subnetID], key)
	return nil
}

func (r *fakeRepo) tagged(key string) []string {
	ids, _ := r.ListTagged(context.Background(), key)
	sort.Strings(ids)
	return ids
}

func (r *fakeRepo) callsOf(op string) []string {
	var ids []string
	for _, c := range r.calls {
		if c.op == op {
			ids = append(ids, c.subnetID)
		}
	}
	sort.Strings(ids)
	return ids
}

func props(tag string, subnets ...string) *subnettag.Properties {
	return &subnettag.Properties{ClusterTag: tag, Subnets: subnets}
}

func TestCreate(t *testing.T) {
	repo := newFakeRepo("ClusterA")
	u := uc.NewSubnetTagUseCase(repo)

	resp, err := u.Create(context.Background(), props("ClusterA", "subnet-1", "subnet-2"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.Message != "ClusterA" {
		t.Errorf("Message = %q, want ClusterA", resp.Message)
	}
	want := []call{{"tag", "subnet-1", "ClusterA", "1"}, {"tag", "subnet-2", "ClusterA", "1"}}
	if !reflect.DeepEqual(repo.calls, want) {
		t.Errorf("calls = %+v, want %+v", repo.calls, want)
	}
}

func TestCreate_Duplicates(t *testing.T) {
	repo := newFakeRepo("ClusterA")
	u := uc.NewSubnetTagUseCase(repo)

	if _, err := u.Create(context.Background(), props("ClusterA", "subnet-1", "subnet-1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(repo.calls) != 1 {
		t.Errorf("expected 1 call for duplicated subnet, got %d", len(repo.calls))
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name       string
		existing   []string
		desired    []string
		wantAdd    []string
		wantRemove []string
	}{
		{"swap", []string{"subnet-1", "subnet-3"}, []string{"subnet-1", "subnet-2"}, []string{"subnet-2"}, []string{"subnet-3"}},
		{"unchanged", []string{"subnet-1", "subnet-2"}, []string{"subnet-2", "subnet-1"}, nil, nil},
		{"from empty", nil, []string{"subnet-1"}, []string{"subnet-1"}, nil},
		{"to empty", []string{"subnet-1", "subnet-2"}, []string{}, nil, []string{"subnet-1", "subnet-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo("ClusterA", tt.existing...)
			u := uc.NewSubnetTagUseCase(repo)

			resp, err := u.Update(context.Background(), props("ClusterA", tt.desired...), nil)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if resp.Message != "ClusterA" {
				t.Errorf("Message = %q", resp.Message)
			}
			if got := repo.callsOf("tag"); !reflect.DeepEqual(got, tt.wantAdd) {
				t.Errorf("tag calls = %v, want %v", got, tt.wantAdd)
			}
			if got := repo.callsOf("untag"); !reflect.DeepEqual(got, tt.wantRemove) {
				t.Errorf("untag calls = %v, want %v", got, tt.wantRemove)
			}

			want := append([]string(nil), tt.desired...)
			sort.Strings(want)
			if got := repo.tagged("ClusterA"); len(got)+len(want) > 0 && !reflect.DeepEqual(got, want) {
				t.Errorf("tagged = %v, want %v", got, want)
			}
		})
	}
}

func TestUpdate_RemovesBeforeAdding(t *testing.T) {
	repo := newFakeRepo("ClusterA", "subnet-3")
	u := uc.NewSubnetTagUseCase(repo)

	if _, err := u.Update(context.Background(), props("ClusterA", "subnet-2"), nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := []call{{"untag", "subnet-3", "ClusterA", ""}, {"tag", "subnet-2", "ClusterA", "1"}}
	if !reflect.DeepEqual(repo.calls, want) {
		t.Errorf("calls = %+v, want %+v", repo.calls, want)
	}
}

func TestUpdate_ClusterTagChanged(t *testing.T) {
	repo := newFakeRepo("ClusterA", "subnet-1", "subnet-2")
	u := uc.NewSubnetTagUseCase(repo)

	old := props("ClusterA", "subnet-1", "subnet-2")
	if _, err := u.Update(context.Background(), props("ClusterB", "subnet-2", "subnet-3"), old); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := repo.tagged("ClusterA"); len(got) != 0 {
		t.Errorf("old tag still on %v", got)
	}
	if got, want := repo.tagged("ClusterB"), []string{"subnet-2", "subnet-3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("new tag on %v, want %v", got, want)
	}
}

func TestUpdate_SameClusterTagIgnoresOld(t *testing.T) {
	repo := newFakeRepo("ClusterA", "subnet-1")
	u := uc.NewSubnetTagUseCase(repo)

	if _, err := u.Update(context.Background(), props("ClusterA", "subnet-1"), props("ClusterA", "subnet-1")); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(repo.calls) != 0 {
		t.Errorf("expected no calls, got %+v", repo.calls)
	}
}

func TestDelete(t *testing.T) {
	repo := newFakeRepo("ClusterA", "subnet-1", "subnet-2", "subnet-9")
	u := uc.NewSubnetTagUseCase(repo)

	resp, err := u.Delete(context.Background(), props("ClusterA", "subnet-1", "subnet-2"))
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if resp.Message != "ClusterA" {
		t.Errorf("Message = %q", resp.Message)
	}
	if got, want := repo.callsOf("untag"), []string{"subnet-1", "subnet-2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("untag calls = %v, want %v", got, want)
	}
	// Only the declared subnets are touched.
	if got, want := repo.tagged("ClusterA"), []string{"subnet-9"}; !reflect.DeepEqual(got, want) {
		t.Errorf("tagged = %v, want %v", got, want)
	}
}

func TestPartialFailureStops(t *testing.T) {
	repo := newFakeRepo("ClusterA")
	repo.failOn = "subnet-2"
	u := uc.NewSubnetTagUseCase(repo)

	_, err := u.Create(context.Background(), props("ClusterA", "subnet-1", "subnet-2", "subnet-3"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.calls) != 2 {
		t.Errorf("expected calls to stop at the failing subnet, got %+v", repo.calls)
	}
	if got, want := repo.tagged("ClusterA"), []string{"subnet-1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("tagged = %v, want %v (no rollback)", got, want)
	}
}

func TestValidationFailure(t *testing.T) {
	u := uc.NewSubnetTagUseCase(newFakeRepo("ClusterA"))
	if _, err := u.Create(context.Background(), props("", "subnet-1")); !errors.Is(err, subnettag.ErrMissingClusterTag) {
		t.Errorf("Create() error = %v, want ErrMissingClusterTag", err)
	}
	if _, err := u.Delete(context.Background(), props("ClusterA", "")); !errors.Is(err, subnettag.ErrEmptySubnetID) {
		t.Errorf("Delete() error = %v, want ErrEmptySubnetID", err)
	}
}

func TestPlan(t *testing.T) {
	repo := newFakeRepo("ClusterA", "subnet-1", "subnet-3")
	u := uc.NewSubnetTagUseCase(repo)

	plan, err := u.Plan(context.Background(), props("ClusterA", "subnet-1", "subnet-2"))
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !reflect.DeepEqual(plan.ToAdd, []string{"subnet-2"}) || !reflect.DeepEqual(plan.ToRemove, []string{"subnet-3"}) {
		t.Errorf("plan = %+v", plan)
	}
	if len(repo.calls) != 0 {
		t.Errorf("Plan() must not mutate, got %+v", repo.calls)
	}
}
