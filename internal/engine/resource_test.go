package engine

import (
	"testing"

	"github.com/kmaclean/osprey/internal/burrow"
)

func TestCell_StoreValueGatesOnStructuralEquality(t *testing.T) {
	var c cell[[]burrow.Snapshot]

	if changed := c.storeValue([]burrow.Snapshot{{ID: "a"}}); !changed {
		t.Fatal("first store reported no change")
	}
	v1 := c.view()

	// Same content, different slice allocation: must not publish.
	if changed := c.storeValue([]burrow.Snapshot{{ID: "a"}}); changed {
		t.Fatal("identical payload reported as change")
	}
	v2 := c.view()
	if v2.Version != v1.Version {
		t.Fatalf("version moved: %d -> %d", v1.Version, v2.Version)
	}

	if changed := c.storeValue([]burrow.Snapshot{{ID: "a"}, {ID: "b"}}); !changed {
		t.Fatal("different payload reported no change")
	}
	if got := c.view(); got.Version == v2.Version {
		t.Fatal("version did not move on change")
	}
}

func TestCell_NilAndEmptyCollectionsCompareEqual(t *testing.T) {
	var c cell[[]burrow.Task]

	c.storeValue(nil)
	v1 := c.view()
	if changed := c.storeValue([]burrow.Task{}); changed {
		t.Fatal("nil -> empty reported as change")
	}
	if got := c.view(); got.Version != v1.Version {
		t.Fatal("version churned between nil and empty")
	}
}

func TestCell_StoreValueClearsError(t *testing.T) {
	var c cell[burrow.StatusResponse]

	c.storeError("server not running", burrow.StatusResponse{}, false)
	if got := c.view(); got.Err == "" {
		t.Fatal("error not recorded")
	}

	c.storeValue(burrow.StatusResponse{Running: true})
	if got := c.view(); got.Err != "" {
		t.Fatalf("error not cleared on success: %q", got.Err)
	}
}

func TestCell_SuppressedErrorKeepsErrorFieldButResetsValue(t *testing.T) {
	var c cell[burrow.StatusResponse]

	c.storeValue(burrow.StatusResponse{Running: true, PID: 9})
	v1 := c.view()

	c.storeError("server not running", burrow.StatusResponse{}, true)
	got := c.view()
	if got.Err != "" {
		t.Fatalf("suppressed error leaked into state: %q", got.Err)
	}
	if got.Value.Running || got.Value.PID != 0 {
		t.Fatalf("value not reset to fallback: %#v", got.Value)
	}
	if got.Version == v1.Version {
		t.Fatal("value reset must still publish")
	}

	// Repeating the suppressed failure publishes nothing new.
	c.storeError("server not running", burrow.StatusResponse{}, true)
	if again := c.view(); again.Version != got.Version {
		t.Fatal("repeated suppressed failure churned the version")
	}
}

func TestCell_ErrorOnlyRepublishesWhenMessageChanges(t *testing.T) {
	var c cell[[]burrow.Mount]

	c.storeError("corrupt index", nil, false)
	v1 := c.view()
	c.storeError("corrupt index", nil, false)
	if got := c.view(); got.Version != v1.Version {
		t.Fatal("identical error message republished")
	}
	c.storeError("bucket gone", nil, false)
	if got := c.view(); got.Version == v1.Version || got.Err != "bucket gone" {
		t.Fatalf("changed error message not published: %#v", got)
	}
}

func TestCell_MutationEnvelope(t *testing.T) {
	var c cell[[]burrow.Policy]

	c.storeError("old failure", nil, false)
	c.beginMutation()
	got := c.view()
	if !got.Loading || got.Err != "" {
		t.Fatalf("beginMutation state = %#v, want loading with cleared error", got)
	}

	c.failMutation("target is read-only")
	got = c.view()
	if got.Loading || got.Err != "target is read-only" {
		t.Fatalf("failMutation state = %#v", got)
	}

	c.beginMutation()
	c.endMutation()
	got = c.view()
	if got.Loading || got.Err != "" {
		t.Fatalf("endMutation state = %#v, want idle and clean", got)
	}
}
