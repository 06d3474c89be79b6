package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/pathcodec"
	"github.com/fabriqa/configurator-backend/internal/types"
)

func TestCreateNodeMaterializesPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	root := env.createNode(t, CreateNodeInput{
		ManufacturingTypeID: mt.ID,
		Name:                "Frame",
		NodeType:            types.NodeTypeCategory,
	})
	if root.Path != "frame" || root.Depth != 0 {
		t.Fatalf("root path/depth = %q/%d, want frame/0", root.Path, root.Depth)
	}
	if !root.IsRoot() {
		t.Fatalf("root node reports a parent")
	}
	// IDs and timestamps are assigned application-side; no column
	// defaults involved, so they must be set on the returned struct.
	if root.ID == uuid.Nil {
		t.Fatalf("node id not assigned")
	}
	if root.CreatedAt.IsZero() || root.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not assigned")
	}

	child := env.createNode(t, CreateNodeInput{
		ManufacturingTypeID: mt.ID,
		ParentID:            &root.ID,
		Name:                "Material",
	})
	if child.Path != "frame/material" || child.Depth != 1 {
		t.Fatalf("child path/depth = %q/%d, want frame/material/1", child.Path, child.Depth)
	}

	grand := env.createNode(t, CreateNodeInput{
		ManufacturingTypeID: mt.ID,
		ParentID:            &child.ID,
		Name:                "Oak Wood",
		NodeType:            types.NodeTypeOption,
	})
	if grand.Path != "frame/material/oak_wood" || grand.Depth != 2 {
		t.Fatalf("grandchild path/depth = %q/%d", grand.Path, grand.Depth)
	}
	if grand.Segment != "oak_wood" {
		t.Fatalf("segment = %q, want oak_wood", grand.Segment)
	}

	// Defaults fill in when the caller leaves classification empty.
	if child.NodeType != types.NodeTypeAttribute || child.DataType != types.DataTypeString {
		t.Fatalf("defaults not applied: node_type=%q data_type=%q", child.NodeType, child.DataType)
	}

	ancestors, err := env.hierarchy.GetAncestors(ctx, grand.ID)
	if err != nil {
		t.Fatalf("GetAncestors: %v", err)
	}
	if len(ancestors) != 2 || ancestors[0].ID != root.ID || ancestors[1].ID != child.ID {
		t.Fatalf("ancestors wrong, got %d entries", len(ancestors))
	}
}

func TestCreateNodeRejectsDuplicateSibling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Door", "100", "20")

	root := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Handle"})

	// Different display names that encode to the same segment collide.
	env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &root.ID, Name: "Steel Grip"})
	_, err := env.hierarchy.CreateNode(ctx, CreateNodeInput{
		ManufacturingTypeID: mt.ID,
		ParentID:            &root.ID,
		Name:                "Steel-Grip",
	})
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("want DuplicateNameError, got %v", err)
	}
	if dup.Segment != "steel_grip" {
		t.Fatalf("duplicate segment = %q", dup.Segment)
	}

	// The same segment under a different parent is fine.
	other := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Lock"})
	env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &other.ID, Name: "Steel Grip"})
}

func TestCreateNodeParentFromOtherType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mtA := env.createType(t, "Window", "200", "10")
	mtB := env.createType(t, "Door", "100", "20")

	foreign := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mtB.ID, Name: "Frame"})
	_, err := env.hierarchy.CreateNode(ctx, CreateNodeInput{
		ManufacturingTypeID: mtA.ID,
		ParentID:            &foreign.ID,
		Name:                "Glass",
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want NotFoundError for cross-type parent, got %v", err)
	}
}

func TestCreateNodeValidatesFormulas(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	_, err := env.hierarchy.CreateNode(ctx, CreateNodeInput{
		ManufacturingTypeID: mt.ID,
		Name:                "Broken",
		NodeType:            types.NodeTypeOption,
		PriceImpactType:     types.ImpactTypeFormula,
		PriceFormula:        "width *",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError for broken formula, got %v", err)
	}
	if ve.Field != "price_formula" {
		t.Fatalf("validation field = %q", ve.Field)
	}
}

func TestRenameNodeRewritesSubtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	root := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Frame"})
	child := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &root.ID, Name: "Material"})
	grand := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &child.ID, Name: "Oak"})

	renamed, err := env.hierarchy.RenameNode(ctx, root.ID, "Outer Frame")
	if err != nil {
		t.Fatalf("RenameNode: %v", err)
	}
	if renamed.Path != "outer_frame" || renamed.Name != "Outer Frame" {
		t.Fatalf("renamed path = %q", renamed.Path)
	}

	for id, want := range map[uuid.UUID]string{
		child.ID: "outer_frame/material",
		grand.ID: "outer_frame/material/oak",
	} {
		got, err := env.hierarchy.GetNode(ctx, id)
		if err != nil {
			t.Fatalf("GetNode: %v", err)
		}
		if got.Path != want {
			t.Fatalf("descendant path = %q, want %q", got.Path, want)
		}
		if got.Depth != pathcodec.Depth(want) {
			t.Fatalf("descendant depth = %d for %q", got.Depth, got.Path)
		}
	}
}

func TestRenameNodeSameSegmentKeepsPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	node := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Oak Wood"})
	renamed, err := env.hierarchy.RenameNode(ctx, node.ID, "Oak wood")
	if err != nil {
		t.Fatalf("RenameNode: %v", err)
	}
	if renamed.Path != node.Path || renamed.Segment != node.Segment {
		t.Fatalf("path changed on cosmetic rename: %q -> %q", node.Path, renamed.Path)
	}
	if renamed.Name != "Oak wood" {
		t.Fatalf("name not updated: %q", renamed.Name)
	}
}

func TestMoveNodeRewritesDescendants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	frame := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Frame"})
	material := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &frame.ID, Name: "Material"})
	oak := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &material.ID, Name: "Oak"})
	pine := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &material.ID, Name: "Pine"})
	glazing := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Glazing"})

	moved, err := env.hierarchy.MoveNode(ctx, material.ID, &glazing.ID)
	if err != nil {
		t.Fatalf("MoveNode: %v", err)
	}
	if moved.Path != "glazing/material" {
		t.Fatalf("moved path = %q", moved.Path)
	}
	if moved.ParentID == nil || *moved.ParentID != glazing.ID {
		t.Fatalf("moved parent not updated")
	}

	for id, want := range map[uuid.UUID]string{
		oak.ID:  "glazing/material/oak",
		pine.ID: "glazing/material/pine",
	} {
		got, err := env.hierarchy.GetNode(ctx, id)
		if err != nil {
			t.Fatalf("GetNode: %v", err)
		}
		if got.Path != want {
			t.Fatalf("descendant path = %q, want %q", got.Path, want)
		}
	}

	// The old subtree location is empty now.
	left, err := env.hierarchy.GetDescendants(ctx, frame.ID)
	if err != nil {
		t.Fatalf("GetDescendants: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("old parent still has %d descendants", len(left))
	}
}

func TestMoveNodeToRoot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	frame := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Frame"})
	material := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &frame.ID, Name: "Material"})

	moved, err := env.hierarchy.MoveNode(ctx, material.ID, nil)
	if err != nil {
		t.Fatalf("MoveNode to root: %v", err)
	}
	if moved.Path != "material" || moved.Depth != 0 || moved.ParentID != nil {
		t.Fatalf("root move wrong: path=%q depth=%d", moved.Path, moved.Depth)
	}
}

func TestMoveNodeRejectsCycles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	a := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "A"})
	b := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &a.ID, Name: "B"})
	c := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &b.ID, Name: "C"})

	cases := []struct {
		name      string
		newParent uuid.UUID
	}{
		{"own descendant", c.ID},
		{"own child", b.ID},
		{"itself", a.ID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.hierarchy.MoveNode(ctx, a.ID, &tc.newParent)
			var cyc *CircularReferenceError
			if !errors.As(err, &cyc) {
				t.Fatalf("want CircularReferenceError, got %v", err)
			}
		})
	}

	// A rejected move leaves every path untouched.
	for id, want := range map[uuid.UUID]string{a.ID: "a", b.ID: "a/b", c.ID: "a/b/c"} {
		got, err := env.hierarchy.GetNode(ctx, id)
		if err != nil {
			t.Fatalf("GetNode: %v", err)
		}
		if got.Path != want {
			t.Fatalf("path changed after rejected move: %q, want %q", got.Path, want)
		}
	}
}

func TestMoveNodeRejectsSiblingCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	frame := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Frame"})
	env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &frame.ID, Name: "Material"})
	loose := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Material"})

	_, err := env.hierarchy.MoveNode(ctx, loose.ID, &frame.ID)
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("want DuplicateNameError, got %v", err)
	}
}

func TestDeleteNode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	frame := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Frame"})
	material := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &frame.ID, Name: "Material"})
	env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &material.ID, Name: "Oak"})
	glazing := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Glazing"})

	// Non-leaf without cascade is refused and nothing is deleted.
	err := env.hierarchy.DeleteNode(ctx, frame.ID, false)
	var hc *HasChildrenError
	if !errors.As(err, &hc) {
		t.Fatalf("want HasChildrenError, got %v", err)
	}
	if _, err := env.hierarchy.GetNode(ctx, material.ID); err != nil {
		t.Fatalf("child vanished after refused delete: %v", err)
	}

	// Cascade removes the whole subtree and nothing else.
	if err := env.hierarchy.DeleteNode(ctx, frame.ID, true); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
	all, err := env.nodeRepo.GetByManufacturingType(ctx, nil, mt.ID)
	if err != nil {
		t.Fatalf("list nodes: %v", err)
	}
	if len(all) != 1 || all[0].ID != glazing.ID {
		t.Fatalf("unexpected survivors: %d nodes", len(all))
	}

	// Leaf delete needs no cascade.
	if err := env.hierarchy.DeleteNode(ctx, glazing.ID, false); err != nil {
		t.Fatalf("leaf delete: %v", err)
	}
}

func TestGetTreeShapeAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	frame := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Frame", SortOrder: 1})
	env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Glazing", SortOrder: 0})
	second := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &frame.ID, Name: "Pine", SortOrder: 2, NodeType: types.NodeTypeOption})
	first := env.createNode(t, CreateNodeInput{ManufacturingTypeID: mt.ID, ParentID: &frame.ID, Name: "Oak", SortOrder: 1, NodeType: types.NodeTypeOption})

	tree, err := env.hierarchy.GetTree(ctx, mt.ID, nil)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("root count = %d", len(tree))
	}
	if tree[0].Name != "Glazing" || tree[1].Name != "Frame" {
		t.Fatalf("roots out of order: %s, %s", tree[0].Name, tree[1].Name)
	}
	children := tree[1].Children
	if len(children) != 2 || children[0].ID != first.ID || children[1].ID != second.ID {
		t.Fatalf("children out of order")
	}
	if children[0].PriceImpactValue == nil {
		t.Fatalf("option node missing price impact value")
	}
	if tree[1].PriceImpactValue != nil {
		t.Fatalf("non-option node carries price impact value")
	}

	// Subtree read returns only the requested branch.
	sub, err := env.hierarchy.GetTree(ctx, mt.ID, &frame.ID)
	if err != nil {
		t.Fatalf("GetTree subtree: %v", err)
	}
	if len(sub) != 1 || sub[0].ID != frame.ID || len(sub[0].Children) != 2 {
		t.Fatalf("subtree shape wrong")
	}

	missing := uuid.New()
	if _, err := env.hierarchy.GetTree(ctx, mt.ID, &missing); err == nil {
		t.Fatalf("want error for unknown subtree root")
	}
}

// fakeTreeCache is an in-memory stand-in for the redis tree cache.
type fakeTreeCache struct {
	entries map[uuid.UUID][]byte
	hits    int
}

func newFakeTreeCache() *fakeTreeCache {
	return &fakeTreeCache{entries: map[uuid.UUID][]byte{}}
}

func (f *fakeTreeCache) GetTree(_ context.Context, typeID uuid.UUID) ([]byte, bool) {
	payload, ok := f.entries[typeID]
	if ok {
		f.hits++
	}
	return payload, ok
}

func (f *fakeTreeCache) SetTree(_ context.Context, typeID uuid.UUID, payload []byte) {
	f.entries[typeID] = payload
}

func (f *fakeTreeCache) Invalidate(_ context.Context, typeID uuid.UUID) {
	delete(f.entries, typeID)
}

func TestGetTreeUsesAndInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	cache := newFakeTreeCache()
	hier := NewHierarchyService(env.db, logger.NewNop(), env.nodeRepo, env.typeRepo, cache)

	node, err := hier.CreateNode(ctx, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: "Frame"})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	if _, err := hier.GetTree(ctx, mt.ID, nil); err != nil {
		t.Fatalf("GetTree fill: %v", err)
	}
	if len(cache.entries) != 1 {
		t.Fatalf("cache not filled")
	}
	if _, err := hier.GetTree(ctx, mt.ID, nil); err != nil {
		t.Fatalf("GetTree cached: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("cache hits = %d, want 1", cache.hits)
	}

	// Any structural mutation drops the cached tree.
	if _, err := hier.RenameNode(ctx, node.ID, "Outer Frame"); err != nil {
		t.Fatalf("RenameNode: %v", err)
	}
	if len(cache.entries) != 0 {
		t.Fatalf("cache not invalidated after mutation")
	}

	tree, err := hier.GetTree(ctx, mt.ID, nil)
	if err != nil {
		t.Fatalf("GetTree rebuild: %v", err)
	}
	if len(tree) != 1 || tree[0].Name != "Outer Frame" {
		t.Fatalf("rebuilt tree stale")
	}
}

func TestEncodeRejectsUnusableNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mt := env.createType(t, "Window", "200", "10")

	for _, name := range []string{"", "   ", "!!!"} {
		_, err := env.hierarchy.CreateNode(ctx, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: name})
		var inv *pathcodec.InvalidSegmentError
		if !errors.As(err, &inv) {
			t.Fatalf("name %q: want InvalidSegmentError, got %v", name, err)
		}
	}

	// Very long names truncate instead of failing.
	long := strings.Repeat("a", 3*pathcodec.MaxSegmentLen)
	node, err := env.hierarchy.CreateNode(ctx, CreateNodeInput{ManufacturingTypeID: mt.ID, Name: long})
	if err != nil {
		t.Fatalf("long name: %v", err)
	}
	if len(node.Segment) != pathcodec.MaxSegmentLen {
		t.Fatalf("segment length = %d", len(node.Segment))
	}
}
