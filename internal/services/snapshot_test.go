package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fabriqa/configurator-backend/internal/types"
)

func TestCreateSnapshotFreezesCalculation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newCalcFixture(t, env)
	f.selectAll(t, env)

	validUntil := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	snap, err := env.snapshot.CreateSnapshot(ctx, f.cfg.ID, types.SnapshotKindQuote, &validUntil)
	if err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}
	if !snap.TotalPrice.Equal(mustDec(t, "325")) || !snap.TotalWeight.Equal(mustDec(t, "13")) {
		t.Fatalf("snapshot totals = %s / %s", snap.TotalPrice, snap.TotalWeight)
	}
	if snap.Kind != types.SnapshotKindQuote {
		t.Fatalf("kind = %q", snap.Kind)
	}
	if snap.ValidUntil == nil || !snap.ValidUntil.Equal(validUntil) {
		t.Fatalf("valid_until not kept")
	}

	var breakdown []SelectionImpact
	if err := json.Unmarshal(snap.Breakdown, &breakdown); err != nil {
		t.Fatalf("unmarshal breakdown: %v", err)
	}
	if len(breakdown) != 4 {
		t.Fatalf("breakdown lines = %d", len(breakdown))
	}
	var technical map[string]decimal.Decimal
	if err := json.Unmarshal(snap.TechnicalData, &technical); err != nil {
		t.Fatalf("unmarshal technical: %v", err)
	}
	if !technical["max_load"].Equal(mustDec(t, "20")) {
		t.Fatalf("snapshot max_load = %s", technical["max_load"])
	}
}

func TestSnapshotSurvivesLaterEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newCalcFixture(t, env)
	f.selectAll(t, env)

	snap, err := env.snapshot.CreateSnapshot(ctx, f.cfg.ID, "", nil)
	if err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}
	if snap.Kind != types.SnapshotKindQuote {
		t.Fatalf("empty kind did not default to quote: %q", snap.Kind)
	}

	// Reprice the catalog and recalculate the live configuration.
	f.premium.PriceImpactValue = mustDec(t, "500")
	if _, err := env.nodeRepo.Save(ctx, nil, f.premium); err != nil {
		t.Fatalf("save node: %v", err)
	}
	result, err := env.calculation.Calculate(ctx, f.cfg.ID)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.TotalPrice.Equal(mustDec(t, "325")) {
		t.Fatalf("live total did not move after catalog edit")
	}

	// The stored snapshot still shows the old frozen numbers.
	frozen, err := env.snapshot.GetSnapshot(ctx, snap.ID)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if !frozen.TotalPrice.Equal(mustDec(t, "325")) {
		t.Fatalf("snapshot total drifted to %s", frozen.TotalPrice)
	}
}

func TestListSnapshotsOrdered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newCalcFixture(t, env)
	f.selectAll(t, env)

	first, err := env.snapshot.CreateSnapshot(ctx, f.cfg.ID, types.SnapshotKindQuote, nil)
	if err != nil {
		t.Fatalf("first CreateSnapshot: %v", err)
	}
	second, err := env.snapshot.CreateSnapshot(ctx, f.cfg.ID, types.SnapshotKindOrder, nil)
	if err != nil {
		t.Fatalf("second CreateSnapshot: %v", err)
	}

	snaps, err := env.snapshot.ListSnapshots(ctx, f.cfg.ID)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("snapshot count = %d", len(snaps))
	}
	got := map[string]bool{}
	for _, s := range snaps {
		got[s.Kind] = true
	}
	if !got[first.Kind] || !got[second.Kind] {
		t.Fatalf("kinds missing from listing")
	}
}

func TestBuildSnapshotIsPure(t *testing.T) {
	cfg := &types.Configuration{
		BasePrice:  decimal.NewFromInt(200),
		BaseWeight: decimal.NewFromInt(10),
	}
	result := &CalculationResult{
		TotalPrice:    decimal.NewFromInt(325),
		TotalWeight:   decimal.NewFromInt(13),
		TechnicalData: map[string]decimal.Decimal{"max_load": decimal.NewFromInt(20)},
		Breakdown:     []SelectionImpact{},
	}

	snap, err := BuildSnapshot(cfg, result, "", nil)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if !snap.BasePrice.Equal(cfg.BasePrice) || !snap.TotalPrice.Equal(result.TotalPrice) {
		t.Fatalf("snapshot values not copied")
	}
	if snap.Kind != types.SnapshotKindQuote {
		t.Fatalf("kind default = %q", snap.Kind)
	}
}
