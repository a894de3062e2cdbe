package store

import (
	"os"
	"path/filepath"
	"testing"

	"overdub/internal/logging"
)

func TestRepairDropsEntryWithoutPayload(t *testing.T) {
	m := openTestStore(t)
	p := sampleProject(t, "Ghost")
	if err := m.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.Remove(m.payloadPath(p.ID)); err != nil {
		t.Fatalf("remove payload: %v", err)
	}

	stats, err := m.CheckAndRepair()
	if err != nil {
		t.Fatalf("CheckAndRepair failed: %v", err)
	}
	if stats.OrphanedEntries != 1 {
		t.Errorf("OrphanedEntries = %d, want 1", stats.OrphanedEntries)
	}
	if len(m.List(true)) != 0 {
		t.Error("ghost entry survived repair")
	}
}

func TestRepairAdoptsOrphanedPayload(t *testing.T) {
	m := openTestStore(t)
	p := sampleProject(t, "Foundling")
	if err := m.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Blow away the index and reopen: the payload must be re-adopted.
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := os.Remove(filepath.Join(m.Dir(), indexFileName)); err != nil {
		t.Fatalf("remove index: %v", err)
	}

	m2, err := Open(m.Dir(), logging.NewNop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m2.Close()

	loaded, err := m2.Load(p.ID)
	if err != nil {
		t.Fatalf("Load after adoption failed: %v", err)
	}
	if loaded.Name != "Foundling" {
		t.Errorf("name = %q, want Foundling", loaded.Name)
	}
}

func TestRepairRemovesCorruptedIndexedPayload(t *testing.T) {
	m := openTestStore(t)
	p := sampleProject(t, "Rotted")
	if err := m.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Corrupt the payload in place. The entry still exists and the file
	// still stats fine, so only deserialization can catch it.
	if err := os.WriteFile(m.payloadPath(p.ID), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt payload: %v", err)
	}

	stats, err := m.CheckAndRepair()
	if err != nil {
		t.Fatalf("CheckAndRepair failed: %v", err)
	}
	if stats.CorruptedPayloads != 1 {
		t.Errorf("CorruptedPayloads = %d, want 1", stats.CorruptedPayloads)
	}
	if _, statErr := os.Stat(m.payloadPath(p.ID)); !os.IsNotExist(statErr) {
		t.Error("corrupted payload survived repair")
	}
	if len(m.List(true)) != 0 {
		t.Error("entry for corrupted payload survived repair")
	}
	if _, loadErr := m.Load(p.ID); loadErr == nil {
		t.Error("Load succeeded after corrupted payload was removed")
	}
}

func TestRepairSweepsTempFiles(t *testing.T) {
	m := openTestStore(t)
	tmp := filepath.Join(m.dataDir, "abc123.json.tmp")
	if err := os.WriteFile(tmp, []byte("partial"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	stats, err := m.CheckAndRepair()
	if err != nil {
		t.Fatalf("CheckAndRepair failed: %v", err)
	}
	if stats.TempFiles != 1 {
		t.Errorf("TempFiles = %d, want 1", stats.TempFiles)
	}
	if _, statErr := os.Stat(tmp); !os.IsNotExist(statErr) {
		t.Error("temp file survived sweep")
	}
}

func TestRepairRemovesUnreadablePayload(t *testing.T) {
	m := openTestStore(t)
	bogus := filepath.Join(m.dataDir, "feedfacecafe.json")
	if err := os.WriteFile(bogus, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write bogus payload: %v", err)
	}

	stats, err := m.CheckAndRepair()
	if err != nil {
		t.Fatalf("CheckAndRepair failed: %v", err)
	}
	if stats.CorruptedPayloads != 1 {
		t.Errorf("CorruptedPayloads = %d, want 1", stats.CorruptedPayloads)
	}
	if _, statErr := os.Stat(bogus); !os.IsNotExist(statErr) {
		t.Error("unreadable payload survived repair")
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	m := openTestStore(t)
	if err := m.Save(sampleProject(t, "Stable")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	first, err := m.CheckAndRepair()
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if first.Dirty() {
		t.Errorf("clean store reported dirty: %+v", first)
	}
	second, err := m.CheckAndRepair()
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if second.Dirty() {
		t.Errorf("second pass changed state: %+v", second)
	}
}
