package cache

import "testing"

func TestBlockStoreInstallAndProbe(t *testing.T) {
	bs := newBlockStore(4, 2, 16)

	blk := bs.victim(0x100)
	if blk == nil {
		t.Fatal("expected a victim on an empty store")
	}

	payload := make([]byte, 16)
	storeBytes(payload, 0, 0xCAFEBABE, 4)
	evicted, evictedDirty, _ := bs.install(blk, 0x100, payload, Exclusive)
	if evicted || evictedDirty {
		t.Fatalf("first install into an empty set should not evict anything")
	}

	probed := bs.probe(0x100)
	if probed == nil {
		t.Fatal("expected a hit after install")
	}
	if got := extractWord(bs.payload(probed), 0); got != 0xCAFEBABE {
		t.Fatalf("got %#x, want %#x", got, 0xCAFEBABE)
	}
}

func TestBlockStoreMarkDirtyTransitionsToModified(t *testing.T) {
	bs := newBlockStore(4, 2, 16)
	blk := bs.victim(0x40)
	bs.install(blk, 0x40, make([]byte, 16), Exclusive)

	bs.markDirty(blk)
	if bs.state[bs.index(blk)] != Modified {
		t.Fatalf("expected Modified after markDirty")
	}
	if !blk.IsDirty {
		t.Fatalf("expected directory block to be marked dirty")
	}
}

func TestBlockStoreInvalidateClearsResidency(t *testing.T) {
	bs := newBlockStore(4, 2, 16)
	blk := bs.victim(0x80)
	bs.install(blk, 0x80, make([]byte, 16), Exclusive)

	bs.invalidate(0x80)
	if bs.probe(0x80) != nil {
		t.Fatalf("expected probe to miss after invalidate")
	}
}

func TestExtractStoreBytesOutOfBoundsIsNoOp(t *testing.T) {
	payload := make([]byte, 4)
	storeBytes(payload, 4, 0x1, 4) // offset+4 > len(payload): dropped
	if got := extractWord(payload, 4); got != 0 {
		t.Fatalf("expected zero for an out-of-range extract, got %#x", got)
	}
}
