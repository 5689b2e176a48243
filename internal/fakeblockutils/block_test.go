package fakeblockutils

import "testing"

func TestBuilderChainVerifies(t *testing.T) {
	bld := NewBuilder()
	genesis := bld.Genesis(0x1effffff, 1)
	if err := genesis.Verify(); err != nil {
		t.Fatalf("genesis.Verify: %+v", err)
	}

	prev := genesis
	for i := uint64(1); i <= 20; i++ {
		child, err := bld.Child(prev, i, int64(i*1000))
		if err != nil {
			t.Fatalf("Child(%d): %+v", i, err)
		}
		if err := child.Verify(); err != nil {
			t.Fatalf("child(%d).Verify: %+v", i, err)
		}
		if !child.IsImmediateSuccessorOf(prev) {
			t.Fatalf("child(%d) is not an immediate successor of its parent", i)
		}
		prev = child
	}
}

func TestTargetDepthIsDeterministic(t *testing.T) {
	u := New()
	bld := NewBuilder()
	genesis := bld.Genesis(0x1effffff, 1)

	d1 := u.TargetDepth(genesis.Hash())
	d2 := u.TargetDepth(genesis.Hash())
	if d1 != d2 {
		t.Fatalf("TargetDepth not deterministic: %d != %d", d1, d2)
	}
	if u.RealDifficulty(genesis.Hash()) != uint64(1)<<uint(d1) {
		t.Fatalf("RealDifficulty inconsistent with TargetDepth")
	}
}
