package voxel

import "testing"

func TestAirPreregistered(t *testing.T) {
	reg := NewBuilder().Freeze()
	if reg.Len() != 1 {
		t.Fatalf("fresh registry len = %d, want 1 (air only)", reg.Len())
	}
	def := reg.Get(Air)
	if def.Solid || def.Transparency != FullyTransparent || def.LightEmission != 0 {
		t.Fatalf("air definition wrong: %+v", def)
	}
}

func TestRegisterSequentialAndLookup(t *testing.T) {
	b := NewBuilder()
	stone, err := b.Register(Definition{Name: "stone", Solid: true, Transparency: Opaque})
	if err != nil || stone != 1 {
		t.Fatalf("stone id = %d, err = %v, want 1", stone, err)
	}
	glass, err := b.Register(Definition{Name: "glass", Solid: true, Transparency: SemiTransparent})
	if err != nil || glass != 2 {
		t.Fatalf("glass id = %d, err = %v, want 2", glass, err)
	}

	reg := b.Freeze()
	if reg.Len() != 3 {
		t.Fatalf("len = %d, want 3", reg.Len())
	}
	if id, ok := reg.Lookup("glass"); !ok || id != glass {
		t.Fatalf("lookup glass = (%d,%v), want (%d,true)", id, ok, glass)
	}
	if _, ok := reg.Lookup("unknown"); ok {
		t.Fatal("lookup of unregistered name succeeded")
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Register(Definition{Name: "dirt"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := b.Register(Definition{Name: "dirt"}); err == nil {
		t.Fatal("duplicate name accepted")
	}
	if _, err := b.Register(Definition{Name: "air"}); err == nil {
		t.Fatal("duplicate air name accepted")
	}
}

func TestInvalidEmissionRejected(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Register(Definition{Name: "lava", LightEmission: 16}); err == nil {
		t.Fatal("emission 16 accepted, want rejection")
	}
}

func TestFrozenRegistryRejectsRegister(t *testing.T) {
	b := NewBuilder()
	b.Freeze()
	if _, err := b.Register(Definition{Name: "late"}); err != ErrFrozen {
		t.Fatalf("register after freeze = %v, want ErrFrozen", err)
	}
}

func TestGetOutOfRangePanics(t *testing.T) {
	reg := NewBuilder().Freeze()
	defer func() {
		if recover() == nil {
			t.Fatal("Get(99) did not panic")
		}
	}()
	reg.Get(99)
}
