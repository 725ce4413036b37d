package space

// Transition converts a tagged position from space In to space Out. The type
// parameters ARE the compile-time space tag: a Transition[UniverseSpace,
// SectorSpace] can only ever be composed with something that starts where it
// ends, because Then's middle type parameter must unify — the Go compiler
// rejects a type-mismatched composition at the call site, before Apply is
// ever invoked. This is the "rejected at construction time, not apply time"
// requirement from spec.md §4.A.
type Transition[In, Out any] struct {
	name    string
	apply   func(In) Out
	inverse func(Out) In // nil when the transition is not invertible
}

// New builds a Transition from its forward function and an optional inverse.
// Pass a nil inverse when the conversion is lossy or one-directional.
func New[In, Out any](name string, apply func(In) Out, inverse func(Out) In) Transition[In, Out] {
	return Transition[In, Out]{name: name, apply: apply, inverse: inverse}
}

// Name returns a short human-readable label, useful for logging which
// conversion chain produced a position.
func (t Transition[In, Out]) Name() string { return t.name }

// Apply converts a position from In to Out.
func (t Transition[In, Out]) Apply(p In) Out { return t.apply(p) }

// Invertible reports whether Inverse will succeed.
func (t Transition[In, Out]) Invertible() bool { return t.inverse != nil }

// Inverse returns the reverse transition, if one was supplied at construction.
func (t Transition[In, Out]) Inverse() (Transition[Out, In], bool) {
	if t.inverse == nil {
		return Transition[Out, In]{}, false
	}
	fwd := t.inverse
	back := t.apply
	return Transition[Out, In]{name: "inverse(" + t.name + ")", apply: fwd, inverse: back}, true
}

// Identity is the no-op transition for space T. Then(Identity(n), x) and
// Then(x, Identity(n)) apply identically to x for every x.
func Identity[T any](name string) Transition[T, T] {
	return Transition[T, T]{
		name:    name,
		apply:   func(t T) T { return t },
		inverse: func(t T) T { return t },
	}
}

// Then composes first (In->Mid) with second (Mid->Out) into a single
// In->Out transition. Composition is associative: Then(Then(a, b), c) and
// Then(a, Then(b, c)) apply identically for every position, which is property
// P12. When both legs are invertible, the composed inverse applies the
// component inverses in reverse order, per spec.md §4.A.
func Then[In, Mid, Out any](first Transition[In, Mid], second Transition[Mid, Out]) Transition[In, Out] {
	composed := Transition[In, Out]{
		name:  first.name + " then " + second.name,
		apply: func(p In) Out { return second.apply(first.apply(p)) },
	}
	if first.inverse != nil && second.inverse != nil {
		composed.inverse = func(o Out) In { return first.inverse(second.inverse(o)) }
	}
	return composed
}

/* -------------------------------------------------------------------------
   Concrete transitions for the Universe -> Sector -> Planet -> Chunk ->
   Local chain described in spec.md §4.A.
   ------------------------------------------------------------------------- */

// UniverseToSector is the stateless, always-exact bitwise decomposition.
func UniverseToSector() Transition[UniverseSpace, SectorSpace] {
	return New("universe->sector", UniverseToSectorCoord, SectorCoordToUniverse)
}

// SectorToPlanet subtracts the planet's sector-space origin (widened to 128
// bits) and truncates to 64-bit planet-relative mm. Per spec.md §4.A this
// fails silently (truncates) if the delta exceeds the 64-bit range; callers
// must not invoke it outside the planet's influence radius.
func SectorToPlanet(planetOrigin SectorSpace) Transition[SectorSpace, PlanetSpace] {
	origin := SectorCoordToUniverse(planetOrigin)
	apply := func(s SectorSpace) PlanetSpace {
		u := SectorCoordToUniverse(s)
		return PlanetSpace{
			X: u.X.Sub(origin.X).TruncateTo64(),
			Y: u.Y.Sub(origin.Y).TruncateTo64(),
			Z: u.Z.Sub(origin.Z).TruncateTo64(),
		}
	}
	inverse := func(p PlanetSpace) SectorSpace {
		u := UniverseSpace{
			X: Int128FromInt64(p.X).Add(origin.X),
			Y: Int128FromInt64(p.Y).Add(origin.Y),
			Z: Int128FromInt64(p.Z).Add(origin.Z),
		}
		return UniverseToSectorCoord(u)
	}
	return New("sector->planet", apply, inverse)
}

// PlanetToChunk subtracts the chunk's origin in planet space and casts to
// unsigned 32-bit chunk-local mm.
func PlanetToChunk(chunkOrigin PlanetSpace) Transition[PlanetSpace, ChunkSpace] {
	apply := func(p PlanetSpace) ChunkSpace {
		return ChunkSpace{
			X: uint32(p.X - chunkOrigin.X),
			Y: uint32(p.Y - chunkOrigin.Y),
			Z: uint32(p.Z - chunkOrigin.Z),
		}
	}
	inverse := func(c ChunkSpace) PlanetSpace {
		return PlanetSpace{
			X: chunkOrigin.X + int64(c.X),
			Y: chunkOrigin.Y + int64(c.Y),
			Z: chunkOrigin.Z + int64(c.Z),
		}
	}
	return New("planet->chunk", apply, inverse)
}

// ChunkToLocal scales unsigned 32-bit mm to float metres and offsets by the
// chunk's camera-relative origin (itself already in Local space).
func ChunkToLocal(chunkOriginLocal LocalSpace) Transition[ChunkSpace, LocalSpace] {
	apply := func(c ChunkSpace) LocalSpace {
		return LocalSpace{
			X: chunkOriginLocal.X + float32(c.X)*MMToMetres,
			Y: chunkOriginLocal.Y + float32(c.Y)*MMToMetres,
			Z: chunkOriginLocal.Z + float32(c.Z)*MMToMetres,
		}
	}
	// Not meaningfully invertible: float rounding already lost precision, and
	// attempting the reverse would silently fabricate sub-mm garbage.
	return New("chunk->local", apply, nil)
}

// UniverseToLocal is the single-step shortcut transition of spec.md §4.A:
// subtract the camera's universe position, cast to float, scale. Equivalent
// to the fully composed chain within float error tolerance, but avoids the
// intermediate Sector/Planet/Chunk allocations for the common "draw this
// entity relative to the camera" case.
func UniverseToLocal(cameraUniverse UniverseSpace) Transition[UniverseSpace, LocalSpace] {
	apply := func(p UniverseSpace) LocalSpace {
		dx := p.X.Sub(cameraUniverse.X)
		dy := p.Y.Sub(cameraUniverse.Y)
		dz := p.Z.Sub(cameraUniverse.Z)
		return LocalSpace{
			X: float32(dx.TruncateTo64()) * MMToMetres,
			Y: float32(dy.TruncateTo64()) * MMToMetres,
			Z: float32(dz.TruncateTo64()) * MMToMetres,
		}
	}
	return New("universe->local (shortcut)", apply, nil)
}
