package shadows

// Visitor receives scene members sorted by their shadow role.
type Visitor interface {
	OnCaster(m Member)
	OnOverlay(m Member)
	OnLight(m LightMember)
}

// Classify dispatches m to the visitor method matching its tag. Untagged
// members are ignored, as are light-tagged members that carry no *Light.
// Classify does not recurse into children.
func Classify(m Member, v Visitor) {
	switch m.MemberTag() {
	case TagCaster:
		v.OnCaster(m)
	case TagOverlay:
		v.OnOverlay(m)
	case TagLight:
		lm, ok := m.(LightMember)
		if !ok || lm.PointOfView() == nil {
			Logger().Warn("light-tagged member has no light", "id", m.MemberID())
			return
		}
		v.OnLight(lm)
	}
}

// Buckets is the per-frame classification result. Members appear in the
// order they were visited, each at most once per frame.
type Buckets struct {
	Casters  []Member
	Overlays []Member
	Lights   []LightMember

	seen visitSet
}

// NewBuckets creates empty buckets ready for the first frame.
func NewBuckets() *Buckets {
	b := &Buckets{}
	b.seen.Next()
	return b
}

// Add classifies m into the buckets unless it was already added this frame.
func (b *Buckets) Add(m Member) {
	if b.seen.gen == 0 {
		b.seen.Next()
	}
	if !b.seen.Visit(m.MemberID()) {
		return
	}
	Classify(m, b)
}

// OnCaster implements Visitor.
func (b *Buckets) OnCaster(m Member) { b.Casters = append(b.Casters, m) }

// OnOverlay implements Visitor.
func (b *Buckets) OnOverlay(m Member) { b.Overlays = append(b.Overlays, m) }

// OnLight implements Visitor.
func (b *Buckets) OnLight(m LightMember) { b.Lights = append(b.Lights, m) }

// Len returns the total number of classified members.
func (b *Buckets) Len() int {
	return len(b.Casters) + len(b.Overlays) + len(b.Lights)
}

// Reset empties the buckets for the next frame, keeping their capacity.
func (b *Buckets) Reset() {
	clear(b.Casters)
	clear(b.Overlays)
	clear(b.Lights)
	b.Casters = b.Casters[:0]
	b.Overlays = b.Overlays[:0]
	b.Lights = b.Lights[:0]
	b.seen.Next()
}

// visitSet records which member ids were seen in the current frame. Each id
// is stamped with the generation it was last visited in, so starting a new
// frame is a counter increment rather than a clear.
type visitSet struct {
	stamps []uint32
	gen    uint32
}

// Next starts a new generation. Every id becomes unvisited.
func (s *visitSet) Next() {
	s.gen++
	if s.gen == 0 {
		// Wrapped: stale stamps could alias the new generation.
		clear(s.stamps)
		s.gen = 1
	}
}

// Visit marks id as seen and reports whether this was its first visit in
// the current generation.
func (s *visitSet) Visit(id uint32) bool {
	if int(id) >= len(s.stamps) {
		grown := make([]uint32, max(int(id)+1, 2*len(s.stamps)))
		copy(grown, s.stamps)
		s.stamps = grown
	}
	if s.stamps[id] == s.gen {
		return false
	}
	s.stamps[id] = s.gen
	return true
}
