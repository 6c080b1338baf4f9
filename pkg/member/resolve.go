package member

// Resolution classifies a name against a Target's member spaces.
type Resolution int

const (
	Unresolved Resolution = iota
	ResolvedInstance
	ResolvedStatic
)

func (r Resolution) String() string {
	switch r {
	case ResolvedInstance:
		return "instance"
	case ResolvedStatic:
		return "static"
	default:
		return "unresolved"
	}
}

// Level maps a resolution to the space it was found in.
func (r Resolution) Level() (Level, bool) {
	switch r {
	case ResolvedInstance:
		return LevelInstance, true
	case ResolvedStatic:
		return LevelStatic, true
	default:
		return 0, false
	}
}

// Resolve looks name up in the instance space first and the static space
// second. A name present in both resolves to the instance member.
func Resolve(t *Target, name string) Resolution {
	if t.Has(LevelInstance, name) {
		return ResolvedInstance
	}
	if t.Has(LevelStatic, name) {
		return ResolvedStatic
	}
	return Unresolved
}
