package transpile

// blockKind classifies an open block; closing punctuation and the treatment
// of lines inside the block both depend on it.
type blockKind int

const (
	kindOther blockKind = iota
	kindStruct
	kindEnum
	kindFn
	kindImpl
	kindMatch
	kindControl
	kindMain
	kindArm
)

// frame is one open block. suffix is emitted after the closing brace, e.g.
// the comma that terminates a braced match arm.
type frame struct {
	indent int
	kind   blockKind
	suffix string
}

type frameStack struct {
	frames []frame
}

func (s *frameStack) push(f frame) {
	s.frames = append(s.frames, f)
}

func (s *frameStack) pop() frame {
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f
}

func (s *frameStack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

func (s *frameStack) depth() int { return len(s.frames) }

// kindOf reports the innermost block kind, kindOther at top level.
func (s *frameStack) kindOf() blockKind {
	if t := s.top(); t != nil {
		return t.kind
	}
	return kindOther
}
