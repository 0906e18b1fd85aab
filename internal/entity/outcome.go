package entity

// OutcomeKind tags the result of evaluating a board.
type OutcomeKind uint8

const (
	OutcomeNone OutcomeKind = iota
	OutcomeWin
	OutcomeDraw
)

// Outcome is the tagged result of a board evaluation. Mark and Line are only
// meaningful when Kind is OutcomeWin.
type Outcome struct {
	Kind OutcomeKind
	Mark Mark
	Line Line
}

func Win(mark Mark, line Line) Outcome {
	return Outcome{Kind: OutcomeWin, Mark: mark, Line: line}
}

func Draw() Outcome {
	return Outcome{Kind: OutcomeDraw}
}

func NoOutcome() Outcome {
	return Outcome{Kind: OutcomeNone}
}

// IsTerminal reports whether the round is over.
func (that Outcome) IsTerminal() bool {
	return that.Kind == OutcomeWin || that.Kind == OutcomeDraw
}

func (that Outcome) String() string {
	switch that.Kind {
	case OutcomeWin:
		return "win:" + that.Mark.String()
	case OutcomeDraw:
		return "draw"
	default:
		return "none"
	}
}
