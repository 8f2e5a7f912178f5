package normalize

import "github.com/schieber/jasstat/internal/model"

// MergePolicy reconciles the two storage shapes describing one session game:
// the embedded summary row and the supplementary per-game detail record. All
// field precedence lives here; nothing outside this type decides which source
// wins.
//
// The summary row is authoritative for game number, points, and stroke
// scoring. The detail record, when present, wins only the bonus sub-counts
// (matsch, schneider, kontermatsch) and the weis fields. It is supplementary
// and never supplies core scoring a summary row lacks.
type MergePolicy struct{}

// MergedGame is the reconciled view of one session game. Optional fields stay
// optional: absence of authoritative scoring is a skip decision made by the
// caller, not papered over here.
type MergedGame struct {
	Number   int
	PointsA  *int
	PointsB  *int
	StrokesA *model.StrokeSet
	StrokesB *model.StrokeSet
	WeisA    *int
	WeisB    *int
}

// Merge combines a summary row with its detail record (nil when the session
// has none for this game number).
func (MergePolicy) Merge(game model.RawGame, detail *model.RawGameDetail) MergedGame {
	m := MergedGame{
		Number:   game.Number,
		PointsA:  game.PointsA,
		PointsB:  game.PointsB,
		StrokesA: game.StrokesA,
		StrokesB: game.StrokesB,
		WeisA:    game.WeisA,
		WeisB:    game.WeisB,
	}
	if detail == nil {
		return m
	}

	if m.StrokesA != nil {
		s := *m.StrokesA
		s.Matsch = IntOr(detail.MatschA, s.Matsch)
		s.Schneider = IntOr(detail.SchneiderA, s.Schneider)
		s.Kontermatsch = IntOr(detail.KontermatschA, s.Kontermatsch)
		m.StrokesA = &s
	}
	if m.StrokesB != nil {
		s := *m.StrokesB
		s.Matsch = IntOr(detail.MatschB, s.Matsch)
		s.Schneider = IntOr(detail.SchneiderB, s.Schneider)
		s.Kontermatsch = IntOr(detail.KontermatschB, s.Kontermatsch)
		m.StrokesB = &s
	}
	if detail.WeisA != nil {
		m.WeisA = detail.WeisA
	}
	if detail.WeisB != nil {
		m.WeisB = detail.WeisB
	}
	return m
}
