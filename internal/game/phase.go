package game

// Phase is the per-turn state machine position. The cycle after start is
// drawing, meld, discarding, waiting_on_call, then drawing again for the
// next player. drawing_after_call covers the forced draw a resolved call
// imposes on the current player.
type Phase string

const (
	PhaseWaiting          Phase = "waiting"
	PhaseDrawing          Phase = "drawing"
	PhaseMeld             Phase = "meld"
	PhaseDiscarding       Phase = "discarding"
	PhaseWaitingOnCall    Phase = "waiting_on_call"
	PhaseDrawingAfterCall Phase = "drawing_after_call"
	PhaseFinished         Phase = "finished"
)

func (p Phase) String() string {
	return string(p)
}
