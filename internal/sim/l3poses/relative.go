package l3poses

// RelativePose is the state of vehicle j as seen from vehicle i, as plain
// differences in the world frame. Velocity is split into components before
// subtracting, so (DVX, DVY) is a true relative velocity vector.
type RelativePose struct {
	Present bool
	DX      float64
	DY      float64
	DVX     float64
	DVY     float64
	DPsi    float64 // wrapped into (−π, π]
	DPsiDot float64
}

// Values returns the six channels (Δx, Δy, Δvx, Δvy, Δψ, Δψ̇).
func (r RelativePose) Values() [6]float64 {
	return [6]float64{r.DX, r.DY, r.DVX, r.DVY, r.DPsi, r.DPsiDot}
}

// RelativeFrame holds RelativePose for every ordered pair, indexed [i][j].
type RelativeFrame [][]RelativePose

// At returns the relation of vehicle j to vehicle i.
func (rf RelativeFrame) At(i, j int) RelativePose {
	return rf[i][j]
}

// Relative computes rf[i][j] = pose[j] − pose[i] for every ordered pair.
//
// The diagonal is absent: a vehicle has no relation to itself, which is
// distinct from having an identical pose. Pairs involving an absent pose are
// absent, and with MaskRelative set so is every pair Adjacency does not
// connect.
func (p Projector) Relative(poses []Pose) RelativeFrame {
	nv := len(poses)
	rf := make(RelativeFrame, nv)
	for i := range rf {
		rf[i] = make([]RelativePose, nv)
		a := poses[i]
		if !a.Present {
			continue
		}
		for j, b := range poses {
			if i == j || !b.Present {
				continue
			}
			if p.MaskRelative && (p.Adjacency == nil || !p.Adjacency.IsAdjacent(i, j)) {
				continue
			}
			rf[i][j] = RelativePose{
				Present: true,
				DX:      b.X - a.X,
				DY:      b.Y - a.Y,
				DVX:     b.VX() - a.VX(),
				DVY:     b.VY() - a.VY(),
				DPsi:    WrapAngle(b.Psi - a.Psi),
				DPsiDot: b.PsiDot - a.PsiDot,
			}
		}
	}
	return rf
}
