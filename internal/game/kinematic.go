package game

import (
	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

// KinematicSync pushes figure world transforms into their kinematic bodies.
type KinematicSync struct {
	figures []*Figure
}

func newKinematicSync(rods [2][]*Rod) *KinematicSync {
	k := &KinematicSync{}
	for _, team := range Teams {
		for _, r := range rods[team] {
			k.figures = append(k.figures, r.Figures...)
		}
	}
	return k
}

// Sync copies the full parent-chain transform of every kinematic figure
// onto its body and wakes it. It returns the number of bodies written.
func (k *KinematicSync) Sync() int {
	n := 0
	for _, f := range k.figures {
		if f.Body == nil || !physics.IsKinematic(f.Body) {
			continue
		}
		f.Body.SetTransform(f.Node.WorldTransform())
		f.Body.Activate()
		n++
	}
	return n
}
