package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

// Node is a scene graph element with a local transform relative to its
// parent. Scale is not modelled; nothing in the table scene uses it.
type Node struct {
	Name       string
	Position   mgl64.Vec3
	Quaternion mgl64.Quat

	// Body is the paired physics body, if any. The node references it; the
	// physics world owns it.
	Body physics.Body

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{Name: name, Quaternion: mgl64.QuatIdent()}
}

// NewNodeAt creates a node with a local position.
func NewNodeAt(name string, pos mgl64.Vec3) *Node {
	n := NewNode(name)
	n.Position = pos
	return n
}

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Add parents child under n keeping the child's local transform.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	child.detach()
	child.parent = n
	n.children = append(n.children, child)
}

// Attach parents child under n keeping the child's world transform.
func (n *Node) Attach(child *Node) {
	if child == nil || child == n {
		return
	}
	worldPos := child.WorldPosition()
	worldQuat := child.WorldQuaternion()

	n.Add(child)

	inv := n.WorldQuaternion().Inverse()
	child.Position = inv.Rotate(worldPos.Sub(n.WorldPosition()))
	child.Quaternion = inv.Mul(worldQuat).Normalize()
}

// Remove detaches child from n. The child's local transform becomes its
// transform relative to the world.
func (n *Node) Remove(child *Node) {
	if child == nil || child.parent != n {
		return
	}
	child.detach()
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// SetEulerXYZ sets the local orientation from Euler angles applied in XYZ
// order (matrix Rx·Ry·Rz), the convention of the browser renderer.
func (n *Node) SetEulerXYZ(x, y, z float64) {
	n.Quaternion = EulerXYZ(x, y, z)
}

// EulerXYZ builds the quaternion for Rx(x)·Ry(y)·Rz(z).
func EulerXYZ(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(x, mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(y, mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(z, mgl64.Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz).Normalize()
}

// WorldTransform resolves the full parent chain.
func (n *Node) WorldTransform() physics.Transform {
	if n.parent == nil {
		return physics.NewTransform(n.Position, n.Quaternion)
	}
	pt := n.parent.WorldTransform()
	return physics.NewTransform(
		pt.ToWorld(n.Position),
		pt.Rotation.Mul(n.Quaternion).Normalize(),
	)
}

func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldTransform().Origin
}

func (n *Node) WorldQuaternion() mgl64.Quat {
	return n.WorldTransform().Rotation
}

// SetWorldTransform writes a world-space transform back into the node's
// local fields.
func (n *Node) SetWorldTransform(t physics.Transform) {
	if n.parent == nil {
		n.Position = t.Origin
		n.Quaternion = t.Rotation
		return
	}
	pt := n.parent.WorldTransform()
	n.Position = pt.ToLocal(t.Origin)
	n.Quaternion = pt.Rotation.Inverse().Mul(t.Rotation).Normalize()
}

// Walk visits n and every descendant depth first.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.children {
		c.Walk(visit)
	}
}
