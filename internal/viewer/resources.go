package viewer

import (
	"github.com/Faultbox/meshvault/internal/scene"
)

// Tracker releases the GPU resources held by a model subtree. It holds no
// references of its own; it only traverses what the session hands it, so
// it never extends a resource's lifetime.
type Tracker struct {
	disposals int
}

// DisposeSubtree releases the geometry buffer of every drawable in the
// subtree and every texture slot of every material. Handles are nilled as
// they are released, so each resource is freed exactly once even if a
// subtree is visited again.
func (t *Tracker) DisposeSubtree(root *scene.Node) {
	if root == nil {
		return
	}
	root.Walk(func(n *scene.Node) {
		if n.Kind != scene.KindDrawable {
			return
		}
		if n.Geometry != nil {
			n.Geometry.Release()
			n.Geometry = nil
		}
		for _, mat := range n.Materials {
			// Release each occupied slot individually; one retained slot
			// keeps the whole texture resident.
			for _, tex := range mat.Textures.Slots() {
				tex.Release()
			}
			mat.Textures = scene.TextureSet{}
		}
	})
	t.disposals++
}

// Disposals reports how many subtrees have been disposed.
func (t *Tracker) Disposals() int {
	return t.disposals
}
