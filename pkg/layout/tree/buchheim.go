package tree

// This file implements the Buchheim/Jünger/Leipert linear-time variant of
// the Reingold-Tilford tree drawing algorithm. The first walk assigns
// preliminary positions bottom-up; apportion threads the right contour of
// each placed subtree against the left contour of the next one and pushes
// the later subtree right by exactly the overlap, distributing the push
// across intermediate siblings through the shift/change accumulators. The
// second walk folds the accumulated modifiers into absolute positions.
// Because contours are traversed through thread shortcuts instead of
// re-walking subtrees, total work stays linear in node count.

// firstWalk computes preliminary x positions post-order.
func (a *arena) firstWalk(v int) {
	if len(a.nodes[v].children) == 0 {
		if w := a.leftSibling(v); w != none {
			a.nodes[v].prelim = a.nodes[w].prelim + a.separation(v, w)
		}
		return
	}

	kids := a.nodes[v].children
	defaultAncestor := kids[0]
	for _, w := range kids {
		a.firstWalk(w)
		defaultAncestor = a.apportion(w, defaultAncestor)
	}
	a.executeShifts(v)

	mid := (a.nodes[kids[0]].prelim + a.nodes[kids[len(kids)-1]].prelim) / 2
	if w := a.leftSibling(v); w != none {
		a.nodes[v].prelim = a.nodes[w].prelim + a.separation(v, w)
		a.nodes[v].mod = a.nodes[v].prelim - mid
	} else {
		a.nodes[v].prelim = mid
	}
}

// apportion resolves overlap between v's subtree and everything placed to
// its left. It walks four contour pointers in lockstep - inner/outer on both
// sides - and whenever the left subtree's right contour crosses v's left
// contour, shifts v's subtree right by the overlap plus separation.
func (a *arena) apportion(v, defaultAncestor int) int {
	w := a.leftSibling(v)
	if w == none {
		return defaultAncestor
	}

	vip, vop := v, v
	vim := w
	vom := a.nodes[a.nodes[vip].parent].children[0]

	sip := a.nodes[vip].mod
	sop := a.nodes[vop].mod
	sim := a.nodes[vim].mod
	som := a.nodes[vom].mod

	for a.nextRight(vim) != none && a.nextLeft(vip) != none {
		vim = a.nextRight(vim)
		vip = a.nextLeft(vip)
		vom = a.nextLeft(vom)
		vop = a.nextRight(vop)
		a.nodes[vop].ancestor = v

		shift := (a.nodes[vim].prelim + sim) - (a.nodes[vip].prelim + sip) + a.separation(vim, vip)
		if shift > 0 {
			a.moveSubtree(a.apportionAncestor(vim, v, defaultAncestor), v, shift)
			sip += shift
			sop += shift
		}

		sim += a.nodes[vim].mod
		sip += a.nodes[vip].mod
		som += a.nodes[vom].mod
		sop += a.nodes[vop].mod
	}

	// Thread the dangling contour ends so later traversals can skip
	// straight to the deeper subtree's boundary.
	if a.nextRight(vim) != none && a.nextRight(vop) == none {
		a.nodes[vop].thread = a.nextRight(vim)
		a.nodes[vop].mod += sim - sop
	}
	if a.nextLeft(vip) != none && a.nextLeft(vom) == none {
		a.nodes[vom].thread = a.nextLeft(vip)
		a.nodes[vom].mod += sip - som
		defaultAncestor = v
	}
	return defaultAncestor
}

// apportionAncestor picks the node against which a shift is charged: the
// recorded ancestor of the left contour node when it is a sibling of v,
// otherwise the default ancestor.
func (a *arena) apportionAncestor(vim, v, defaultAncestor int) int {
	anc := a.nodes[vim].ancestor
	if a.nodes[anc].parent == a.nodes[v].parent {
		return anc
	}
	return defaultAncestor
}

// moveSubtree shifts wp and everything under it right by shift, and spreads
// the displacement evenly across the siblings between wm and wp via the
// change accumulators. executeShifts applies them in one pass afterwards,
// which is what keeps apportioning linear.
func (a *arena) moveSubtree(wm, wp int, shift float64) {
	subtrees := float64(a.nodes[wp].order - a.nodes[wm].order)
	a.nodes[wp].change -= shift / subtrees
	a.nodes[wp].shift += shift
	a.nodes[wm].change += shift / subtrees
	a.nodes[wp].prelim += shift
	a.nodes[wp].mod += shift
}

// executeShifts applies the pending shift/change accumulators to v's
// children in a single right-to-left sweep.
func (a *arena) executeShifts(v int) {
	var shift, change float64
	kids := a.nodes[v].children
	for i := len(kids) - 1; i >= 0; i-- {
		w := kids[i]
		a.nodes[w].prelim += shift
		a.nodes[w].mod += shift
		change += a.nodes[w].change
		shift += a.nodes[w].shift + change
	}
}

// secondWalk converts preliminary positions plus accumulated ancestor
// modifiers into absolute x coordinates, pre-order.
func (a *arena) secondWalk(v int, m float64) {
	a.nodes[v].x = a.nodes[v].prelim + m
	for _, w := range a.nodes[v].children {
		a.secondWalk(w, m+a.nodes[v].mod)
	}
}
