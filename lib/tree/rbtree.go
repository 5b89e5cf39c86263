package tree

import (
	"math/bits"

	"github.com/benz9527/xtree/lib/infra"
)

type rbNode[K any, V any] struct {
	parent *rbNode[K, V]
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) SetVal(val V) {
	node.val = val
}

// Left, Right and Parent never wrap a nil pointer into a non-nil interface.

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

// NIL leaves are black.
func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V]) direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

func (node *rbNode[K, V]) height() int {
	if node == nil {
		return 0
	}
	return 1 + max(node.left.height(), node.right.height())
}

func (node *rbNode[K, V]) size() int64 {
	if node == nil {
		return 0
	}
	return 1 + node.left.size() + node.right.size()
}

type rbTree[K any, V any] struct {
	root           *rbNode[K, V]
	cmp            infra.Comparator[K]
	count          int64
	isDesc         bool
	isRmBorrowPred bool
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	res := tree.cmp(k1, k2)
	if !tree.isDesc {
		return res
	}
	if res < 0 {
		return 1
	} else if res > 0 {
		return -1
	}
	return 0
}

func (tree *rbTree[K, V]) Comparator() infra.Comparator[K] {
	return tree.keyCompare
}

func (tree *rbTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V]) Size() int64 {
	return tree.root.size()
}

func (tree *rbTree[K, V]) Height() int {
	return tree.root.height()
}

// maxHeight is the upper bound 2*log2(n+1) of the tree height.
func (tree *rbTree[K, V]) maxHeight() int {
	return 2 * bits.Len64(uint64(tree.count)+1)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// The longest root to NIL path is at most twice as long as the shortest
// one, so the height is bounded by 2*log2(n+1).

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   L   Y    ============>    X   Yd
		  / \                   / \
		Yc   Yd                L   Yc
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
}

/*
			 |                         |
			 Y                         X
			/ \     rightRotate(Y)    / \
	       X   R    ============>    Xc  Y
		  / \                           / \
		Xc   Xd                       Xd   R
*/
func (tree *rbTree[K, V]) rightRotate(y *rbNode[K, V]) {
	if y == nil || y.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node y is nil or y.left is nil")
	}

	p, x := y.parent, y.left
	dir := y.direction()
	y.left, x.right = x.right, y

	y.fixLink()
	x.fixLink()

	switch dir {
	case Root:
		tree.root = x
	case Left:
		p.left = x
	case Right:
		p.right = x
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	x.parent = p
}

// i1: Empty rbtree, the new node becomes the black root.
// i2: The key is present, nothing changed. Upsert is composed by
// the callers through SearchNode and SetVal.
// i3: Attach a new red node to the NIL position and rebalance.
func (tree *rbTree[K, V]) Insert(key K, val V) bool {
	if /* i1 */ tree.root == nil {
		tree.root = &rbNode[K, V]{
			key:   key,
			val:   val,
			color: Black,
		}
		tree.count++
		return true
	}

	var (
		x, y *rbNode[K, V] = tree.root, nil
		res  int64
	)
	for x != nil {
		y = x
		if res = tree.keyCompare(key, x.key); /* i2 */ res == 0 {
			return false
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	/* i3 */
	z := &rbNode[K, V]{
		key:    key,
		val:    val,
		color:  Red,
		parent: y,
	}
	if res < 0 {
		y.left = z
	} else {
		y.right = z
	}
	tree.count++
	tree.insertRebalance(z)
	return true
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: X's parent P is black (or X is the root). Nothing to fix.

im2: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
Repaint P and U into black and G into red. G may be red-violation
with its own parent now, continue with G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: The parent P is red but the uncle U is black and X is an inner
child. Rotate P to the opposite direction, X and P exchange roles.
Fall through to im4.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im4: X is an outer child. Rotate G toward U and repaint.
The subtree root is black again, the loop terminates.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for /* im1 */ x.parent.isRed() {
		p := x.parent
		gp := p.parent
		if gp == nil {
			// impossible run to here, the root is black
			panic( /* debug assertion */ "[rbtree] insert violate (red root)")
		}

		pDir := p.direction()
		var uncle *rbNode[K, V]
		if pDir == Left {
			uncle = gp.right
		} else {
			uncle = gp.left
		}

		if /* im2 */ uncle.isRed() {
			p.color = Black
			uncle.color = Black
			gp.color = Red
			x = gp
			continue
		}

		if /* im3 */ x.direction() != pDir {
			switch pDir {
			case Left:
				tree.leftRotate(p)
			case Right:
				tree.rightRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] insert violate (im3)")
			}
			x, p = p, x
		}

		/* im4 */
		p.color = Black
		gp.color = Red
		switch pDir {
		case Left:
			tree.rightRotate(gp)
		case Right:
			tree.leftRotate(gp)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate (im4)")
		}
		break
	}
	tree.root.color = Black
}

// transplant replaces the subtree rooted at u by the subtree rooted at v.
func (tree *rbTree[K, V]) transplant(u, v *rbNode[K, V]) {
	switch u.direction() {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	case Right:
		u.parent.right = v
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to transplant")
	}
	if v != nil {
		v.parent = u.parent
	}
}

/*
r1: Z has at most one child C. C (maybe NIL) takes Z's position.
The removed color is Z's color.

	  |              |
	  Z              C
	 / \   ====>
	C  NIL

r2: Z has two children. Its successor S (leftmost of the right subtree,
S has no left child) is spliced into Z's position and takes Z's color.
The removed color is S's original color, and S's right child C takes
S's original position.

	  |                     |
	  Z                     S
	 / \                   / \
	L   R     ====>       L   R
	   / \                   / \
	  S  ..                 C  ..
	   \
	    C

With the predecessor option it is the mirror: the rightmost node of the
left subtree is spliced instead.

r3: The removed color is red. No property is broken.

r4: The removed color is black. The path through C lacks one black node,
rebalance from C (maybe NIL) with its parent P.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) {
	var (
		child, parent *rbNode[K, V]
		removedColor  = z.color
	)

	if /* r1 */ z.left == nil {
		child, parent = z.right, z.parent
		tree.transplant(z, z.right)
	} else if /* r1 */ z.right == nil {
		child, parent = z.left, z.parent
		tree.transplant(z, z.left)
	} else if /* r2 */ !tree.isRmBorrowPred {
		s := z.right.minimum()
		removedColor = s.color
		child = s.right
		if s.parent == z {
			parent = s
		} else {
			parent = s.parent
			tree.transplant(s, s.right)
			s.right = z.right
			s.right.parent = s
		}
		tree.transplant(z, s)
		s.left = z.left
		s.left.parent = s
		s.color = z.color
	} else /* r2 mirror */ {
		s := z.left.maximum()
		removedColor = s.color
		child = s.left
		if s.parent == z {
			parent = s
		} else {
			parent = s.parent
			tree.transplant(s, s.left)
			s.left = z.left
			s.left.parent = s
		}
		tree.transplant(z, s)
		s.right = z.right
		s.right.parent = s
		s.color = z.color
	}

	if /* r4 */ removedColor == Black {
		tree.removeRebalance(child, parent)
	}

	// Unlink node
	z.parent = nil
	z.left = nil
	z.right = nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries the missing black. S is X's sibling, Sc is S's child on
the same side as X (near nephew), Sd is on the opposite side (far nephew).

rm1: S is red, so P, Sc and Sd are black.
Repaint S into black and P into red, rotate P toward X.
X gets a black sibling (the former Sc), continue with rm2-rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  =====>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: S, Sc and Sd are black.
Repaint S into red, the subtree of P lacks one black now.
If P is red the loop exits and P is painted black, otherwise
continue with P as X.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, Sc is red and Sd is black.
Repaint Sc into black and S into red, rotate S away from X.
Sd is red now, continue with rm4.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: S is black and Sd is red.
S takes P's color, P and Sd are painted black, rotate P toward X.
The missing black is restored, the loop terminates.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K, V]) removeRebalance(x, p *rbNode[K, V]) {
	for x != tree.root && x.isBlack() {
		if p == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (non-root without parent)")
		}

		var (
			dir RBDirection
			s   *rbNode[K, V]
		)
		if x == p.left {
			dir, s = Left, p.right
		} else {
			dir, s = Right, p.left
		}
		if s == nil {
			// impossible run to here, the sibling path holds a black node at least
			panic( /* debug assertion */ "[rbtree] remove violate (nil sibling)")
		}

		if /* rm1 */ s.isRed() {
			s.color = Black
			p.color = Red
			if dir == Left {
				tree.leftRotate(p)
				s = p.right
			} else {
				tree.rightRotate(p)
				s = p.left
			}
		}

		var sc, sd *rbNode[K, V]
		if dir == Left {
			sc, sd = s.left, s.right
		} else {
			sc, sd = s.right, s.left
		}

		if /* rm2 */ sc.isBlack() && sd.isBlack() {
			s.color = Red
			x, p = p, p.parent
			continue
		}

		if /* rm3 */ sd.isBlack() {
			sc.color = Black
			s.color = Red
			if dir == Left {
				tree.rightRotate(s)
				s = p.right
				sd = s.right
			} else {
				tree.leftRotate(s)
				s = p.left
				sd = s.left
			}
		}

		/* rm4 */
		s.color = p.color
		p.color = Black
		sd.color = Black
		if dir == Left {
			tree.leftRotate(p)
		} else {
			tree.rightRotate(p)
		}
		x = tree.root
		break
	}

	if x != nil {
		x.color = Black
	}
}

func (tree *rbTree[K, V]) searchNode(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K, V]) Search(key K) (V, bool) {
	if x := tree.searchNode(key); x != nil {
		return x.val, true
	}
	return *new(V), false
}

func (tree *rbTree[K, V]) SearchNode(key K) (RBNode[K, V], bool) {
	if x := tree.searchNode(key); x != nil {
		return x, true
	}
	return nil, false
}

// SearchFunc descends by fn, which compares the wanted position with
// the node: 0 found, positive turn right, negative turn left.
func (tree *rbTree[K, V]) SearchFunc(fn func(RBNode[K, V]) int64) RBNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := fn(aux)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K, V]) Remove(key K) (RBNode[K, V], bool) {
	z := tree.searchNode(key)
	if z == nil {
		return nil, false
	}
	tree.removeNode(z)
	tree.count--
	return z, true
}

func (tree *rbTree[K, V]) RemoveMin() (RBNode[K, V], bool) {
	_min := tree.root.minimum()
	if _min == nil {
		return nil, false
	}
	tree.removeNode(_min)
	tree.count--
	return _min, true
}

func (tree *rbTree[K, V]) RemoveMax() (RBNode[K, V], bool) {
	_max := tree.root.maximum()
	if _max == nil {
		return nil, false
	}
	tree.removeNode(_max)
	tree.count--
	return _max, true
}

func (tree *rbTree[K, V]) Min() RBNode[K, V] {
	if _min := tree.root.minimum(); _min != nil {
		return _min
	}
	return nil
}

func (tree *rbTree[K, V]) Max() RBNode[K, V] {
	if _max := tree.root.maximum(); _max != nil {
		return _max
	}
	return nil
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	aux := tree.root
	if aux == nil || action == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, tree.maxHeight())
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree[K, V]) Order(visitor func(key K, val V)) {
	if visitor == nil {
		return
	}
	tree.Foreach(func(_ int64, _ RBColor, key K, val V) bool {
		visitor(key, val)
		return true
	})
}

func (tree *rbTree[K, V]) PreOrder(visitor func(key K, val V)) {
	if tree.root == nil || visitor == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, tree.maxHeight())
	defer func() {
		clear(stack)
	}()
	stack = append(stack, tree.root)

	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		visitor(aux.key, aux.val)
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
	}
}

// Release unlinks all nodes depth-first, so the detached nodes
// held by the callers do not keep the rest of the tree alive.
func (tree *rbTree[K, V]) Release() {
	aux := tree.root
	if aux == nil {
		return
	}
	stack := make([]*rbNode[K, V], 0, tree.maxHeight())
	tree.root = nil
	tree.count = 0
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)

	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.parent, aux.left, aux.right = nil, nil, nil
	}
}

type RBTreeOpt[K any, V any] func(*rbTree[K, V])

func WithRBTreeDesc[K any, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isDesc = true
	}
}

// WithRBTreeRemoveBorrowPred splices the predecessor instead of
// the successor when a node with two children is removed.
func WithRBTreeRemoveBorrowPred[K any, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isRmBorrowPred = true
	}
}

func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return NewRBTreeFunc[K, V](infra.OrderedKeyCompare[K], opts...)
}

func NewRBTreeFunc[K any, V any](cmp infra.Comparator[K], opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	if cmp == nil {
		panic("[rbtree] nil key comparator")
	}
	tree := &rbTree[K, V]{
		cmp:            cmp,
		count:          0,
		isDesc:         false,
		isRmBorrowPred: false,
	}

	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	return tree
}
