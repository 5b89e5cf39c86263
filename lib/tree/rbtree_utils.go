package tree

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

func isBlack[K any, V any](node RBNode[K, V]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K any, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

// rbtree rule validation utilities.
// They only read the tree through the RBTree and RBNode interfaces.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

func RootViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w: root %v has a parent", ErrRBTreeRootViolation, root.Key())
	}
	if !isBlack[K, V](root) {
		return fmt.Errorf("%w: root %v is red", ErrRBTreeRootViolation, root.Key())
	}
	return nil
}

// Inorder traversal to validate the rbtree red properties.
func RedViolationValidate[K any, V any](tree RBTree[K, V]) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	stack := make([]RBNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		if isRed[K, V](aux) && (isRed[K, V](aux.Left()) || isRed[K, V](aux.Right())) {
			return fmt.Errorf("%w: red node %v has a red child", ErrRBTreeRedViolation, aux.Key())
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

func blackHeight[K any, V any](node RBNode[K, V]) (int, error) {
	if node == nil {
		return 1, nil
	}
	l, err := blackHeight[K, V](node.Left())
	if err != nil {
		return 0, err
	}
	r, err := blackHeight[K, V](node.Right())
	if err != nil {
		return 0, err
	}
	if l != r {
		return 0, fmt.Errorf("%w: node %v left black height %d, right black height %d",
			ErrRBTreeBlackViolation, node.Key(), l, r)
	}
	if isBlack[K, V](node) {
		l++
	}
	return l, nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each NIL leaf to root node black depth are equal.
*/
func BlackViolationValidate[K any, V any](tree RBTree[K, V]) error {
	_, err := blackHeight[K, V](tree.Root())
	return err
}

// The inorder keys are strictly increasing by the tree comparator.
func OrderViolationValidate[K any, V any](tree RBTree[K, V]) error {
	var (
		prev    K
		hasPrev bool
		err     error
		cmp     = tree.Comparator()
	)
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		if hasPrev && cmp(prev, key) >= 0 {
			err = fmt.Errorf("%w: key %v at %d is not greater than %v", ErrRBTreeOrderViolation, key, idx, prev)
			return false
		}
		prev, hasPrev = key, true
		return true
	})
	return err
}

// Each child links back to its parent.
func LinkViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	stack := make([]RBNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)

	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		for _, child := range []RBNode[K, V]{aux.Left(), aux.Right()} {
			if child == nil {
				continue
			}
			if child.Parent() != aux {
				return fmt.Errorf("%w: node %v does not link back to parent %v",
					ErrRBTreeLinkViolation, child.Key(), aux.Key())
			}
			stack = append(stack, child)
		}
	}
	return nil
}

func LenViolationValidate[K any, V any](tree RBTree[K, V]) error {
	if l, s := tree.Len(), tree.Size(); l != s {
		return fmt.Errorf("%w: len %d, nodes %d", ErrRBTreeLenViolation, l, s)
	}
	return nil
}

func HeightBoundValidate[K any, V any](tree RBTree[K, V]) error {
	h, n := tree.Height(), tree.Size()
	if bound := 2 * math.Log2(float64(n)+1); float64(h) > bound {
		return fmt.Errorf("%w: height %d, nodes %d", ErrRBTreeHeightExceeded, h, n)
	}
	return nil
}

// Validate runs all validators and combines their findings.
func Validate[K any, V any](tree RBTree[K, V]) error {
	if tree == nil {
		return nil
	}
	return multierr.Combine(
		RootViolationValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree),
		LinkViolationValidate[K, V](tree),
		LenViolationValidate[K, V](tree),
		HeightBoundValidate[K, V](tree),
	)
}
