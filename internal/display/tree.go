package display

import (
	"context"
	"fmt"
	"strings"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// TreeNode is one node of a rendered call tree.
type TreeNode struct {
	Node     types.Node
	Depth    int
	Children []*TreeNode
}

// NodeSource resolves a NodeID to its full Node, needed to label tree
// entries; internal/store satisfies it.
type NodeSource interface {
	GetNode(ctx context.Context, id types.NodeID) (*types.Node, error)
}

// GraphWalker is the subset of internal/graph.Engine the tree builder
// needs; either Callers or Callees, bound by the caller's direction
// choice.
type GraphWalker func(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error)

// BuildTree recursively expands one hop at a time (rather than a
// single bounded BFS) so the result is a real parent/child tree rather
// than a flat hop list, cycle-guarded by a visited set shared across
// the whole recursion.
func BuildTree(ctx context.Context, walk GraphWalker, nodes NodeSource, root types.NodeID, maxDepth int) (*TreeNode, error) {
	visited := map[types.NodeID]bool{root: true}
	return buildTree(ctx, walk, nodes, root, 0, maxDepth, visited)
}

func buildTree(ctx context.Context, walk GraphWalker, nodes NodeSource, id types.NodeID, depth, maxDepth int, visited map[types.NodeID]bool) (*TreeNode, error) {
	node, err := nodes.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	tn := &TreeNode{Node: *node, Depth: depth}
	if depth >= maxDepth {
		return tn, nil
	}

	hops, err := walk(ctx, id, 1)
	if err != nil {
		return nil, err
	}
	for _, hop := range hops {
		if visited[hop.Node] {
			continue
		}
		visited[hop.Node] = true
		child, err := buildTree(ctx, walk, nodes, hop.Node, depth+1, maxDepth, visited)
		if err != nil {
			return nil, err
		}
		tn.Children = append(tn.Children, child)
	}
	return tn, nil
}

// FormatTree renders a call tree as indented ASCII art, in the
// branch-character style of the teacher's function-tree formatter.
func FormatTree(root *TreeNode) string {
	var sb strings.Builder
	if root == nil {
		return "(empty)"
	}
	fmt.Fprintf(&sb, "%s\n", root.Node.QualifiedName)
	formatChildren(&sb, root.Children, "")
	return sb.String()
}

func formatChildren(sb *strings.Builder, children []*TreeNode, prefix string) {
	for i, child := range children {
		isLast := i == len(children)-1
		branch := "├─ "
		childPrefix := prefix + "│  "
		if isLast {
			branch = "└─ "
			childPrefix = prefix + "   "
		}
		fmt.Fprintf(sb, "%s%s%s [%s:%d]\n", prefix, branch, child.Node.QualifiedName, child.Node.Path, child.Node.Pos.StartLine)
		formatChildren(sb, child.Children, childPrefix)
	}
}
