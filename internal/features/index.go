package features

import "fmt"

const (
	WeightSets = 2
	TreeSizes  = 5

	// SubtreeSize is the length of one transformed subtree.
	SubtreeSize = 22
	FlagCount   = 2
	SubsetCount = 4
	AggCount    = 4

	BlockSize  = FlagCount + 2*SubtreeSize + SubsetCount*AggCount*SubtreeSize
	VectorSize = WeightSets * TreeSizes * BlockSize
)

// Presence flags at the head of every block.
const (
	FlagMoveInTree = 0
	FlagMoveIsBest = 1
)

// Subtree roles. RoleFlags addresses the presence flags in Offset.
const (
	RoleFlags           = -1
	RoleParent          = 0
	RoleMove            = 1
	RoleImproving       = 2
	RoleAdvantageous    = 3
	RoleLosing          = 4
	RoleDisadvantageous = 5
)

// Subsets in role order: subset i has role RoleImproving+i.
const (
	SubsetImproving = iota
	SubsetAdvantageous
	SubsetLosing
	SubsetDisadvantageous
)

const (
	AggMean = iota
	AggStd
	AggMax
	AggMin
)

// Changing any function below invalidates stored normalization statistics
// and trained models.

func BlockOffset(weight, tree int) int {
	checkRange("weight", weight, WeightSets)
	checkRange("tree", tree, TreeSizes)
	return weight*TreeSizes*BlockSize + tree*BlockSize
}

func OffsetFlag(weight, tree, flag int) int {
	checkRange("flag", flag, FlagCount)
	return BlockOffset(weight, tree) + flag
}

// OffsetSubtree addresses the parent (role 0) and move of interest (role 1) subtrees.
func OffsetSubtree(weight, tree, role, index int) int {
	checkRange("role", role, 2)
	checkRange("index", index, SubtreeSize)
	return BlockOffset(weight, tree) + FlagCount + SubtreeSize*role + index
}

func OffsetSubset(weight, tree, subset, agg, index int) int {
	checkRange("subset", subset, SubsetCount)
	checkRange("agg", agg, AggCount)
	checkRange("index", index, SubtreeSize)
	return BlockOffset(weight, tree) + FlagCount + 2*SubtreeSize +
		AggCount*SubtreeSize*subset + SubtreeSize*agg + index
}

// Offset is the unified addressing function: role RoleFlags takes a flag
// index, roles 0 and 1 ignore agg, roles 2..5 are the four subsets.
func Offset(weight, tree, role, agg, index int) int {
	switch {
	case role == RoleFlags:
		return OffsetFlag(weight, tree, index)
	case role == RoleParent || role == RoleMove:
		return OffsetSubtree(weight, tree, role, index)
	case role >= RoleImproving && role <= RoleDisadvantageous:
		return OffsetSubset(weight, tree, role-RoleImproving, agg, index)
	default:
		panic(fmt.Sprintf("features: bad role %v", role))
	}
}

func checkRange(name string, value, limit int) {
	if value < 0 || value >= limit {
		panic(fmt.Sprintf("features: %v %v out of range [0, %v)", name, value, limit))
	}
}
