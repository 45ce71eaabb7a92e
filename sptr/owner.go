package sptr

import "github.com/boboxa2010/SmartPointers/internal/ctrlblock"

// Owner is implemented by every SharedPtr and WeakPtr instantiation and
// lets handles of different element types be compared by owner group.
type Owner interface {
	ownerBlock() ctrlblock.Block
}

// ownerLess orders blocks by allocation ID; the empty block sorts first.
func ownerLess(a, b ctrlblock.Block) bool {
	return blockID(a) < blockID(b)
}

func blockID(b ctrlblock.Block) uint64 {
	if b == nil {
		return 0
	}
	return b.ID()
}
