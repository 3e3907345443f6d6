package onepager

import (
	models "onepager/internal/domain/models/onepager"
)

// The functions below never mutate their input slice. The bool result
// reports whether anything changed; when it is false the original slice is
// returned as is.

// insertAfter places nb immediately after the block with id afterID.
func insertAfter(blocks []models.Block, afterID string, nb models.Block) ([]models.Block, bool) {
	idx := indexOf(blocks, afterID)
	if idx < 0 {
		return blocks, false
	}

	out := make([]models.Block, 0, len(blocks)+1)
	out = append(out, blocks[:idx+1]...)
	out = append(out, nb)
	out = append(out, blocks[idx+1:]...)
	return out, true
}

// deleteBlock removes a block unless it is the title block or the last
// non-title block.
func deleteBlock(blocks []models.Block, id string) ([]models.Block, bool) {
	idx := indexOf(blocks, id)
	if idx < 0 || blocks[idx].IsTitle() {
		return blocks, false
	}
	if countSections(blocks) <= 1 {
		return blocks, false
	}

	out := make([]models.Block, 0, len(blocks)-1)
	out = append(out, blocks[:idx]...)
	out = append(out, blocks[idx+1:]...)
	return out, true
}

// reorder moves activeID to overID's index, shifting the blocks in between
// by one. Refused when either id is unknown or denotes the title block.
func reorder(blocks []models.Block, activeID, overID string) ([]models.Block, bool) {
	from := indexOf(blocks, activeID)
	to := indexOf(blocks, overID)
	if from < 0 || to < 0 || from == to {
		return blocks, false
	}
	if blocks[from].IsTitle() || blocks[to].IsTitle() {
		return blocks, false
	}

	out := make([]models.Block, 0, len(blocks))
	moved := blocks[from]
	for i, b := range blocks {
		if i == from {
			continue
		}
		out = append(out, b)
	}
	// After removal, inserting at the original target index yields the
	// same result for both directions.
	out = append(out[:to], append([]models.Block{moved}, out[to:]...)...)
	return out, true
}

// replaceBlock swaps in b at the position of the block with the same id.
func replaceBlock(blocks []models.Block, b models.Block) ([]models.Block, bool) {
	idx := indexOf(blocks, b.ID)
	if idx < 0 {
		return blocks, false
	}
	out := make([]models.Block, len(blocks))
	copy(out, blocks)
	out[idx] = b
	return out, true
}

func indexOf(blocks []models.Block, id string) int {
	for i := range blocks {
		if blocks[i].ID == id {
			return i
		}
	}
	return -1
}

func countSections(blocks []models.Block) int {
	n := 0
	for _, b := range blocks {
		if !b.IsTitle() {
			n++
		}
	}
	return n
}
