package experiment

import (
	"fmt"
	"strconv"
)

// idAllocator hands out hierarchical scaffold ids. Initial scaffolds get
// "0", "1", ...; a child of "0" gets "0-0", "0-1", and so on, so an id
// encodes its whole lineage.
type idAllocator struct {
	nextInitial int
	children    map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{children: make(map[string]int)}
}

func (a *idAllocator) NextInitial() string {
	id := strconv.Itoa(a.nextInitial)
	a.nextInitial++
	return id
}

func (a *idAllocator) Child(parentID string) string {
	n := a.children[parentID]
	a.children[parentID]++
	return fmt.Sprintf("%s-%d", parentID, n)
}
