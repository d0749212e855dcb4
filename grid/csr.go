package grid

import "sync/atomic"

// scanBlockSize is the number of cells handled by one unit of prefix-sum
// work. Keeping blocks fixed-size bounds the cost of any single work
// item regardless of how large the grid grows.
const scanBlockSize = 256

// Dispatcher runs fn over n work items in contiguous chunks and returns
// only after every chunk has completed. compute.Pool satisfies this.
type Dispatcher interface {
	Dispatch(n int, fn func(worker, start, end int))
	Workers() int
}

// CSR is the counting-sort spatial index: Entries holds all particle
// indices grouped contiguously by cell, and Starts[c]..Starts[c+1]
// bounds cell c's group. Starts has NumCells+1 elements; the final one
// is a sentinel equal to the particle count.
//
// Within a cell, entry order depends on which work item claimed a
// scatter slot first and is not deterministic. Consumers must therefore
// be order-independent, which the solver's summations are.
type CSR struct {
	Params  Params
	Starts  []uint32
	Entries []int32

	minCellX int32
	minCellY int32
}

// cellBounds is one worker's partial bounding-cell reduction.
type cellBounds struct {
	minX, minY int32
	maxX, maxY int32
	used       bool
}

// Builder constructs CSR indexes, reusing its internal buffers across
// ticks. A Builder is owned by a single engine and is not safe for
// concurrent Build calls.
type Builder struct {
	counts    []uint32
	blockSums []uint32
	blockOffs []uint32
	cursors   []uint32
	bounds    []cellBounds
	csr       CSR
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build constructs the index for the given positions with cell size
// equal to the smoothing radius. The five passes — histogram, per-block
// scan, block-sums scan, add-back, scatter — each run as one dispatch,
// and the dispatcher's completion acts as the barrier between them.
//
// Cell counters are uint32; populations beyond that width would wrap
// silently, which is far past any plausible particle count here.
//
// An empty particle set skips the build entirely and yields an index
// with zero cells.
func (b *Builder) Build(xs, ys []float32, cellSize float32, d Dispatcher) *CSR {
	n := len(xs)
	if n == 0 {
		b.csr = CSR{
			Params: Params{CellSize: cellSize},
			Starts: append(b.csr.Starts[:0], 0),
		}
		return &b.csr
	}

	// Pass 0: bounding cell range, reduced per worker then combined.
	if cap(b.bounds) < d.Workers() {
		b.bounds = make([]cellBounds, d.Workers())
	}
	b.bounds = b.bounds[:d.Workers()]
	for i := range b.bounds {
		b.bounds[i].used = false
	}
	d.Dispatch(n, func(w, start, end int) {
		bb := cellBounds{used: true}
		bb.minX, bb.minY = CellOf(xs[start], ys[start], cellSize)
		bb.maxX, bb.maxY = bb.minX, bb.minY
		for i := start + 1; i < end; i++ {
			cx, cy := CellOf(xs[i], ys[i], cellSize)
			if cx < bb.minX {
				bb.minX = cx
			} else if cx > bb.maxX {
				bb.maxX = cx
			}
			if cy < bb.minY {
				bb.minY = cy
			} else if cy > bb.maxY {
				bb.maxY = cy
			}
		}
		b.bounds[w] = bb
	})

	var total cellBounds
	for _, bb := range b.bounds {
		if !bb.used {
			continue
		}
		if !total.used {
			total = bb
			continue
		}
		total.minX = min(total.minX, bb.minX)
		total.minY = min(total.minY, bb.minY)
		total.maxX = max(total.maxX, bb.maxX)
		total.maxY = max(total.maxY, bb.maxY)
	}

	nx := uint32(total.maxX - total.minX + 1)
	ny := uint32(total.maxY - total.minY + 1)
	numCells := int(nx) * int(ny)

	b.csr.Params = Params{
		OriginX:  float32(total.minX) * cellSize,
		OriginY:  float32(total.minY) * cellSize,
		CellSize: cellSize,
		NX:       nx,
		NY:       ny,
	}
	b.csr.minCellX = total.minX
	b.csr.minCellY = total.minY

	counts := resizeU32(&b.counts, numCells)
	for i := range counts {
		counts[i] = 0
	}
	starts := resizeU32(&b.csr.Starts, numCells+1)

	minX, minY := total.minX, total.minY
	cellIndex := func(i int) int {
		cx, cy := CellOf(xs[i], ys[i], cellSize)
		return int(cy-minY)*int(nx) + int(cx-minX)
	}

	// Pass 1: histogram. Multiple items hit the same cell concurrently,
	// so the increments must be atomic.
	d.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			atomic.AddUint32(&counts[cellIndex(i)], 1)
		}
	})

	// Pass 2: per-block exclusive prefix sums, recording block totals.
	numBlocks := (numCells + scanBlockSize - 1) / scanBlockSize
	blockSums := resizeU32(&b.blockSums, numBlocks)
	d.Dispatch(numBlocks, func(_, start, end int) {
		for blk := start; blk < end; blk++ {
			lo := blk * scanBlockSize
			hi := min(lo+scanBlockSize, numCells)
			blockSums[blk] = exclusiveScan(starts[lo:hi], counts[lo:hi])
		}
	})

	// Pass 3: scan the (small) block sums with the same primitive.
	blockOffs := resizeU32(&b.blockOffs, numBlocks)
	exclusiveScan(blockOffs, blockSums)

	// Pass 4: add each block's scanned offset back into its cells, then
	// append the sentinel.
	d.Dispatch(numBlocks, func(_, start, end int) {
		for blk := start; blk < end; blk++ {
			off := blockOffs[blk]
			lo := blk * scanBlockSize
			hi := min(lo+scanBlockSize, numCells)
			for c := lo; c < hi; c++ {
				starts[c] += off
			}
		}
	})
	starts[numCells] = uint32(n)

	// Pass 5: scatter. Each item atomically claims the next free slot of
	// its cell's range via a per-cell cursor.
	cursors := resizeU32(&b.cursors, numCells)
	copy(cursors, starts[:numCells])
	entries := resizeI32(&b.csr.Entries, n)
	d.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			slot := atomic.AddUint32(&cursors[cellIndex(i)], 1) - 1
			entries[slot] = int32(i)
		}
	})

	return &b.csr
}

// exclusiveScan writes the exclusive prefix sum of src into dst and
// returns the total. dst and src must have equal length.
func exclusiveScan(dst, src []uint32) uint32 {
	var sum uint32
	for i, v := range src {
		dst[i] = sum
		sum += v
	}
	return sum
}

func resizeU32(buf *[]uint32, n int) []uint32 {
	if cap(*buf) < n {
		*buf = make([]uint32, n)
	}
	*buf = (*buf)[:n]
	return *buf
}

func resizeI32(buf *[]int32, n int) []int32 {
	if cap(*buf) < n {
		*buf = make([]int32, n)
	}
	*buf = (*buf)[:n]
	return *buf
}

// ForNeighbors invokes fn for every particle index in the 3×3 block of
// cells around the given position, including the particle at the
// position itself. Cells outside the grid extent are skipped.
func (c *CSR) ForNeighbors(x, y float32, fn func(j int32)) {
	if c.Params.NumCells() == 0 {
		return
	}
	cx, cy := CellOf(x, y, c.Params.CellSize)
	ix := cx - c.minCellX
	iy := cy - c.minCellY
	nx := int32(c.Params.NX)
	ny := int32(c.Params.NY)

	for dy := int32(-1); dy <= 1; dy++ {
		row := iy + dy
		if row < 0 || row >= ny {
			continue
		}
		for dx := int32(-1); dx <= 1; dx++ {
			col := ix + dx
			if col < 0 || col >= nx {
				continue
			}
			cell := row*nx + col
			for _, j := range c.Entries[c.Starts[cell]:c.Starts[cell+1]] {
				fn(j)
			}
		}
	}
}
