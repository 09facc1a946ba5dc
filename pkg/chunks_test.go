package merger

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTable(events ...int64) *MemoryTable {
	table := &MemoryTable{}
	for i, event := range events {
		table.Records = append(table.Records, ClusterRecord{
			EventNumber: event,
			MeanColumn:  float64(i + 1),
			MeanRow:     float64(i + 1),
			Charge:      uint16(i + 1),
		})
	}
	return table
}

func readAll(t *testing.T, table ClusterTable, options ChunkOptions) [][]ClusterRecord {
	t.Helper()
	reader, err := NewChunkReader(table, options)
	require.NoError(t, err)
	var chunks [][]ClusterRecord
	for {
		chunk, _, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return chunks
		}
		require.NoError(t, err)
		require.NotEmpty(t, chunk)
		chunks = append(chunks, chunk)
	}
}

// Concatenating the chunks must reproduce the table exactly, for every chunk
// size from degenerate to oversized.
func TestChunkReaderReconstruction(t *testing.T) {
	table := makeTable(0, 0, 1, 2, 2, 2, 3, 5, 5, 8)
	for chunkSize := 1; chunkSize <= len(table.Records)+3; chunkSize++ {
		chunks := readAll(t, table, ChunkOptions{ChunkSize: chunkSize})
		var flat []ClusterRecord
		for _, chunk := range chunks {
			flat = append(flat, chunk...)
		}
		assert.Equal(t, table.Records, flat, "chunk size %d", chunkSize)
	}
}

// A chunk never ends inside an event: the last event number of one chunk is
// strictly below the first event number of the next.
func TestChunkReaderEventBoundaries(t *testing.T) {
	table := makeTable(0, 0, 0, 1, 1, 2, 2, 2, 2, 3, 4, 4)
	for chunkSize := 1; chunkSize <= len(table.Records); chunkSize++ {
		chunks := readAll(t, table, ChunkOptions{ChunkSize: chunkSize})
		for i := 1; i < len(chunks); i++ {
			previous := chunks[i-1][len(chunks[i-1])-1].EventNumber
			assert.Less(t, previous, chunks[i][0].EventNumber)
		}
		for _, chunk := range chunks {
			if len(chunk) <= chunkSize {
				continue
			}
			// Oversized chunks may only happen when a single event exceeds
			// the chunk size, and then the chunk holds exactly that event.
			for _, record := range chunk {
				assert.Equal(t, chunk[0].EventNumber, record.EventNumber)
			}
		}
	}
}

func TestChunkReaderOversizedEvent(t *testing.T) {
	table := makeTable(1, 2, 2, 2, 2, 2, 2, 3)
	chunks := readAll(t, table, ChunkOptions{ChunkSize: 3})

	require.Len(t, chunks, 3)
	assert.Equal(t, int64(1), chunks[0][0].EventNumber)
	// The six records of event 2 do not fit into chunk size 3 and come back
	// as one intact oversized chunk.
	require.Len(t, chunks[1], 6)
	for _, record := range chunks[1] {
		assert.Equal(t, int64(2), record.EventNumber)
	}
	assert.Equal(t, int64(3), chunks[2][0].EventNumber)
}

func TestChunkReaderEventRange(t *testing.T) {
	table := makeTable(0, 1, 1, 2, 3, 4, 4, 5, 6)
	start := int64(1)
	stop := int64(5)

	for _, speedup := range []bool{false, true} {
		chunks := readAll(t, table, ChunkOptions{
			StartEventNumber: &start,
			StopEventNumber:  &stop,
			ChunkSize:        4,
			TrySpeedup:       speedup,
		})
		var flat []ClusterRecord
		for _, chunk := range chunks {
			flat = append(flat, chunk...)
		}
		require.Len(t, flat, 6)
		assert.Equal(t, []int64{1, 1, 2, 3, 4, 4}, eventNumbers(flat))
		for _, record := range flat {
			assert.GreaterOrEqual(t, record.EventNumber, start)
			assert.Less(t, record.EventNumber, stop)
		}
	}
}

// The speedup path resolves both bounds via the event index and serves the
// range in a single read.
func TestChunkReaderSingleRead(t *testing.T) {
	table := makeTable(0, 1, 2, 3, 4, 5, 6, 7)
	start := int64(2)
	stop := int64(6)

	reader, err := NewChunkReader(table, ChunkOptions{
		StartEventNumber: &start,
		StopEventNumber:  &stop,
		ChunkSize:        100,
		TrySpeedup:       true,
	})
	require.NoError(t, err)

	chunk, next, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4, 5}, eventNumbers(chunk))
	assert.Equal(t, int64(6), next)

	_, _, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

// The returned next index points at the first unconsumed row, so a later
// reader can resume exactly where the previous one stopped.
func TestChunkReaderResume(t *testing.T) {
	table := makeTable(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	reader, err := NewChunkReader(table, ChunkOptions{ChunkSize: 4})
	require.NoError(t, err)
	chunk, next, err := reader.Next()
	require.NoError(t, err)
	require.NotEmpty(t, chunk)

	flat := append([]ClusterRecord(nil), chunk...)
	for _, rest := range readAll(t, table, ChunkOptions{Start: next, ChunkSize: 100}) {
		flat = append(flat, rest...)
	}
	assert.Equal(t, table.Records, flat)
}

func TestChunkReaderEmptyTable(t *testing.T) {
	reader, err := NewChunkReader(&MemoryTable{}, ChunkOptions{ChunkSize: 10})
	require.NoError(t, err)
	_, _, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSelectEventRange(t *testing.T) {
	records := makeTable(1, 2, 2, 3, 5, 5, 8).Records
	two := int64(2)
	five := int64(5)

	selected := SelectEventRange(records, &two, &five)
	assert.Equal(t, []int64{2, 2, 3}, eventNumbers(selected))

	selected = SelectEventRange(records, nil, &five)
	assert.Equal(t, []int64{1, 2, 2, 3}, eventNumbers(selected))

	selected = SelectEventRange(records, &five, nil)
	assert.Equal(t, []int64{5, 5, 8}, eventNumbers(selected))

	nine := int64(9)
	assert.Nil(t, SelectEventRange(records, &nine, nil))
}
