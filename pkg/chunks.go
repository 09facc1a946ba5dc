package merger

import (
	"fmt"
	"io"
	"sort"
)

const DefaultChunkSize = 10000000

// ChunkOptions configures a ChunkReader. StartEventNumber/StopEventNumber
// restrict the produced records to start <= event_number < stop. Start/Stop
// restrict the table row range that is read at all; Start can be used to
// resume reading where a previous pass left off.
type ChunkOptions struct {
	StartEventNumber *int64
	StopEventNumber  *int64
	Start            int64
	Stop             *int64
	ChunkSize        int
	TrySpeedup       bool
}

// ChunkReader iterates an event-ordered cluster table in chunks of up to
// ChunkSize records. A chunk never ends in the middle of an event: the last
// event number of one chunk is strictly smaller than the first event number
// of the next. The reader is forward-only and not restartable.
type ChunkReader struct {
	table      ClusterTable
	startEvent *int64
	stopEvent  *int64
	startIndex int64
	stopIndex  int64
	chunkSize  int
	single     bool
	done       bool
}

func NewChunkReader(table ClusterTable, options ChunkOptions) (*ChunkReader, error) {
	chunkSize := options.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	startIndex := options.Start
	if startIndex < 0 {
		startIndex = 0
	}
	stopIndex := table.NRows()
	if options.Stop != nil && *options.Stop < stopIndex {
		stopIndex = *options.Stop
	}

	// If the table carries an event-number index, seek directly to the
	// first eligible record. This only works when the event number is
	// actually present in the data, otherwise the linear scan below takes
	// care of the bounds.
	startKnown, stopKnown := false, false
	if options.TrySpeedup {
		if searcher, ok := table.(EventSearcher); ok {
			if options.StartEventNumber != nil {
				index, found, err := searcher.SearchEvent(*options.StartEventNumber, startIndex, stopIndex)
				if err != nil {
					return nil, err
				}
				if found {
					startIndex = index
					startKnown = true
				}
			}
			if options.StopEventNumber != nil {
				index, found, err := searcher.SearchEvent(*options.StopEventNumber, startIndex, stopIndex)
				if err != nil {
					return nil, err
				}
				if found {
					stopIndex = index
					stopKnown = true
				}
			}
		}
	}

	reader := &ChunkReader{
		table:      table,
		startEvent: options.StartEventNumber,
		stopEvent:  options.StopEventNumber,
		startIndex: startIndex,
		stopIndex:  stopIndex,
		chunkSize:  chunkSize,
	}
	// Both bounds resolved and everything fits into one buffer: a single
	// read is enough.
	if startKnown && stopKnown && startIndex+int64(chunkSize) >= stopIndex {
		reader.single = true
	}
	return reader, nil
}

// Next returns the next chunk and the table index of the first row not yet
// consumed. It returns io.EOF when the table is exhausted.
func (r *ChunkReader) Next() ([]ClusterRecord, int64, error) {
	if r.done {
		return nil, r.startIndex, io.EOF
	}
	if r.single {
		r.done = true
		rows, err := r.table.ReadRows(r.startIndex, r.stopIndex)
		if err != nil {
			return nil, r.startIndex, err
		}
		r.startIndex = r.stopIndex
		if len(rows) == 0 {
			return nil, r.stopIndex, io.EOF
		}
		return rows, r.stopIndex, nil
	}

	for r.startIndex < r.stopIndex {
		// Read one record more than the chunk size so that the position
		// of the last (possibly incomplete) event is known.
		requested := min(r.startIndex+int64(r.chunkSize)+1, r.stopIndex)
		src, err := r.table.ReadRows(r.startIndex, requested)
		if err != nil {
			return nil, r.startIndex, err
		}
		if len(src) == 0 {
			break
		}
		firstEvent := src[0].EventNumber
		lastEvent := src[len(src)-1].EventNumber

		if r.startEvent != nil && lastEvent < *r.startEvent {
			// Everything read is below the requested event range.
			r.startIndex += int64(len(src))
			continue
		}

		var nrows int
		if int64(len(src)) < requested-r.startIndex {
			// The table (or the stop index) was reached, the last event
			// is complete.
			nrows = len(src)
		} else if lastEventStart := firstIndexOfLastEvent(src); lastEventStart == 0 {
			// One event fills the whole buffer. Keep reading until the
			// event ends and emit it as an oversized chunk.
			src, err = r.extendEventRun(src)
			if err != nil {
				return nil, r.startIndex, err
			}
			nrows = len(src)
			if nrows > 1 && logger != nil {
				message := fmt.Sprintf("Event %d does not fit into chunk size %d, emitting %d records in one chunk", firstEvent, r.chunkSize, nrows)
				logger.Info(message, "chunks")
			}
		} else {
			// Cut before the first record of the last event, it may
			// continue in the next read.
			nrows = lastEventStart
		}

		chunk := src[:nrows]
		r.startIndex += int64(nrows)
		if r.stopEvent != nil {
			cut := sort.Search(len(chunk), func(k int) bool {
				return chunk[k].EventNumber >= *r.stopEvent
			})
			if cut < len(chunk) {
				// Rows at and past the stop event stay unconsumed, a
				// later reader resuming at the returned index still
				// sees them.
				r.startIndex -= int64(len(chunk) - cut)
				chunk = chunk[:cut]
				r.done = true
			} else if lastEvent >= *r.stopEvent {
				// Events are sorted, nothing past the stop event is
				// needed.
				r.done = true
			}
		}
		next := r.startIndex
		if r.startEvent != nil {
			chunk = SelectEventRange(chunk, r.startEvent, nil)
		}
		if len(chunk) == 0 {
			if r.done {
				break
			}
			continue
		}
		return chunk, next, nil
	}
	r.done = true
	return nil, r.startIndex, io.EOF
}

// extendEventRun grows a buffer that holds a single event until the event is
// complete. The result no longer aliases table memory.
func (r *ChunkReader) extendEventRun(src []ClusterRecord) ([]ClusterRecord, error) {
	event := src[0].EventNumber
	run := append([]ClusterRecord(nil), src...)
	for {
		start := r.startIndex + int64(len(run))
		if start >= r.stopIndex {
			return run, nil
		}
		more, err := r.table.ReadRows(start, min(start+int64(r.chunkSize), r.stopIndex))
		if err != nil {
			return nil, err
		}
		if len(more) == 0 {
			return run, nil
		}
		for k := range more {
			if more[k].EventNumber != event {
				return append(run, more[:k]...), nil
			}
		}
		run = append(run, more...)
	}
}

func firstIndexOfLastEvent(records []ClusterRecord) int {
	last := records[len(records)-1].EventNumber
	for i := len(records) - 1; i > 0; i-- {
		if records[i-1].EventNumber != last {
			return i
		}
	}
	return 0
}

// SelectEventRange returns the rows of a sorted record array whose event
// number lies in [startEvent, stopEvent). Nil bounds are open.
func SelectEventRange(records []ClusterRecord, startEvent, stopEvent *int64) []ClusterRecord {
	lo := 0
	if startEvent != nil {
		lo = sort.Search(len(records), func(i int) bool {
			return records[i].EventNumber >= *startEvent
		})
	}
	hi := len(records)
	if stopEvent != nil {
		hi = sort.Search(len(records), func(i int) bool {
			return records[i].EventNumber >= *stopEvent
		})
	}
	if lo >= hi {
		return nil
	}
	return records[lo:hi]
}
