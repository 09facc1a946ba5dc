package merger

import (
	"fmt"
	"math"
)

type DistanceMetric int

const (
	DistancePerAxis DistanceMetric = iota
	DistanceEuclidean
)

// AlignmentConfig are the hyperparameters of the event alignment fix. Error
// is the position tolerance below which a reference/secondary pair counts as
// correlated. Zero fields are replaced by the defaults.
type AlignmentConfig struct {
	Error                  float64
	NBadEvents             int
	NGoodEvents            int
	CorrelationSearchRange int
	GoodEventsSearchRange  int
	Metric                 DistanceMetric
}

func DefaultAlignmentConfig() AlignmentConfig {
	return AlignmentConfig{
		Error:                  3.0,
		NBadEvents:             5,
		NGoodEvents:            3,
		CorrelationSearchRange: 2000,
		GoodEventsSearchRange:  10,
	}
}

func (c AlignmentConfig) withDefaults() AlignmentConfig {
	defaults := DefaultAlignmentConfig()
	if c.Error == 0 {
		c.Error = defaults.Error
	}
	if c.NBadEvents == 0 {
		c.NBadEvents = defaults.NBadEvents
	}
	if c.NGoodEvents == 0 {
		c.NGoodEvents = defaults.NGoodEvents
	}
	if c.CorrelationSearchRange == 0 {
		c.CorrelationSearchRange = defaults.CorrelationSearchRange
	}
	if c.GoodEventsSearchRange == 0 {
		c.GoodEventsSearchRange = defaults.GoodEventsSearchRange
	}
	return c
}

type correlationStatus int

const (
	statusCorrelated correlationStatus = iota
	statusSearching
)

// correlationState is the per-stream automaton state. It lives for one
// corrector pass and is discarded afterwards, only the correlation mask and
// the fix count survive.
type correlationState struct {
	status          correlationStatus
	badStreak       int
	goodStreak      int
	candidateOffset int
	lossIndex       int
}

type matchResult int

const (
	matchNoOpinion matchResult = iota
	matchAgree
	matchDisagree
)

type corrector struct {
	eventNumbers []int64
	refColumn    []float64
	column       []float64
	refRow       []float64
	row          []float64
	refCharge    []uint16
	charge       []uint16
	config       AlignmentConfig
	state        correlationState
}

// FixEventAlignment detects and repairs a persistent event-numbering offset
// between a secondary DUT stream and the reference stream. The secondary
// column/row/charge arrays are modified in place. It returns a per-event
// correlation mask (true = trusted) and the number of corrected rows.
//
// Events are processed strictly in increasing order. While correlated,
// NBadEvents consecutive position mismatches (within config.Error) flag the
// loss of correlation back to the first mismatch of the streak and start the
// offset search. The search scans candidate offsets in increasing order up
// to CorrelationSearchRange; the first offset with NGoodEvents agreements
// inside a forward window of GoodEventsSearchRange events is accepted. The
// accepted offset is applied row by row from the recovery point on, each
// shifted row restoring its correlation flag, until the shifted source stops
// agreeing with the reference (the streams have realigned). A stream that
// never recovers stays flagged
// uncorrelated but keeps being searched, chance agreements later on can
// still trigger recovery.
//
// The result depends only on the inputs and the configuration and is
// bit-for-bit reproducible.
func FixEventAlignment(eventNumbers []int64, refColumn, column, refRow, row []float64,
	refCharge, charge []uint16, config AlignmentConfig) ([]bool, int, error) {
	n := len(eventNumbers)
	lengths := []struct {
		name string
		got  int
	}{
		{"refColumn", len(refColumn)},
		{"column", len(column)},
		{"refRow", len(refRow)},
		{"row", len(row)},
		{"refCharge", len(refCharge)},
		{"charge", len(charge)},
	}
	for _, l := range lengths {
		if l.got != n {
			return nil, 0, &ErrLengthMismatch{Name: l.name, Want: n, Got: l.got}
		}
	}

	c := &corrector{
		eventNumbers: eventNumbers,
		refColumn:    refColumn,
		column:       column,
		refRow:       refRow,
		row:          row,
		refCharge:    refCharge,
		charge:       charge,
		config:       config.withDefaults(),
		state:        correlationState{status: statusCorrelated, lossIndex: -1},
	}

	correlated := make([]bool, n)
	for i := range correlated {
		correlated[i] = true
	}

	nFixes := 0
	i := 0
	for i < n {
		switch c.state.status {
		case statusCorrelated:
			switch c.match(i, 0) {
			case matchNoOpinion:
				i++
			case matchAgree:
				c.state.badStreak = 0
				c.state.lossIndex = -1
				i++
			case matchDisagree:
				if c.state.badStreak == 0 {
					c.state.lossIndex = i
				}
				c.state.badStreak++
				if c.state.badStreak >= c.config.NBadEvents {
					for j := c.state.lossIndex; j <= i; j++ {
						correlated[j] = false
					}
					if logger != nil && configuration.Verbosity > 0 {
						message := fmt.Sprintf("Correlation lost at event %d", eventNumbers[c.state.lossIndex])
						logger.Info(message, "alignment")
					}
					c.state.status = statusSearching
					c.state.badStreak = 0
					// Search from the point of loss, the events of the
					// whole streak are candidates for shifting.
					i = c.state.lossIndex
				} else {
					i++
				}
			}
		case statusSearching:
			correlated[i] = false
			offset, ok := c.searchOffset(i)
			if !ok {
				i++
				continue
			}
			fixed := c.applyShift(i, offset, correlated)
			nFixes += fixed
			if logger != nil && configuration.Verbosity > 0 {
				message := fmt.Sprintf("Correlation recovered at event %d with offset %d, %d rows shifted",
					eventNumbers[i], offset, fixed)
				logger.Info(message, "alignment")
			}
			c.state = correlationState{status: statusCorrelated, lossIndex: -1}
			if fixed == 0 {
				// The window satisfied the threshold but the anchor row
				// itself disagrees under the accepted offset, or the offset
				// points past the end of the stream. Move on one event and
				// let the automaton re-evaluate.
				if c.match(i, 0) != matchDisagree {
					correlated[i] = true
				}
				i++
				continue
			}
			i += fixed
		}
	}
	return correlated, nFixes, nil
}

// match classifies the agreement between the reference at index i and the
// secondary stream at index i+offset. A zero position on either side means
// that plane saw no hit and yields no opinion.
func (c *corrector) match(i, offset int) matchResult {
	refColumn := c.refColumn[i]
	column := c.column[i+offset]
	if refColumn == 0 || column == 0 {
		return matchNoOpinion
	}
	dc := refColumn - column
	dr := c.refRow[i] - c.row[i+offset]
	if c.config.Metric == DistanceEuclidean {
		if dc*dc+dr*dr <= c.config.Error*c.config.Error {
			return matchAgree
		}
		return matchDisagree
	}
	if math.Abs(dc) <= c.config.Error && math.Abs(dr) <= c.config.Error {
		return matchAgree
	}
	return matchDisagree
}

// searchOffset scans candidate offsets in increasing order and accepts the
// first one that produces NGoodEvents agreements inside the forward window
// starting at anchor.
func (c *corrector) searchOffset(anchor int) (int, bool) {
	n := len(c.eventNumbers)
	for offset := 1; offset <= c.config.CorrelationSearchRange; offset++ {
		c.state.candidateOffset = offset
		c.state.goodStreak = 0
		for j := anchor; j < anchor+c.config.GoodEventsSearchRange && j+offset < n; j++ {
			if c.match(j, offset) == matchAgree {
				c.state.goodStreak++
				if c.state.goodStreak >= c.config.NGoodEvents {
					return offset, true
				}
			}
		}
	}
	return 0, false
}

// applyShift pulls the secondary stream forward by offset starting at start.
// Shifting stops once the shifted source stops agreeing with the reference,
// which marks the point where the streams realigned on their own. Rows where
// either plane saw no hit are shifted through. Every moved row counts as one
// fix.
func (c *corrector) applyShift(start, offset int, correlated []bool) int {
	n := len(c.eventNumbers)
	fixed := 0
	for i := start; i+offset < n; i++ {
		if c.match(i, offset) == matchDisagree {
			break
		}
		c.column[i] = c.column[i+offset]
		c.row[i] = c.row[i+offset]
		c.charge[i] = c.charge[i+offset]
		correlated[i] = true
		fixed++
	}
	return fixed
}

// ApplyAlignmentFix runs the event alignment fix for every secondary DUT of
// a merged tracklet table against DUT 0 and packs the per-DUT correlation
// bits into the track quality word. It returns the number of corrected rows
// per DUT; entry 0 is always zero since the reference is trivially
// correlated with itself.
func ApplyAlignmentFix(table *TrackletTable, config AlignmentConfig) ([]int, error) {
	nDuts := table.NDuts()
	if nDuts > MaxDuts {
		return nil, fmt.Errorf("tracklet table has %d DUTs, the track quality word fits %d", nDuts, MaxDuts)
	}
	fixes := make([]int, nDuts)
	if nDuts == 0 {
		return fixes, nil
	}
	for i := range table.TrackQuality {
		table.TrackQuality[i] = 0
		table.TrackQuality[i].SetCorrelated(0)
	}
	refCharge := chargeToUint16(table.Charges[0])
	for dut := 1; dut < nDuts; dut++ {
		charge := chargeToUint16(table.Charges[dut])
		correlated, nFixes, err := FixEventAlignment(table.EventNumbers,
			table.Columns[0], table.Columns[dut], table.Rows[0], table.Rows[dut],
			refCharge, charge, config)
		if err != nil {
			return nil, err
		}
		for i, value := range charge {
			table.Charges[dut][i] = float64(value)
		}
		for i, ok := range correlated {
			if ok {
				table.TrackQuality[i].SetCorrelated(dut)
			}
		}
		fixes[dut] = nFixes
		if logger != nil {
			message := fmt.Sprintf("Corrected %d places for DUT %d", nFixes, dut)
			logger.Info(message, "alignment")
		}
	}
	return fixes, nil
}

func chargeToUint16(charges []float64) []uint16 {
	result := make([]uint16, len(charges))
	for i, charge := range charges {
		result[i] = uint16(charge)
	}
	return result
}
