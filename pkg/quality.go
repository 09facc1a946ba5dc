package merger

// TrackQuality packs one correlation bit per DUT into a shared word. The
// bits live in the upper byte starting at bit 24, matching the layout of the
// tracklet table consumed by the track fitting downstream.
type TrackQuality uint32

const (
	correlationBitOffset = 24
	// MaxDuts is the number of correlation bits that fit into the word.
	MaxDuts = 8
)

// Correlated reports whether the position of the given DUT is trusted.
func (q TrackQuality) Correlated(dut int) bool {
	return q&(1<<(correlationBitOffset+dut)) != 0
}

// SetCorrelated marks the position of the given DUT as trusted.
func (q *TrackQuality) SetCorrelated(dut int) {
	*q |= 1 << (correlationBitOffset + dut)
}

// ClearCorrelated marks the position of the given DUT as not trusted.
func (q *TrackQuality) ClearCorrelated(dut int) {
	*q &^= 1 << (correlationBitOffset + dut)
}
