package merger

import (
	"golang.org/x/exp/slices"
)

// Set-style operations over sorted event-number arrays. All of them exploit
// sortedness with a two-pointer merge scan and run in O(|one| + |two|).
// Duplicate event numbers are allowed, the inputs only have to be
// non-decreasing.

func checkSorted(name string, events []int64) error {
	if !slices.IsSorted(events) {
		return &ErrNotSorted{Name: name}
	}
	return nil
}

// InEvents returns a mask over one: mask[i] is true iff one[i] appears
// anywhere in two.
func InEvents(one, two []int64) ([]bool, error) {
	if err := checkSorted("one", one); err != nil {
		return nil, err
	}
	if err := checkSorted("two", two); err != nil {
		return nil, err
	}
	mask := make([]bool, len(one))
	j := 0
	for i, event := range one {
		for j < len(two) && two[j] < event {
			j++
		}
		mask[i] = j < len(two) && two[j] == event
	}
	return mask, nil
}

// EventsInBoth returns the event numbers present in both arrays, ascending.
// The result is duplicate-free only if the inputs were duplicate-free. An
// empty result is valid.
func EventsInBoth(one, two []int64) ([]int64, error) {
	if err := checkSorted("one", one); err != nil {
		return nil, err
	}
	if err := checkSorted("two", two); err != nil {
		return nil, err
	}
	result := make([]int64, len(one))
	count := eventsInBoth(one, two, result)
	return result[:count], nil
}

func eventsInBoth(one, two, result []int64) int {
	i, j, count := 0, 0, 0
	for i < len(one) && j < len(two) {
		switch {
		case one[i] < two[j]:
			i++
		case two[j] < one[i]:
			j++
		default:
			result[count] = one[i]
			count++
			i++
			j++
		}
	}
	return count
}

// MaxEventsInBoth returns the sorted, duplicate-free set of event numbers
// that appear in either array. The result buffer is pre-sized to the upper
// bound |one| + |two| and truncated to the actual element count, so callers
// can use len(result) to size merge buffers.
func MaxEventsInBoth(one, two []int64) ([]int64, error) {
	if err := checkSorted("one", one); err != nil {
		return nil, err
	}
	if err := checkSorted("two", two); err != nil {
		return nil, err
	}
	result := make([]int64, len(one)+len(two))
	count := maxEventsInBoth(one, two, result)
	return result[:count], nil
}

func maxEventsInBoth(one, two, result []int64) int {
	i, j, count := 0, 0, 0
	push := func(event int64) {
		if count > 0 && result[count-1] == event {
			return
		}
		result[count] = event
		count++
	}
	for i < len(one) && j < len(two) {
		switch {
		case one[i] < two[j]:
			push(one[i])
			i++
		case two[j] < one[i]:
			push(two[j])
			j++
		default:
			push(one[i])
			i++
			j++
		}
	}
	for ; i < len(one); i++ {
		push(one[i])
	}
	for ; j < len(two); j++ {
		push(two[j])
	}
	return count
}

// uniqueEvents returns the distinct values of a sorted array.
func uniqueEvents(events []int64) []int64 {
	result := make([]int64, 0, len(events))
	for i, event := range events {
		if i > 0 && events[i-1] == event {
			continue
		}
		result = append(result, event)
	}
	return result
}
