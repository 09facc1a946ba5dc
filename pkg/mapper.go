package merger

// MapCluster left-joins cluster rows onto a reference array of event
// numbers. Row i of the result holds the first cluster of events[i] if that
// event exists in cluster, otherwise a zero row (mean column = mean row =
// charge = 0). Both inputs must be sorted by event number; the walk is
// O(len(events) + len(cluster)).
func MapCluster(events []int64, cluster []ClusterRecord) ([]ClusterRecord, error) {
	if err := checkSorted("events", events); err != nil {
		return nil, err
	}
	if err := checkSortedRecords("cluster", cluster); err != nil {
		return nil, err
	}
	mapped := make([]ClusterRecord, len(events))
	j := 0
	for i, event := range events {
		for j < len(cluster) && cluster[j].EventNumber < event {
			j++
		}
		if j < len(cluster) && cluster[j].EventNumber == event {
			mapped[i] = cluster[j]
		}
	}
	return mapped, nil
}

func checkSortedRecords(name string, records []ClusterRecord) error {
	for i := 1; i < len(records); i++ {
		if records[i].EventNumber < records[i-1].EventNumber {
			return &ErrNotSorted{Name: name}
		}
	}
	return nil
}

func eventNumbers(records []ClusterRecord) []int64 {
	events := make([]int64, len(records))
	for i, record := range records {
		events[i] = record.EventNumber
	}
	return events
}
