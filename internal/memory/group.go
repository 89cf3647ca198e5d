package memory

import "sort"

// GroupByYear buckets memories by the calendar year of their moment,
// preserving the relative input order within each bucket.
func GroupByYear(memories []Memory) map[int][]Memory {
	result := make(map[int][]Memory)
	for _, m := range memories {
		year := m.Year()
		result[year] = append(result[year], m)
	}
	return result
}

// YearsDescending returns the distinct years present in memories, sorted
// most-recent-first.
func YearsDescending(memories []Memory) []int {
	grouped := GroupByYear(memories)
	years := make([]int, 0, len(grouped))
	for y := range grouped {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
