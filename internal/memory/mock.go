package memory

import "math/rand"

// MockCoordinates returns a randomized location around Lille, used by demo
// data and previews.
func MockCoordinates() *Coordinates {
	return &Coordinates{
		Latitude:  50.6292 + (rand.Float64()*0.6 - 0.3),
		Longitude: 3.0573 + (rand.Float64()*0.6 - 0.3),
	}
}

// MockMemories returns a fixed set of demo memories with bundled images,
// spanning several years so that grouping and "years ago" labels have
// something to show.
func MockMemories(owner string) []Memory {
	mk := func(moment, description, image string, star int, favourite bool) Memory {
		t, err := ParseMoment(moment)
		if err != nil {
			panic("mock moment must parse: " + moment)
		}
		m, err := New(owner, t, description, image, star, favourite, MockCoordinates())
		if err != nil {
			panic("mock memory must construct: " + err.Error())
		}
		return m
	}

	return []Memory{
		mk("20220301123456", "This is my description for memory #1.\nIt is a long description over multiple lines.", "landscape1.png", 0, true),
		mk("20220301163456", "This is my description for memory #2", "landscape2.png", 1, false),
		mk("20210302123456", "This is my description for memory #3", "landscape3.png", 2, true),
		mk("20210302163456", "This is my description for memory #4", "landscape4.png", 3, false),
		mk("20200303123456", "This is my description for memory #5", "landscape5.png", 4, true),
		mk("20190303163456", "This is my description for memory #6", "landscape6.png", 5, false),
	}
}
