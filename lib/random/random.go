package random

import (
	"strconv"
	"time"

	"golang.org/x/exp/rand"
)

func init() {
	rand.Seed(uint64(time.Now().UnixNano()))
}

// Value returns random value in range of [a[0],a[1]]
func Value(a []int) int {
	m, n := a[0], a[1]
	return rand.Intn(n-m+1) + m
}

// Element returns random element of a
func Element[T any](a []T) T {
	return a[Value([]int{0, len(a) - 1})]
}

// AppID returns random numeric app id
func AppID() string {
	return strconv.Itoa(Value([]int{10, 3000000}))
}

// BuildIDs returns sequence of n build ids taken from pool of size ids.
// Small pool produces many repeated neighbours.
func BuildIDs(n, size int) []string {
	pool := make([]string, size)
	base := Value([]int{1000000, 9000000})
	for x := range pool {
		pool[x] = strconv.Itoa(base + x)
	}
	a := make([]string, n)
	for x := range a {
		a[x] = Element(pool)
	}
	return a
}
