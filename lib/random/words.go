package random

import (
	"strings"

	"github.com/go-loremipsum/loremipsum"
)

var gen = loremipsum.New()

func Word() string {
	return gen.Word()
}

// BranchName returns random branch name like "lorem-ipsum"
func BranchName(r []int) string {
	a := []string{}
	n := Value(r)
	for x := 0; x < n; x++ {
		a = append(a, strings.ToLower(Word()))
	}
	return strings.Join(a, "-")
}
