package lib

import "fmt"

// Assert panics when the condition is not met.
// The params may be:
// - error
// - bool, string
func Assert(params ...interface{}) {
	cond := params[0]
	if cond == nil {
		return
	}

	switch v := cond.(type) {
	case error:
		panic(v)
	case bool:
		if v {
			return
		}
		msg := "assertion failed"
		if len(params) > 1 {
			msg = fmt.Sprint(params[1:]...)
		}
		panic(msg)
	}

	panic(cond)
}
