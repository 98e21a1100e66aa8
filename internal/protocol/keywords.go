package protocol

import "sync"

// keywordCache interns keyword strings so configurations share storage.
// Keys are full strings; two distinct keywords never collapse into one.
var keywordCache sync.Map

// InternKeyword returns the canonical instance of kw.
func InternKeyword(kw string) string {
	if v, ok := keywordCache.Load(kw); ok {
		return v.(string)
	}
	v, _ := keywordCache.LoadOrStore(kw, kw)
	return v.(string)
}

// InternKeywords interns every element of kws into a new slice.
func InternKeywords(kws []string) []string {
	out := make([]string, len(kws))
	for i, kw := range kws {
		out[i] = InternKeyword(kw)
	}
	return out
}
