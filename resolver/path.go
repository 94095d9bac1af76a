package resolver

import (
	"strings"

	"xdao.co/nametree/record"
)

// SplitPath splits a slash-separated path into validated segments.
//
// Normalization rule: exactly one leading '/' is stripped, so "/a/b" and
// "a/b" resolve identically relative to the given root (a leading slash is
// not an implicit root jump). An empty path (or a bare "/") yields no
// segments. Any empty or malformed interior segment (e.g. from "//a" or
// "a//b") is a validation fault.
func SplitPath(path string) ([]string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, nil
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if err := record.CheckSegment(s); err != nil {
			return nil, err
		}
	}
	return segs, nil
}
