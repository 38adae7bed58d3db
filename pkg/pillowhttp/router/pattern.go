package router

import "regexp"

// paramToken and splatToken implement the one-pass textual rewrite of a
// path template into an anchored regular expression: ":name" becomes a
// path-component capture, "*name" becomes a greedy "rest of the path"
// capture.
var (
	paramToken = regexp.MustCompile(`:(\w+)`)
	splatToken = regexp.MustCompile(`\*(\w+)`)
)

// compilePattern translates a path template into an anchored
// *regexp.Regexp plus the names of its captures: every ":name"
// placeholder (in source order), then every "*name" placeholder (in
// source order). Dispatch binds the i-th name to the i-th capture group,
// and the groups are numbered by their position in the template, so the
// two orders coincide only when no "*name" precedes a ":name".
func compilePattern(path string) (*regexp.Regexp, []string, error) {
	var paramNames []string
	for _, m := range paramToken.FindAllStringSubmatch(path, -1) {
		paramNames = append(paramNames, m[1])
	}
	rewritten := paramToken.ReplaceAllString(path, `([\w_-]+)`)

	for _, m := range splatToken.FindAllStringSubmatch(path, -1) {
		paramNames = append(paramNames, m[1])
	}
	rewritten = splatToken.ReplaceAllString(rewritten, `(.*)`)

	compiled, err := regexp.Compile("^" + rewritten + "$")
	if err != nil {
		return nil, nil, err
	}
	return compiled, paramNames, nil
}
