package dispatch

import "strings"

// Path identifies a route: a method and a path template such as
// "/users/:id". Two paths are equal only when both fields match exactly.
type Path struct {
	Method   Method
	Template string
}

// NewPath returns the Path for m and template.
func NewPath(m Method, template string) Path {
	return Path{Method: m, Template: template}
}

func (p Path) String() string { return string(p.Method) + " " + p.Template }

// normalized returns p with a leading slash on its template.
func (p Path) normalized() Path {
	p.Template = normalizeTemplate(p.Template)
	return p
}

func normalizeTemplate(template string) string {
	if !strings.HasPrefix(template, "/") {
		return "/" + template
	}
	return template
}

// displayPath converts a template to its documented form: ":id" segments
// become "{id}" and empty segments are dropped.
func displayPath(template string) string {
	var b strings.Builder
	for part := range strings.SplitSeq(template, "/") {
		switch {
		case strings.HasPrefix(part, ":"):
			b.WriteString("/{" + part[1:] + "}")
		case part != "":
			b.WriteString("/" + part)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// matchTemplate reports whether path satisfies template, binding each
// ":name" segment. Literal segments must match exactly and segment counts
// must agree; a placeholder never matches an empty segment.
func matchTemplate(template, path string) (map[string]string, bool) {
	tparts := strings.Split(strings.Trim(template, "/"), "/")
	pparts := strings.Split(strings.Trim(path, "/"), "/")
	if len(tparts) != len(pparts) {
		return nil, false
	}

	var params map[string]string
	for i, tp := range tparts {
		if strings.HasPrefix(tp, ":") {
			if pparts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[tp[1:]] = pparts[i]
			continue
		}
		if tp != pparts[i] {
			return nil, false
		}
	}
	return params, true
}

// literalSegments counts the non-placeholder segments of a template.
func literalSegments(template string) int {
	n := 0
	for part := range strings.SplitSeq(strings.Trim(template, "/"), "/") {
		if !strings.HasPrefix(part, ":") {
			n++
		}
	}
	return n
}
