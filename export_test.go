package dispatch

// Exported for tests.
var (
	MatchTemplate     = matchTemplate
	DisplayPath       = displayPath
	NormalizeTemplate = normalizeTemplate
	LiteralSegments   = literalSegments
)

func (s *Server) Match(m Method, path string) (string, map[string]string, bool) {
	return s.match(m, path)
}
