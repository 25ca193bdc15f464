package runner

import (
	"path/filepath"

	"github.com/arthur-debert/basefmt/pkg/types"
)

// Rules builds a session for opts and explains the rules of each of
// opts.Paths
func Rules(opts Options) ([]types.RulesResult, []string, error) {
	s, err := NewSession(opts)
	if err != nil {
		return nil, nil, err
	}
	results := s.Rules(opts.Paths)
	return results, s.Warnings(), nil
}

// Rules reports, for each file, whether it is ignored or excluded and the
// rule set it resolves to, with the .editorconfig section that set each
// property. Files are not read, so they need not exist.
func (s *Session) Rules(files []string) []types.RulesResult {
	results := make([]types.RulesResult, 0, len(files))
	for _, path := range s.absolute(files) {
		dir := filepath.Dir(path)
		if s.ignore != nil {
			s.ignore.Preload(dir)
		}
		s.index.Preload(dir)

		res := types.RulesResult{
			Path:     s.display(path),
			Excluded: s.exclude.IsExcluded(path),
		}
		if s.ignore != nil {
			res.Ignored = s.ignore.IsIgnored(path)
		}
		res.Rules, res.Sources = s.index.Explain(path)

		s.logger.Debug().
			Str("path", path).
			Bool("ignored", res.Ignored).
			Bool("excluded", res.Excluded).
			Msg("Explained rules")

		results = append(results, res)
	}
	return results
}
