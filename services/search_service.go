package services

import (
	"strings"
	"unicode/utf8"

	"github.com/shredstack/fuel-rx-sub006/logger"
	"github.com/shredstack/fuel-rx-sub006/models"
	"github.com/shredstack/fuel-rx-sub006/utils"

	"golang.org/x/sync/errgroup"
)

type externalSearcher interface {
	Search(query string, limit int) ([]ExternalCandidate, int, error)
}

// SearchService resolves a free-text food query against the local catalog
// and the external nutrition database.
type SearchService struct {
	catalog  *CatalogService
	external externalSearcher
}

func NewSearchService(catalog *CatalogService, external externalSearcher) *SearchService {
	return &SearchService{catalog: catalog, external: external}
}

// SearchResult is the merged answer for one query.
type SearchResult struct {
	Local         []models.Ingredient
	External      []RankedCandidate
	ExternalTotal int
}

// Search normalizes the query, then runs the local catalog search and the
// external search/ranking chain concurrently and merges the results.
// External failures degrade to local-only results; the request only fails
// when every source fails.
func (s *SearchService) Search(rawQuery string, includeExternal bool, externalLimit int) (*SearchResult, error) {
	result := &SearchResult{Local: []models.Ingredient{}, External: []RankedCandidate{}}

	// Sub-2-character queries are answered empty without touching any
	// collaborator.
	if utf8.RuneCountInString(strings.TrimSpace(rawQuery)) < 2 {
		return result, nil
	}

	cleaned, tokens := NormalizeQuery(rawQuery)
	if len(tokens) == 0 {
		return result, nil
	}

	var (
		localErr    error
		externalErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		result.Local, err = s.catalog.SearchLocal(tokens)
		if err != nil {
			localErr = err
			result.Local = []models.Ingredient{}
		}
		return nil
	})
	if includeExternal {
		g.Go(func() error {
			ranked, total, err := s.searchExternal(cleaned, tokens, externalLimit)
			if err != nil {
				externalErr = err
				return nil
			}
			result.External = ranked
			result.ExternalTotal = total
			return nil
		})
	}
	g.Wait()

	if localErr != nil {
		// Local-only requests have no other source to degrade to; with
		// external requested, the request only fails when both sources fail.
		if !includeExternal || externalErr != nil {
			return nil, localErr
		}
		logger.Warn("Local catalog search failed, serving external results only", "query", cleaned, "error", localErr)
	}
	if externalErr != nil {
		logger.Warn("External search unavailable, serving local results only", "query", cleaned, "error", externalErr)
	}

	// Dedup against already-imported ids runs after ranking so ranking
	// order is stable regardless of import history.
	if len(result.External) > 0 {
		ids := make([]string, 0, len(result.External))
		for _, c := range result.External {
			ids = append(ids, c.ExternalID)
		}
		imported, err := s.catalog.ExistingExternalIDs(ids)
		if err != nil {
			logger.Warn("Imported-id lookup failed, skipping dedup", "error", err)
		} else {
			result.External = FilterImported(result.External, imported)
		}
	}

	for i := range result.External {
		c := &result.External[i]
		a := utils.ScoreFoodHealth(
			utils.ClassifyDataTier(c.DataType),
			c.IngredientsText,
			utils.MacroSample{Protein: c.Protein, Fiber: c.Fiber, Sugar: c.Sugar},
		)
		c.HealthScore = a.Score
		c.Category = a.Category
	}

	return result, nil
}

// searchExternal runs the primary query, then, when the top score is weak
// and the query has at least two tokens, up to MaxFallbackQueries relaxed
// queries in sequence. An improving fallback has its results prepended to
// the original list; the chain stops at the first improvement.
func (s *SearchService) searchExternal(cleaned string, tokens []string, limit int) ([]RankedCandidate, int, error) {
	candidates, total, err := s.external.Search(cleaned, limit)
	if err != nil {
		return nil, 0, err
	}
	ranked := RankCandidates(tokens, candidates)

	best := TopScore(ranked)
	if best >= FuzzyThreshold || len(tokens) < 2 {
		return DedupeByExternalID(ranked), total, nil
	}

	attempts := 0
	for i, fq := range FallbackQueries(tokens) {
		if attempts >= MaxFallbackQueries {
			break
		}
		attempts++

		fbCandidates, _, err := s.external.Search(fq, limit)
		if err != nil {
			logger.Warn("Fallback query failed", "query", fq, "error", err)
			continue
		}

		fbTokens := append(append([]string{}, tokens[:i]...), tokens[i+1:]...)
		fbRanked := RankCandidates(fbTokens, fbCandidates)
		if TopScore(fbRanked) > best {
			ranked = DedupeByExternalID(append(fbRanked, ranked...))
			break
		}
	}

	return DedupeByExternalID(ranked), total, nil
}
