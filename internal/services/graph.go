package services

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/academicworld-backend/internal/apperr"
	"github.com/yungbote/academicworld-backend/internal/db"
	"github.com/yungbote/academicworld-backend/internal/logger"
	"github.com/yungbote/academicworld-backend/internal/normalization"
	"github.com/yungbote/academicworld-backend/internal/types"
)

type GraphService interface {
	KeywordRelevantCitation(ctx context.Context, keyword string) ([]types.InstituteKRC, error)
}

type graphService struct {
	neo4jService *db.Neo4jService
	log          *logger.Logger
}

func NewGraphService(neo4jService *db.Neo4jService, baseLog *logger.Logger) GraphService {
	serviceLog := baseLog.With("service", "GraphService")
	return &graphService{neo4jService: neo4jService, log: serviceLog}
}

// KeywordRelevantCitation computes the top 10 institutes by KRC for one
// keyword. The aggregation is two-level: first each faculty member's sum of
// label score times publication citations over their matching publications,
// then the per-institute sum across faculty. Collapsing it to a single
// group-by would drop the per-faculty accumulation when one person has
// several matching publications.
func (gs *graphService) KeywordRelevantCitation(ctx context.Context, keyword string) ([]types.InstituteKRC, error) {
	normalized := normalization.ParseInputString(keyword)
	if normalized == "" {
		return nil, apperr.Newf(apperr.CodeValidation, "keyword required")
	}

	session := gs.neo4jService.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: gs.neo4jService.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, `
MATCH (faculty:FACULTY)-[:PUBLISH]->(p:PUBLICATION)-[l:LABEL_BY]->(k:KEYWORD)
WHERE toLower(k.name) = $keyword
MATCH (faculty)-[:AFFILIATION_WITH]->(univ:INSTITUTE)
WITH faculty, univ, SUM(toFloat(l.score) * toInteger(p.numCitations)) AS accumulated_citation
WITH univ.name AS university, SUM(accumulated_citation) AS totalKRC
RETURN university, totalKRC
ORDER BY totalKRC DESC
LIMIT 10
`, map[string]any{"keyword": normalized})
		if err != nil {
			return nil, err
		}

		rows := make([]types.InstituteKRC, 0, 10)
		for records.Next(ctx) {
			record := records.Record()
			university, _ := record.Get("university")
			total, _ := record.Get("totalKRC")
			name, ok := university.(string)
			if !ok {
				continue
			}
			rows = append(rows, types.InstituteKRC{
				University: name,
				TotalKRC:   asFloat(total),
			})
		}
		if err := records.Err(); err != nil {
			return nil, err
		}
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("krc query: %w", err)
	}
	return result.([]types.InstituteKRC), nil
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
