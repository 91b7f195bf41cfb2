package search

import "strings"

// LikeEscape follows a LIKE operand built by ContainsPattern.
const LikeEscape = ` ESCAPE '\'`

// Plan is the SQL needed to evaluate a Query against the questions table,
// aliased as q. Rank is an expression where lower values sort first; callers
// aggregate it with MIN per question so that join fan-out over tags never
// yields duplicates.
type Plan struct {
	Joins    []string
	Where    string
	Args     []any
	Rank     string
	RankArgs []any
}

const (
	joinTags     = "JOIN question_tags qt ON qt.question_id = q.id JOIN tags t ON t.id = qt.tag_id"
	leftJoinTags = "LEFT JOIN question_tags qt ON qt.question_id = q.id LEFT JOIN tags t ON t.id = qt.tag_id"
	joinAuthors  = "JOIN users u ON u.id = q.user_id"
)

// Plan builds the joins, filter and ranking for q.
func (q Query) Plan() Plan {
	pattern := ContainsPattern(q.Term)

	switch q.Kind {
	case KindTag:
		return Plan{
			Joins:    []string{joinTags},
			Where:    "LOWER(t.name) LIKE ?" + LikeEscape,
			Args:     []any{pattern},
			Rank:     "CASE WHEN LOWER(t.name) = ? THEN 0 ELSE 1 END",
			RankArgs: []any{q.Term},
		}
	case KindAuthor:
		return Plan{
			Joins:    []string{joinAuthors},
			Where:    "LOWER(u.username) LIKE ?" + LikeEscape,
			Args:     []any{pattern},
			Rank:     "CASE WHEN LOWER(u.username) = ? THEN 0 ELSE 1 END",
			RankArgs: []any{q.Term},
		}
	case KindCollective:
		return Plan{
			Where: "LOWER(q.body) LIKE ?" + LikeEscape,
			Args:  []any{pattern},
			Rank:  "0",
		}
	case KindKeyword:
		return Plan{
			Joins: []string{leftJoinTags},
			Where: "(LOWER(q.title) LIKE ?" + LikeEscape +
				" OR LOWER(q.body) LIKE ?" + LikeEscape +
				" OR LOWER(q.description) LIKE ?" + LikeEscape +
				" OR LOWER(t.name) LIKE ?" + LikeEscape + ")",
			Args: []any{pattern, pattern, pattern, pattern},
			Rank: "CASE WHEN LOWER(q.title) = ? THEN 0" +
				" WHEN LOWER(t.name) = ? THEN 1" +
				" WHEN LOWER(q.title) LIKE ?" + LikeEscape + " THEN 2" +
				" WHEN LOWER(t.name) LIKE ?" + LikeEscape + " THEN 3" +
				" ELSE 4 END",
			RankArgs: []any{q.Term, q.Term, pattern, pattern},
		}
	default:
		return Plan{Rank: "0"}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern wraps term for a LIKE substring match, escaping wildcards.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
