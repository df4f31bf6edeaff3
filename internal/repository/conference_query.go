package repository

import (
	"fmt"
	"strings"

	"github.com/iliyamo/conference-central/internal/query"
)

var conferenceColumnsByField = map[string]string{
	query.FieldCity:         "c.city",
	query.FieldMonth:        "c.month",
	query.FieldMaxAttendees: "c.max_attendees",
	query.FieldName:         "c.name",
}

var sqlOperators = map[query.Operator]string{
	query.OpEQ:   "=",
	query.OpGT:   ">",
	query.OpGTEQ: ">=",
	query.OpLT:   "<",
	query.OpLTEQ: "<=",
	query.OpNE:   "<>",
}

// buildConferenceQuery renders a compiled plan as a SELECT over conferences.
// Topics are multi-valued: a topic predicate matches when any of the
// conference's topics satisfies it, and sorting by topics uses the smallest
// topic.  The conference id is the final tiebreak so results are stable.
func buildConferenceQuery(plan query.Plan) (string, []any, error) {
	where := []string{}
	args := []any{}

	for _, p := range plan.Predicates {
		op, ok := sqlOperators[p.Operator]
		if !ok {
			return "", nil, fmt.Errorf("operator %q: %w", p.Operator, query.ErrInvalidFilter)
		}
		if p.Field == query.FieldTopics {
			where = append(where, "EXISTS (SELECT 1 FROM conference_topics t WHERE t.conference_id = c.id AND t.topic "+op+" ?)")
			args = append(args, p.Value)
			continue
		}
		col, ok := conferenceColumnsByField[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("field %q: %w", p.Field, query.ErrInvalidFilter)
		}
		where = append(where, col+" "+op+" ?")
		args = append(args, p.Value)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	order := make([]string, 0, len(plan.Order)+1)
	for _, f := range plan.Order {
		if f == query.FieldTopics {
			order = append(order, "(SELECT MIN(t.topic) FROM conference_topics t WHERE t.conference_id = c.id) ASC")
			continue
		}
		col, ok := conferenceColumnsByField[f]
		if !ok {
			return "", nil, fmt.Errorf("order %q: %w", f, query.ErrInvalidFilter)
		}
		order = append(order, col+" ASC")
	}
	order = append(order, "c.id ASC")

	q := `SELECT ` + conferenceColumns + `
		FROM conferences c
		WHERE ` + cond + `
		ORDER BY ` + strings.Join(order, ", ")
	return q, args, nil
}
