package dbutil

import (
	"regexp"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
)

var limitRegex = regexp.MustCompile(`(?i)LIMIT\s+\?\s*,\s*\?`)

// Finalize turns a gendry statement into postgres form: "LIMIT ?,?" becomes
// "LIMIT ? OFFSET ?" and placeholders are rebound to $n.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	loc := limitRegex.FindStringIndex(query)
	if loc != nil {
		prefix := query[:loc[0]]
		qCount := strings.Count(prefix, "?")
		if qCount+1 < len(args) {
			args[qCount], args[qCount+1] = args[qCount+1], args[qCount]
			query = limitRegex.ReplaceAllString(query, "LIMIT ? OFFSET ?")
		}
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

func BuildSelect(table string, where map[string]interface{}, fields []string) (string, []interface{}, error) {
	sqlStr, args, err := builder.BuildSelect(table, where, fields)
	if err != nil {
		return "", nil, err
	}
	sqlStr, args = Finalize(sqlStr, args)
	return sqlStr, args, nil
}

// InValues adapts a string slice for a gendry "col in" condition.
func InValues(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
