package database

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching s as a literal substring.
// Pair it with ESCAPE '\' in the query.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
