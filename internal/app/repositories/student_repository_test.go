package repositories

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchSQL(t *testing.T, filter StudentSearchFilter) (string, []interface{}) {
	t.Helper()
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := buildSearchQuery(sb, filter).ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestBuildSearchQuery_NoFilters(t *testing.T) {
	sql, args := searchSQL(t, StudentSearchFilter{})

	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "FROM students")
	assert.Contains(t, sql, "ORDER BY last_name, first_name")
	assert.Empty(t, args)
}

func TestBuildSearchQuery_NameMatchesEitherName(t *testing.T) {
	sql, args := searchSQL(t, StudentSearchFilter{Name: "yil"})

	assert.Contains(t, sql, "first_name ILIKE $1")
	assert.Contains(t, sql, "last_name ILIKE $2")
	assert.Contains(t, sql, " OR ")
	assert.Equal(t, []interface{}{"%yil%", "%yil%"}, args)
}

func TestBuildSearchQuery_AllFiltersCombinedWithAnd(t *testing.T) {
	minGPA := 3.0
	active := true
	minCourses := 2

	sql, args := searchSQL(t, StudentSearchFilter{
		Name:       "ada",
		Department: "Computer Science",
		MinGPA:     &minGPA,
		Active:     &active,
		MinCourses: &minCourses,
	})

	assert.Contains(t, sql, "department = $3")
	assert.Contains(t, sql, "gpa >= $4")
	assert.Contains(t, sql, "is_active = $5")
	assert.Contains(t, sql, "jsonb_array_length(courses) >= $6")
	assert.Equal(t, []interface{}{"%ada%", "%ada%", "Computer Science", 3.0, true, 2}, args)
}

func TestBuildSearchQuery_EscapesLikeWildcards(t *testing.T) {
	_, args := searchSQL(t, StudentSearchFilter{Name: "100%"})
	assert.Equal(t, []interface{}{`%100\%%`, `%100\%%`}, args)

	_, args = searchSQL(t, StudentSearchFilter{Name: `o_brien\`})
	assert.Equal(t, []interface{}{`%o\_brien\\%`, `%o\_brien\\%`}, args)
}

func TestBuildSearchQuery_InactiveOnly(t *testing.T) {
	active := false
	sql, args := searchSQL(t, StudentSearchFilter{Active: &active})

	assert.Contains(t, sql, "is_active = $1")
	assert.Equal(t, []interface{}{false}, args)
}
