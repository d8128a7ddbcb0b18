// Package dbx holds the pieces shared by the SQL repositories: the DBTX
// seam over *sql.DB and *sql.Tx, and the user attribute filter.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lborres/bantay/core"
)

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Placeholder renders the n-th (1-based) bind parameter
type Placeholder func(n int) string

func Question(int) string { return "?" }

func Dollar(n int) string { return "$" + strconv.Itoa(n) }

var userColumns = map[string]string{
	core.AttrID:         "id",
	core.AttrEmail:      "email",
	core.AttrFirstName:  "first_name",
	core.AttrLastName:   "last_name",
	core.AttrResetToken: "reset_token",
}

// UserFilter turns an attribute map into a WHERE clause. Attributes are
// emitted in sorted order so the query text is stable. An empty map yields
// an empty clause.
func UserFilter(attrs map[string]string, ph Placeholder) (string, []any, error) {
	if err := core.ValidateAttributes(attrs); err != nil {
		return "", nil, err
	}
	if len(attrs) == 0 {
		return "", nil, nil
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	conds := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for i, name := range names {
		conds = append(conds, fmt.Sprintf("%s = %s", userColumns[name], ph(i+1)))
		args = append(args, attrs[name])
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
