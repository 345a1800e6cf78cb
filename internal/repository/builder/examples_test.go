package builder_test

import (
	"fmt"

	"github.com/locvowork/xlsxsplit/internal/repository/builder"
)

// Example_insert records a split job.
func Example_insert() {
	qb := builder.NewSQLBuilder().
		Insert("split_jobs", "id", "file_name", "mode").
		Values("5b1c", "sales.xlsx", "union")

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: INSERT INTO split_jobs (id, file_name, mode) VALUES ($1, $2, $3)
	// Args: [5b1c sales.xlsx union]
}

// Example_history lists recent failed jobs of one mode.
func Example_history() {
	qb := builder.NewSQLBuilder().
		Select("id", "file_name", "status").
		From("split_jobs").
		Where("status = ?", "failed").
		Where("mode = ?", "per-sheet").
		OrderBy("created_at DESC").
		Limit(10)

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT id, file_name, status FROM split_jobs WHERE status = $1 AND mode = $2 ORDER BY created_at DESC LIMIT 10
	// Args: [failed per-sheet]
}
