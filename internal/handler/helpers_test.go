package handler

import (
	"database/sql"
	"fmt"
)

func sqlmockNoRows() error { return sql.ErrNoRows }

// mysqlDuplicate fabricates the driver error text produced by a violated
// unique index, e.g. key "users.email".
func mysqlDuplicate(key string) error {
	return fmt.Errorf("Error 1062 (23000): Duplicate entry 'x' for key '%s'", key)
}

func mysqlDown() error {
	return fmt.Errorf("Error 2006 (HY000): MySQL server has gone away")
}
