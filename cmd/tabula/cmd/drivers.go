/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

// Database drivers registered with database/sql for export.
import (
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)
