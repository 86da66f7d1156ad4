// Package all registers every built-in report sink with the storage factory.
// Import it for side effects:
//
//	import _ "wordfreq/internal/storage/all"
//
// Kinds enabled: "mssql", "mysql", "postgres", "sqlite".
package all

import (
	_ "wordfreq/internal/storage/mssql"
	_ "wordfreq/internal/storage/mysql"
	_ "wordfreq/internal/storage/postgres"
	_ "wordfreq/internal/storage/sqlite"
)
