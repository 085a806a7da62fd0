// Package all registers every built-in storage kind (sqlite, mysql, postgres
// and mssql) when imported for side effects:
//
//	import _ "ecompipe/internal/storage/all"
package all

import (
	_ "ecompipe/internal/storage/mssql"
	_ "ecompipe/internal/storage/mysql"
	_ "ecompipe/internal/storage/postgres"
	_ "ecompipe/internal/storage/sqlite"
)
