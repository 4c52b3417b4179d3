// Package all registers every storage backend with the factory. Binaries
// blank-import this package so the config decides which backend runs without
// the orchestration code importing drivers directly.
package all

import (
	_ "github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage/mssql"
	_ "github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage/postgres"
	_ "github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage/sqlite"
)
