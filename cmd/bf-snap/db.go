package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"

	_ "github.com/lib/pq"
	"github.com/venicegeo/bf-snap/util"
)

const connectionStringEnv = "DATABASE_URL"
const vcapServicesEnv = "VCAP_SERVICES"
const pzPostgresService = "pz-postgres"

//getDbConnection opens a new database connection.
func getDbConnection(ctx util.LogContext) (*sql.DB, error) {
	connStr := os.Getenv(connectionStringEnv)
	if connStr == "" {
		util.LogInfo(ctx, "No DB connection found in DATABASE_URL, checking VCAP_SERVICES")
		services, err := util.ParseVcapServices([]byte(os.Getenv(vcapServicesEnv)))
		if err != nil {
			return nil, errors.New("Could not get DB connection from DATABASE_URL or VCAP_SERVICES (no valid VCAP_SERVICES found): " + err.Error())
		}
		if connStr, err = services.ConnectionURI(pzPostgresService); err != nil {
			return nil, errors.New("Could not get DB connection from DATABASE_URL or VCAP_SERVICES: " + err.Error())
		}
	}

	dbURI, err := postgresURI(connStr)
	if err != nil {
		return nil, err
	}

	util.LogInfo(ctx, fmt.Sprintf("Creating database connection at: `%s`", dbURI.Redacted()))
	db, err := sql.Open("postgres", dbURI.String())
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// postgresURI parses the connection string. pq expects SSL unless told
// otherwise, so sslmode defaults to disable when the URI does not set it.
func postgresURI(connStr string) (*url.URL, error) {
	dbURI, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid database URI: %w", err)
	}
	if dbURI.Scheme != "postgres" && dbURI.Scheme != "postgresql" {
		return nil, fmt.Errorf("invalid database URI: unsupported scheme %q", dbURI.Scheme)
	}
	params := dbURI.Query()
	if params.Get("sslmode") == "" {
		params.Set("sslmode", "disable")
	}
	dbURI.RawQuery = params.Encode()
	return dbURI, nil
}

var getDbConnectionFunc = getDbConnection
