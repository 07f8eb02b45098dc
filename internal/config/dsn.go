// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"net"
	"net/url"
	"strconv"
)

// ConnectionString returns the connection string for adapter. An explicit
// DSN always wins; otherwise one is assembled from the individual fields.
// The memory adapter needs no connection string and gets "".
func (db DB) ConnectionString(adapter string) string {
	if db.DSN != "" {
		return db.DSN
	}

	switch adapter {
	case AdapterPostgres:
		return db.networkURL("postgres", "/"+db.Name)
	case AdapterMongoDB:
		return db.networkURL("mongodb", "/")
	case AdapterSQLite:
		path := db.Path
		if path == "" {
			path = db.Name + ".db"
		}
		if db.Flags != "" {
			return "file:" + path + "?" + db.Flags
		}
		return path
	default:
		return ""
	}
}

func (db DB) networkURL(scheme, path string) string {
	host := db.Host
	if host == "" {
		host = "localhost"
	}
	if db.Port != 0 {
		host = net.JoinHostPort(host, strconv.Itoa(db.Port))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     path,
		RawQuery: db.Flags,
	}
	if db.Username != "" {
		if db.Password != "" {
			u.User = url.UserPassword(db.Username, db.Password)
		} else {
			u.User = url.User(db.Username)
		}
	}

	return u.String()
}
