// Package repository holds the MySQL data access for rooms, the menu
// catalog, orders, guest messages, push subscriptions and staff accounts.
// Sentinel errors below let handlers pick a status code without string
// matching.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a caller addresses a row that belongs to
// another room, e.g. removing a push subscription registered elsewhere.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a unique key would be violated.
var ErrConflict = errors.New("conflict")

// isDuplicate reports MySQL error 1062 (duplicate entry).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "1062")
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
