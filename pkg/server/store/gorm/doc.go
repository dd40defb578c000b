// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Every write runs in its own transaction opened from the caller's
// context, so a request never shares a session with another. Constraint
// failures from postgres, MySQL/MariaDB and sqlite are translated into the
// store package's error kinds here and nowhere else.
package gorm
