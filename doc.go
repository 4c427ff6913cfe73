// Package main provides the entry point for the CareerDesk job portal
// backend. It runs a REST API on the Fiber framework through which job
// seekers apply to postings, employers manage them, and administrators run
// the platform. Administrator capability is decided by a role, sub-role, and
// permission model; administrator sign-up itself is gated by consumable
// access codes. The application uses gorm for data persistence.
package main
