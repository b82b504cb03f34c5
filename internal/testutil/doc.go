// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing a populated registry (admin, faculty,
// students, courses) and the action service on top of it. They are not
// intended for production usage.
package testutil
