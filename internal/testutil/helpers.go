package testutil

// Ptr returns a pointer to v. Settings documents use pointer fields to tell
// "absent" from "zero", so tests build them with testutil.Ptr("Alt+N").
func Ptr[T any](v T) *T { return &v }
