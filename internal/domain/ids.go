package domain

// SubmissionID identifies a submission record. IDs are assigned by storage and never change.
type SubmissionID int

// UserID identifies a user. Zero is reserved for the anonymous viewer.
type UserID int

// AnonymousUserID is the viewer id of a visitor who has not signed in.
const AnonymousUserID UserID = 0
