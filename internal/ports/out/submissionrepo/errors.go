package submissionrepo

import "errors"

var (
	ErrNotFound      = errors.New("submission not found")
	ErrAlreadyExists = errors.New("submission already exists")
	ErrAlreadyRSVPed = errors.New("user already rsvped to submission")
	ErrNotRSVPed     = errors.New("user has not rsvped to submission")
)
