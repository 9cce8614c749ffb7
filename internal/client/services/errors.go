package services

import "errors"

var (
	ErrEmptyCredentials = errors.New("account and password are required")
	ErrIncompleteLogin  = errors.New("login response carried no token or user id")
	ErrNotLoggedIn      = errors.New("not logged in")
)
