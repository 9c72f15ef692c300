package user

import "errors"

var (
	ErrManagerAccessRequired = errors.New("manager or owner access required")
	ErrOwnerAccessRequired   = errors.New("owner access required")
)
