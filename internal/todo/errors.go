package todo

import "errors"

var ErrEmptyContent = errors.New("content cannot be empty")
