package model

import "errors"

var ErrNotFound = errors.New("not found")

type Todo struct {
	ID        uint64 `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
}
