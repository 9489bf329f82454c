package repository

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("задача не найдена")

// StorageError - сбой обращения к хранилищу (драйвер, соединение, SQL).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
