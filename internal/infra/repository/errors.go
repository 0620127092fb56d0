package repository

import "errors"

var ErrNilDatabase = errors.New("database handle is nil")
