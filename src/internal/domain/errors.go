package domain

import "errors"

var ErrUnknownTransactionKind = errors.New("Unknown transaction kind")
var ErrDuplicateRun = errors.New("Processing run already exported")
