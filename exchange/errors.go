package exchange

import "errors"

var ErrFinalize = errors.New("finalize failed")
var ErrBroadcast = errors.New("transaction broadcast failed")
var ErrAlreadyConfirmed = errors.New("transaction already confirmed")
var ErrStorageNotFound = errors.New("transaction data not found")
var ErrCancelPosted = errors.New("cannot cancel a posted transaction")
