package payout

import "errors"

var ErrNoCommissions = errors.New("no pending commissions")
