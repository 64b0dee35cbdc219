package repoargs

import "time"

type ReferralCreate struct {
	ReferrerID   string
	ReferredID   string
	Level        int
	ReferralDate time.Time
}
