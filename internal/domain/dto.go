package domain

type RoleType string

const (
	RoleUser  RoleType = "USER"
	RoleAdmin RoleType = "ADMIN"
)

type CommissionStatusType string

const (
	CommissionStatusPending CommissionStatusType = "PENDING"
	CommissionStatusPaid    CommissionStatusType = "PAID"
)
