package repoargs

type RepositoryName string

const (
	UserRepoName       RepositoryName = "user"
	ReferralRepoName   RepositoryName = "referral"
	CommissionRepoName RepositoryName = "commission"
)

// BatchExecQueryRow вызывается для каждого элемента батч запроса с его порядковым номером и ошибкой.
type BatchExecQueryRow func(i int, err error)
