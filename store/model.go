package store

const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrorSize is the width of the error column in characters.
const ErrorSize = 255

// PoolRefresh is one pool update request made after a remediation deposit.
type PoolRefresh struct {
	Id          uint64 `gorm:"primaryKey;autoIncrement;type:bigint(20);not null"`
	Signature   string `gorm:"type:varchar(120);not null;index"`
	Status      string `gorm:"type:varchar(16);not null"`
	Error       string `gorm:"type:varchar(255)"`
	RequestTime int64  `gorm:"type:bigint(20);not null"`
	FinishTime  int64  `gorm:"type:bigint(20);not null"`
}

// TruncateError cuts msg to ErrorSize characters on a rune boundary.
func TruncateError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= ErrorSize {
		return msg
	}
	return string(runes[:ErrorSize])
}
