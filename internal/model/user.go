package model

import "time"

// User is a registered tray owner. Identity is the (Name, PhoneNum) pair.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	PhoneNum   string    `json:"phoneNum"`
	AccountID  *string   `json:"accountId"`
	MeasureCnt int       `json:"measure_cnt"`
	CreatedAt  time.Time `json:"created_at"`
}
