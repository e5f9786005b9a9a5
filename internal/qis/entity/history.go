package entity

import "time"

// FormHistory 检验报告生命周期操作历史
type FormHistory struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	FormID    string    `json:"form_id" gorm:"size:32;not null;index"`
	Action    string    `json:"action" gorm:"size:32;not null"`
	FromState string    `json:"from_state" gorm:"size:20"`
	ToState   string    `json:"to_state" gorm:"size:20"`
	Actor     string    `json:"actor" gorm:"size:100;not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (FormHistory) TableName() string {
	return "qis_form_histories"
}

// 历史动作常量
const (
	HistoryActionCreate  = "create"
	HistoryActionUpdate  = "update"
	HistoryActionSubmit  = "submit"
	HistoryActionApprove = "approve"
	HistoryActionReject  = "reject"
)
