package models

// StandCategoryModel groups stands of an event (food court, merch, ...).
type StandCategoryModel struct {
	Base
	Name    string      `json:"name"     gorm:"not null"`
	EventID uint        `json:"event_id" gorm:"index;not null"`
	Event   *EventModel `json:"-"        gorm:"foreignKey:EventID"`
}

func (StandCategoryModel) TableName() string { return "stand_categories" }

// StandModel represents a vendor stand inside an event.
type StandModel struct {
	Base
	Name            string              `json:"name" gorm:"not null"`
	IsCashier       bool                `json:"is_cashier"`
	EventID         uint                `json:"event_id"          gorm:"index;not null"`
	StandCategoryID uint                `json:"stand_category_id" gorm:"index;not null"`
	Event           *EventModel         `json:"-" gorm:"foreignKey:EventID"`
	StandCategory   *StandCategoryModel `json:"-" gorm:"foreignKey:StandCategoryID"`
}

func (StandModel) TableName() string { return "stands" }
