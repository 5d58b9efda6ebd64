package models

import "time"

// EventModel represents a fair or festival edition.
type EventModel struct {
	Base
	Name                  string    `json:"name"     gorm:"not null"`
	Address               *string   `json:"address"`
	IsPublic              bool      `json:"is_public"`
	ProgrammedDateInitial time.Time `json:"programmed_date_initial" gorm:"type:date"`
	ProgrammedDateFinal   time.Time `json:"programmed_date_final"   gorm:"type:date"`
}

func (EventModel) TableName() string { return "events" }

// UserEventStandModel assigns a user to a stand within an event. A user can
// work several stands across several events; is_responsible marks the stand
// manager.
type UserEventStandModel struct {
	Base
	UserID        uint        `json:"user_id"  gorm:"index;not null"`
	EventID       uint        `json:"event_id" gorm:"index;not null"`
	StandID       uint        `json:"stand_id" gorm:"index;not null"`
	IsResponsible bool        `json:"is_responsible"`
	User          *UserModel  `json:"-" gorm:"foreignKey:UserID"`
	Event         *EventModel `json:"-" gorm:"foreignKey:EventID"`
	Stand         *StandModel `json:"-" gorm:"foreignKey:StandID"`
}

func (UserEventStandModel) TableName() string { return "user_event_stands" }
