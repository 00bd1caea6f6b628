package address

import "time"

type Address struct {
	ID         uint      `gorm:"primaryKey" json:"addressId"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	Label      string    `json:"label"`
	Recipient  string    `gorm:"not null" json:"recipient"`
	Line1      string    `gorm:"column:line1;not null" json:"line1"`
	Line2      string    `gorm:"column:line2" json:"line2"`
	City       string    `gorm:"not null" json:"city"`
	State      string    `json:"state"`
	PostalCode string    `gorm:"not null" json:"postalCode"`
	Country    string    `gorm:"not null" json:"country"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Address) TableName() string {
	return "addresses"
}

// Validate reports the first missing required field.
func (a Address) Validate() error {
	switch {
	case a.Recipient == "":
		return errMissing("recipient")
	case a.Line1 == "":
		return errMissing("line1")
	case a.City == "":
		return errMissing("city")
	case a.PostalCode == "":
		return errMissing("postalCode")
	case a.Country == "":
		return errMissing("country")
	}
	return nil
}
