package domain

import "time"

type RoomType string

const (
	RoomDeluxe   RoomType = "DELUXE"
	RoomStandard RoomType = "STANDARD"
	RoomSuite    RoomType = "SUITE"
)

type Property struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	TenantID  int64     `json:"tenant_id" gorm:"index"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug,omitempty"`
	IsDeleted bool      `json:"-" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tenant *User `json:"-" gorm:"foreignKey:TenantID"`
}

// Room carries the base price (minor units) and the count of units that can
// still be reserved.
type Room struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	PropertyID int64     `json:"property_id" gorm:"index"`
	Name       string    `json:"name"`
	Type       RoomType  `json:"type" gorm:"type:varchar(16)"`
	Price      int64     `json:"price"`
	Stock      int       `json:"stock"`
	IsDeleted  bool      `json:"-" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
}

// OwnedBy reports whether the room's property belongs to tenantID. The
// property must be loaded.
func (r *Room) OwnedBy(tenantID int64) bool {
	return r.Property != nil && r.Property.TenantID == tenantID
}
