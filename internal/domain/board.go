package domain

import (
	"time"

	"github.com/google/uuid"
)

// Board is a shared workspace holding ordered lists of tasks
type Board struct {
	BaseModel
	Title     string        `gorm:"type:varchar(255);not null" json:"title"`
	CreatedBy uuid.UUID     `gorm:"type:uuid;not null;index:idx_boards_created_by" json:"createdBy"`
	Lists     []List        `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"lists,omitempty"`
	Members   []BoardMember `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TableName specifies the table name for Board
func (Board) TableName() string {
	return "boards"
}

// BoardRole represents the role of a board member
type BoardRole string

const (
	BoardRoleAdmin  BoardRole = "admin"
	BoardRoleMember BoardRole = "member"
)

// IsValid reports whether r is a known role
func (r BoardRole) IsValid() bool {
	return r == BoardRoleAdmin || r == BoardRoleMember
}

// BoardMember grants a user access to a board's lists and tasks
type BoardMember struct {
	BoardID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"boardId"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_board_members_user_id" json:"userId"`
	Role     BoardRole `gorm:"type:varchar(20);not null;default:'member';index:idx_board_members_role" json:"role"`
	JoinedAt time.Time `gorm:"not null" json:"joinedAt"`
}

// TableName specifies the table name for BoardMember
func (BoardMember) TableName() string {
	return "board_members"
}
