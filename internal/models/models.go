package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"not null;index"           json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

type Post struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string `gorm:"not null"                 json:"title"`
	PostText string `gorm:"not null"                 json:"postText"`
	Username string `gorm:"not null"                 json:"username"`
	UserID   uint   `gorm:"index;not null"           json:"UserId"`
}

type Comment struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	CommentBody string `gorm:"not null"                 json:"commentBody"`
	PostID      uint   `gorm:"index;not null"           json:"PostId"`
	Username    string `gorm:"not null"                 json:"username"`
}

// Like rows are unique per (user, post); the composite index is the
// arbiter for concurrent toggles of the same pair.
type Like struct {
	ID     uint `gorm:"primaryKey;autoIncrement"                 json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"UserId"`
	PostID uint `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"PostId"`
}
