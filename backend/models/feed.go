package models

import "gorm.io/gorm"

type Post struct {
	gorm.Model
	AuthorID   uint `gorm:"index"`
	AuthorName string
	Body       string
	ImageURL   string
	Comments   []Comment
	Likes      []PostLike
}

type Comment struct {
	gorm.Model
	PostID     uint `gorm:"index"`
	AuthorID   uint
	AuthorName string
	Body       string
}

type PostLike struct {
	gorm.Model
	PostID uint `gorm:"index:idx_post_user,unique"`
	UserID uint `gorm:"index:idx_post_user,unique"`
}
