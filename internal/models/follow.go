package models

import "time"

// Follow is a directed edge: FollowerID follows FolloweeID.
// A single row backs both the follower's "following" set and the followee's
// "followers" set, so the two views cannot disagree.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;check:chk_follows_not_self,follower_id <> followee_id" json:"followerId"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// FollowResult is the outcome of a follow toggle.
type FollowResult struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
}
