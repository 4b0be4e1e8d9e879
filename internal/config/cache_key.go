package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's active session JTI.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

// TeacherStatsKey returns the cache key for a teacher's dashboard stats.
func (r *CacheKeyStruct) TeacherStatsKey(teacherID string) string {
	return fmt.Sprintf("teacher:%s:stats", teacherID)
}

var CacheKey = NewCacheKeyStruct()
