package models

import "strings"

// FriendList is the denormalized friend row of a single user.
type FriendList struct {
	ID      int    `db:"id" json:"id"`
	Me      string `db:"me" json:"me"`
	Friends string `db:"friends" json:"friends"`
}

// Names splits the stored column. An empty column is an empty list.
func (f FriendList) Names() []string {
	if f.Friends == "" {
		return []string{}
	}
	return strings.Split(f.Friends, ",")
}

// Contains reports whether name is an exact member of the list.
func (f FriendList) Contains(name string) bool {
	for _, n := range f.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// JoinFriends is the inverse of Names.
func JoinFriends(names []string) string {
	return strings.Join(names, ",")
}
