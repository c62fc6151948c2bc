package models

// User is a seeded microblog account. Password holds the lower-case hex
// SHA-1 digest of Salt followed by the plaintext.
type User struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Salt     string `db:"salt" json:"-"`
	Password string `db:"password" json:"-"`
}
