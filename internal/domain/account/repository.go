package account

import "context"

// Repository persists users. Insert must enforce username uniqueness
// atomically and report a clash as ErrDuplicateUser.
type Repository interface {
	Insert(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// PasswordHasher turns plaintext passwords into salted hashes and checks candidates against them.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}
