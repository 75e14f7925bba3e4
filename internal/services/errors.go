package services

import "filmtrack/internal/errs"

// 业务错误。handler 层按 errs.Kind 映射 HTTP 状态码。
var (
	ErrFilmNotFound  = errs.New(errs.KindNotFound, "Film not found")
	ErrFilmForbidden = errs.New(errs.KindForbidden, "Unauthorized")
	ErrDuplicateFilm = errs.New(errs.KindDuplicate, "Film already in your list")

	ErrSelfRequest           = errs.New(errs.KindSelfRequest, "You cannot send a friend request to yourself")
	ErrDuplicateRequest      = errs.New(errs.KindDuplicate, "Friendship request already exists")
	ErrFriendRequestNotFound = errs.New(errs.KindNotFound, "Friendship request not found")
	ErrAcceptForbidden       = errs.New(errs.KindForbidden, "Unauthorized to accept this request")
	ErrRejectForbidden       = errs.New(errs.KindForbidden, "Unauthorized to reject this request")
	ErrFriendshipNotFound    = errs.New(errs.KindNotFound, "Friendship not found")
	ErrRemoveForbidden       = errs.New(errs.KindForbidden, "Unauthorized to remove this friendship")
	ErrSearchQueryTooShort   = errs.New(errs.KindValidation, "Search query must be at least 2 characters")
	ErrReceiverNotFound      = errs.New(errs.KindNotFound, "User not found")
	ErrUserNotFound          = errs.New(errs.KindNotFound, "User not found")
	ErrProfileForbidden      = errs.New(errs.KindForbidden, "Forbidden: You can only update your own profile")
	ErrUserExists            = errs.New(errs.KindDuplicate, "User already exists")
	ErrInvalidCredentials    = errs.New(errs.KindUnauthenticated, "Invalid email or password")
	ErrEmailTaken            = errs.New(errs.KindDuplicate, "Email already in use")
)

func wrapInternal(msg string, err error) error {
	return errs.Wrap(errs.KindInternal, msg, err)
}
