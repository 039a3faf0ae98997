package domain

import "errors"

var (
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrChannelNotFound is returned for an unknown channel code or id.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrChannelExists is returned when a channel name is already taken.
	ErrChannelExists = errors.New("channel name already exists")
	// ErrCodeTaken is returned by stores when a generated join code collides.
	ErrCodeTaken = errors.New("channel code already taken")
	// ErrUserNotFound is returned for an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when creating a user whose name exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrParticipantNotFound is returned when a user acts in a channel before joining.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrAlreadySubmitted is returned when a user rejoins a channel they completed.
	ErrAlreadySubmitted = errors.New("you have already completed this quiz")
	// ErrQuestionNotFound indicates a question id is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionExists is returned when question text is already used.
	ErrQuestionExists = errors.New("question already exists")
	// ErrQuestionAnswered blocks deleting a question that has answers.
	ErrQuestionAnswered = errors.New("cannot delete question that has been answered")
	// ErrInvalidCredentials is returned on a failed admin login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrSelfDelete blocks an admin from deleting their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
	// ErrUserOwnsChannels blocks deleting an admin that created channels.
	ErrUserOwnsChannels = errors.New("cannot delete user who has created channels")
	// ErrBoardNotFound is returned when no standings exist for a channel.
	ErrBoardNotFound = errors.New("standings not found")
)
