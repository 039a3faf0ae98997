package frontend

// User-facing notifications. Each remote failure maps to exactly one of these.
const (
	msgQuizSubmitted   = "Quiz submitted successfully! You cannot retake this quiz."
	msgAlreadyTaken    = "You have already completed this quiz and cannot retake it."
	msgInvalidCode     = "Invalid channel code. Please check and try again."
	msgJoinFailed      = "Failed to join channel. Please try again."
	msgLoadQuizFailed  = "Failed to load questions for the quiz. Please try again."
	msgWelcome         = "Welcome to admin dashboard!"
	msgBadCredentials  = "Invalid username or password. Please try again."
	msgLoginFailed     = "Login failed. Please check your connection and try again."
	msgChannelCreated  = "Channel created! Code: %s"
	msgChannelExists   = "Channel name already exists. Please choose a different name."
	msgChannelInvalid  = "Invalid channel name. Please use only letters, numbers, and spaces."
	msgChannelFailed   = "Failed to create channel. Please try again."
	msgQuestionAdded   = "Question added successfully!"
	msgQuestionExists  = "This question already exists. Please create a unique question."
	msgQuestionInvalid = "Invalid question format. Please check all fields."
	msgQuestionFailed  = "Failed to add question. Please try again."
	msgQuestionUpdated = "Question updated successfully!"
	msgTextTaken       = "This question text already exists. Please use unique text."
	msgQuestionGone    = "Question not found. It may have been deleted."
	msgUpdateFailed    = "Failed to update question. Please try again."
	msgResultsFailed   = "Failed to load results. Please try again."
	msgChannelsFailed  = "Failed to load channels. Please try again."
	msgQuestionsFailed = "Failed to load questions. Please try again."
	msgUsersFailed     = "Failed to load users. Please try again."
	msgUserCreated     = "Admin user created successfully!"
	msgUserExists      = "Username already exists. Please choose a different username."
	msgUserFailed      = "Failed to create user. Please try again."
	msgPasswordUpdated = "Password updated successfully!"
	msgWrongPassword   = "Current password is incorrect."
	msgPasswordFailed  = "Failed to update password. Please try again."
	msgChannelDeleted  = "Channel deleted successfully!"
	msgResultsCleared  = "All results cleared successfully!"
	msgQuestionDeleted = "Question deleted successfully!"
	msgUserDeleted     = "User deleted successfully!"
	msgDeleteFailed    = "Failed to delete. Please try again."
	msgReportFailed    = "Failed to generate PDF. Please try again."
)
